// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"errors"
	"fmt"
)

// Failure kinds of a breach check. None of them is fatal: the breach status is
// unknown, not clean.
var (
	ErrNetworkUnavailable = errors.New("breach service unavailable")
	ErrTimeout            = errors.New("breach check timed out")
	ErrUnexpectedResponse = errors.New("unexpected breach service response")
)

var ErrInvalidHash = errors.New("input is not a valid SHA1 Hexadecimal hash")

// CheckError is returned by every failed lookup. errors.Is matches both the
// failure kind and the underlying cause.
type CheckError struct {
	Kind error
	Err  error
}

func (e *CheckError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *CheckError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// FailureKind returns the failure kind of err, or nil when err is not a
// CheckError.
func FailureKind(err error) error {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Kind
	}

	return nil
}

// IsCheckFailure reports whether err came from a failed lookup, as opposed to
// invalid input.
func IsCheckFailure(err error) bool {
	var ce *CheckError
	return errors.As(err, &ce)
}

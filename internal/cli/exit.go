// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import "errors"

const (
	// ExitFailure covers unreadable input and invalid configuration.
	ExitFailure = 1
	// ExitBreachRequired is used when a required breach check could not be completed.
	ExitBreachRequired = 2
)

// ExitError carries the process exit code of a failed command. Its message is
// meant for the user and never contains a password.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}

	return ExitFailure
}

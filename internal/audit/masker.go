// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package audit

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
)

const (
	randomKeySize = 32
	digestBytes   = 16
)

// Masked is the non-identifying view of a password.
type Masked struct {
	Length int
	Digest string
}

type Masker struct {
	key []byte
}

// NewMasker keys the digest with key. An empty key gets a random one, so
// digests only correlate within one process.
func NewMasker(key string) (*Masker, error) {
	var k []byte
	switch {
	case key == "":
		k = make([]byte, randomKeySize)
		if _, err := io.ReadFull(rand.Reader, k); err != nil {
			return nil, fmt.Errorf("error generating audit key: %w", err)
		}
	case len(key) > blake2b.Size:
		sum := blake2b.Sum256([]byte(key))
		k = sum[:]
	default:
		k = []byte(key)
	}

	return &Masker{key: k}, nil
}

func (m *Masker) Mask(password string) Masked {
	// Key length is bounded in NewMasker, New256 cannot fail.
	h, _ := blake2b.New256(m.key)
	h.Write([]byte(password))

	return Masked{
		Length: utf8.RuneCountInString(password),
		Digest: hex.EncodeToString(h.Sum(nil)[:digestBytes]),
	}
}

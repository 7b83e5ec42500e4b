// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package strength

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mtibben/confusables"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// leetTable maps look-alike characters to the letter they usually stand for.
var leetTable = map[rune]rune{
	'@': 'a',
	'4': 'a',
	'0': 'o',
	'1': 'l',
	'3': 'e',
	'$': 's',
	'5': 's',
	'7': 't',
	'!': 'i',
}

// Normalize reduces a password to its lower case letter core so that trivially
// obfuscated variants compare equal: "P4$$w0rd!" becomes "passwordi".
//
// Non-ASCII runes are first mapped to their Unicode confusable skeleton and
// NFKC form (so a Cyrillic "р" reads as "p"), then the leetspeak table is
// applied, the result is case folded and everything that is not a letter is
// dropped. Normalize is pure and safe for concurrent use.
func Normalize(password string) string {
	var b strings.Builder
	b.Grow(len(password))

	for _, r := range password {
		if r >= utf8.RuneSelf {
			// Skeleton only on single runes, on ASCII text it would also
			// rewrite pairs like "rn" into "m".
			b.WriteString(norm.NFKC.String(confusables.Skeleton(string(r))))
			continue
		}

		if sub, ok := leetTable[r]; ok {
			r = sub
		}
		b.WriteRune(r)
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}

		return -1
	}, fold(b.String()))
}

// fold case folds s. A Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

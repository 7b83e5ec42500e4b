// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package strength

import (
	_ "embed"
	"strings"
	"unicode"
)

//go:embed common_passwords.txt
var commonPasswordsRaw string

// bannedWords are penalized when they appear verbatim, all lower case or all
// upper case. Leetspeak substitution only applies to whole-password dictionary
// matches: a digit, symbol or other-case letter completing a banned word would
// otherwise lower the score of a password gaining a character class.
var bannedWords = []string{"password", "pass", "admin", "qwerty", "letmein", "welcome"}

var (
	// common holds the case folded entries of the wordlist.
	common map[string]struct{}
	// commonNormalized holds Normalize(entry) for every entry that has a letter.
	// Digit only entries like "123456" are matched exactly and never normalized.
	commonNormalized map[string]struct{}
)

func init() {
	lines := strings.Split(commonPasswordsRaw, "\n")
	common = make(map[string]struct{}, len(lines))
	commonNormalized = make(map[string]struct{}, len(lines))
	for _, line := range lines {
		pw := strings.TrimSpace(line)
		if pw == "" {
			continue
		}

		common[fold(pw)] = struct{}{}
		if strings.IndexFunc(pw, unicode.IsLetter) >= 0 {
			if n := Normalize(pw); n != "" {
				commonNormalized[n] = struct{}{}
			}
		}
	}
}

// dictionaryMatch reports whether password is a common password. exact is true
// when the case folded input is a list entry, false when only the normalized
// form matched.
func dictionaryMatch(password string) (matched bool, exact bool) {
	if _, ok := common[fold(strings.TrimSpace(password))]; ok {
		return true, true
	}

	if n := Normalize(password); n != "" {
		if _, ok := commonNormalized[n]; ok {
			return true, false
		}
	}

	return false, false
}

func containsBannedWord(password string) bool {
	for _, w := range bannedWords {
		if strings.Contains(password, w) || strings.Contains(password, strings.ToUpper(w)) {
			return true
		}
	}

	return false
}

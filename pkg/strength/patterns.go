// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package strength

import (
	"strings"
	"unicode"
)

const (
	repeatRun     = 3
	sequenceRun   = 4
	keyboardWidth = 4
)

var keyboardRows = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

type charClass int

const (
	classOther charClass = iota
	classLower
	classUpper
	classDigit
	classSymbol
)

func classOf(r rune) charClass {
	switch {
	case unicode.IsLower(r):
		return classLower
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsSpace(r):
		return classSymbol
	}

	return classOther
}

// hasPattern reports repeated runs ("aaa"), sequential runs ("1234", "dcba")
// and keyboard row fragments ("qwer"). Comparison is case sensitive and runs
// never span two character classes.
func hasPattern(password string) bool {
	runes := []rune(password)
	return hasRepeat(runes) || hasSequence(runes) || hasKeyboardRun(password)
}

func hasRepeat(runes []rune) bool {
	count := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			count++
			if count >= repeatRun {
				return true
			}
		} else {
			count = 1
		}
	}

	return false
}

func hasSequence(runes []rune) bool {
	count, step := 1, rune(0)
	for i := 1; i < len(runes); i++ {
		d := runes[i] - runes[i-1]
		sameClass := classOf(runes[i]) == classOf(runes[i-1]) && classOf(runes[i]) != classSymbol
		if sameClass && (d == 1 || d == -1) {
			if d == step {
				count++
			} else {
				count, step = 2, d
			}
			if count >= sequenceRun {
				return true
			}
		} else {
			count, step = 1, 0
		}
	}

	return false
}

func hasKeyboardRun(password string) bool {
	for _, row := range keyboardRows {
		for i := 0; i+keyboardWidth <= len(row); i++ {
			frag := row[i : i+keyboardWidth]
			if strings.Contains(password, frag) || strings.Contains(password, strings.ToUpper(frag)) {
				return true
			}
		}
	}

	return false
}

// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package strength

import "unicode/utf8"

const (
	MinScore = 0
	MaxScore = 10

	// RecommendedLength is the length below which a suggestion is emitted and
	// above which the variety bonus becomes available.
	RecommendedLength = 12

	charsPerPoint  = 4
	maxLengthScore = 4
	varietyBonus   = 2
	varietyClasses = 3
	patternPenalty = 2
	bannedPenalty  = 2
)

const (
	SuggestLength     = "Increase length to at least 12 characters."
	SuggestLowercase  = "Add at least one lowercase letter (a-z)."
	SuggestUppercase  = "Add at least one uppercase letter (A-Z)."
	SuggestDigit      = "Add at least one digit (0-9)."
	SuggestSymbol     = "Add at least one symbol (!, @, #, $, etc)."
	SuggestPattern    = "Avoid repeated characters and sequences such as \"aaa\", \"1234\" or \"qwer\"."
	SuggestBannedWord = "Avoid common words such as \"password\" or \"admin\"."
	SuggestCommon     = "Avoid common passwords and their obvious variants. Use a unique passphrase."
)

type Classification string

const (
	Weak     Classification = "weak"
	Moderate Classification = "moderate"
	Strong   Classification = "strong"
)

// Classify maps a score to its band: 0-3 weak, 4-6 moderate, 7-10 strong.
func Classify(score int) Classification {
	switch {
	case score >= 7:
		return Strong
	case score >= 4:
		return Moderate
	default:
		return Weak
	}
}

// Result is the outcome of scoring a single password.
type Result struct {
	Score          int            `json:"score"`
	Classification Classification `json:"classification"`
	Suggestions    []string       `json:"suggestions"`
}

type criteria struct {
	length  int
	lower   bool
	upper   bool
	digit   bool
	symbol  bool
	pattern bool
	banned  bool
}

func (c criteria) classes() int {
	n := 0
	for _, present := range []bool{c.lower, c.upper, c.digit, c.symbol} {
		if present {
			n++
		}
	}

	return n
}

func evaluate(password string) criteria {
	c := criteria{length: utf8.RuneCountInString(password)}
	for _, r := range password {
		switch classOf(r) {
		case classLower:
			c.lower = true
		case classUpper:
			c.upper = true
		case classDigit:
			c.digit = true
		case classSymbol:
			c.symbol = true
		}
	}
	c.pattern = hasPattern(password)
	c.banned = containsBannedWord(password)

	return c
}

// Score rates a password from 0 to 10 and lists what would improve it.
// It accepts any string, including the empty one, and is deterministic.
//
// A password that is a common password, directly or after leetspeak
// normalization, is forced into the lowest band whatever its length or mix.
func Score(password string) Result {
	c := evaluate(password)

	if matched, exact := dictionaryMatch(password); matched {
		score := 1
		if exact {
			score = 0
		}

		return Result{
			Score:          score,
			Classification: Classify(score),
			Suggestions:    append(suggestions(c), SuggestCommon),
		}
	}

	score := c.length / charsPerPoint
	if score > maxLengthScore {
		score = maxLengthScore
	}
	score += c.classes()
	if c.length >= RecommendedLength && c.classes() >= varietyClasses {
		score += varietyBonus
	}
	if c.pattern {
		score -= patternPenalty
	}
	if c.banned {
		score -= bannedPenalty
	}
	score = clamp(score)

	return Result{
		Score:          score,
		Classification: Classify(score),
		Suggestions:    suggestions(c),
	}
}

func suggestions(c criteria) []string {
	s := make([]string, 0, 8)
	if c.length < RecommendedLength {
		s = append(s, SuggestLength)
	}
	if !c.lower {
		s = append(s, SuggestLowercase)
	}
	if !c.upper {
		s = append(s, SuggestUppercase)
	}
	if !c.digit {
		s = append(s, SuggestDigit)
	}
	if !c.symbol {
		s = append(s, SuggestSymbol)
	}
	if c.pattern {
		s = append(s, SuggestPattern)
	}
	if c.banned {
		s = append(s, SuggestBannedWord)
	}

	return s
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}

	return score
}

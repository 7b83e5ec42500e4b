// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package strength

import "github.com/nbutton23/zxcvbn-go"

// MaxEstimateLength is the number of leading runes passed to zxcvbn. Its
// matching cost grows faster than linearly with the input length.
const MaxEstimateLength = 100

// Estimate is the zxcvbn view of a password, shown next to the heuristic score.
type Estimate struct {
	Entropy          float64 `json:"entropy"`
	CrackTime        float64 `json:"crack_time_seconds"`
	CrackTimeDisplay string  `json:"crack_time_display"`
	// Score is zxcvbn's own 0-4 rating.
	Score int `json:"zxcvbn_score"`
}

// EstimateStrength runs zxcvbn on at most the first MaxEstimateLength runes of
// password. Longer passwords are rated on that prefix, which only
// underestimates them.
func EstimateStrength(password string) Estimate {
	if password == "" {
		return Estimate{CrackTimeDisplay: "instant"}
	}

	if runes := []rune(password); len(runes) > MaxEstimateLength {
		password = string(runes[:MaxEstimateLength])
	}

	m := zxcvbn.PasswordStrength(password, nil)
	return Estimate{
		Entropy:          m.Entropy,
		CrackTime:        m.CrackTime,
		CrackTimeDisplay: m.CrackTimeDisplay,
		Score:            m.Score,
	}
}

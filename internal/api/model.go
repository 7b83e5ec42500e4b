// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

type queryRequest struct {
	Password *string `json:"password" binding:"required"`
}

type hashRequest struct {
	Hash string `json:"hash" binding:"required"`
}

type breachResponse struct {
	Status string `json:"status"`
	Count  uint64 `json:"count,omitempty"`
	Error  string `json:"error,omitempty"`
}

type passwordStrength struct {
	CrackTime        float64 `json:"crack_time_seconds"`
	CrackTimeDisplay string  `json:"crack_time_display"`
	Entropy          float64 `json:"entropy"`
	Score            int     `json:"score"`
}

type queryResponse struct {
	Score          int              `json:"score"`
	Classification string           `json:"classification"`
	Suggestions    []string         `json:"suggestions"`
	Estimate       passwordStrength `json:"estimate"`
	Breach         breachResponse   `json:"breach"`
}

type hashResponse struct {
	Pwned bool   `json:"pwned"`
	Count uint64 `json:"count"`
}

// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/alvinbaena/pwd-strength/internal/analyzer"
	"github.com/alvinbaena/pwd-strength/pkg/hibp"
	"github.com/gin-gonic/gin"
)

const (
	// maxBodyBytes bounds every request body.
	maxBodyBytes = 16 << 10
	// MaxPasswordLength is the longest password, in runes, the API analyzes.
	MaxPasswordLength = 1024
)

type checkApi struct {
	analyzer *analyzer.Analyzer
}

func (q *checkApi) checkPassword(c *gin.Context) {
	var req queryRequest
	if err := bindBody(c, &req); err != nil {
		if !tooLarge(c, err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object with a password field"})
		}
		return
	}

	if utf8.RuneCountInString(*req.Password) > MaxPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("password must be at most %d characters", MaxPasswordLength)})
		return
	}

	r := q.analyzer.Analyze(c.Request.Context(), *req.Password)
	resp := queryResponse{
		Score:          r.FinalScore(),
		Classification: string(r.Classification()),
		Suggestions:    r.Suggestions(),
		Estimate: passwordStrength{
			CrackTime:        r.Estimate.CrackTime,
			CrackTimeDisplay: r.Estimate.CrackTimeDisplay,
			Entropy:          r.Estimate.Entropy,
			Score:            r.Estimate.Score,
		},
		Breach: breachResponse{
			Status: string(r.Breach),
			Count:  r.BreachCount,
		},
	}
	if r.BreachErr != nil {
		resp.Breach.Error = breachErrorMessage(r.BreachErr)
	}

	c.JSON(http.StatusOK, resp)
}

func (q *checkApi) checkHash(c *gin.Context) {
	var req hashRequest
	if err := bindBody(c, &req); err != nil {
		if !tooLarge(c, err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	res, err := q.analyzer.CheckHash(c.Request.Context(), req.Hash)
	switch {
	case errors.Is(err, hibp.ErrInvalidHash):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, analyzer.ErrBreachCheckDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": breachErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, hashResponse{Pwned: res.Breached, Count: res.Count})
}

func bindBody(c *gin.Context, obj any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	return c.ShouldBindJSON(obj)
}

// tooLarge answers 413 when err comes from an oversized body.
func tooLarge(c *gin.Context, err error) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}

	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("request body must be at most %d bytes", maxBodyBytes)})
	return true
}

// breachErrorMessage only exposes the failure kind, not transport details.
func breachErrorMessage(err error) string {
	if kind := hibp.FailureKind(err); kind != nil {
		return kind.Error()
	}

	return "breach check failed"
}

func RegisterCheckApi(group *gin.RouterGroup, a *analyzer.Analyzer) {
	q := &checkApi{analyzer: a}

	group.POST("/password", q.checkPassword)
	group.POST("/hash", q.checkHash)
}

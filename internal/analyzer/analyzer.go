// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/alvinbaena/pwd-strength/internal/audit"
	"github.com/alvinbaena/pwd-strength/pkg/hibp"
	"github.com/alvinbaena/pwd-strength/pkg/strength"
	"github.com/rs/zerolog/log"
)

var ErrBreachCheckDisabled = errors.New("breach checking is disabled")

// BreachChecker is implemented by *hibp.Checker.
type BreachChecker interface {
	CheckPassword(ctx context.Context, password string) (hibp.Result, error)
	CheckHash(ctx context.Context, hash string) (hibp.Result, error)
}

type BreachStatus string

const (
	BreachClean   BreachStatus = "clean"
	BreachFound   BreachStatus = "breached"
	BreachUnknown BreachStatus = "unknown"
	BreachSkipped BreachStatus = "skipped"
)

const SuggestBreached = "Do not reuse a breached password. Use a unique passphrase or a password manager."

// Report is everything known about one password. It never holds the password.
type Report struct {
	Score       strength.Result   `json:"strength"`
	Estimate    strength.Estimate `json:"estimate"`
	Breach      BreachStatus      `json:"breach"`
	BreachCount uint64            `json:"breach_count,omitempty"`
	// BreachErr is set when Breach is unknown.
	BreachErr error `json:"-"`
}

// FinalScore is the score to present. A breached password scores the minimum,
// so the score always lies in the band given by Classification.
func (r Report) FinalScore() int {
	if r.Breach == BreachFound {
		return strength.MinScore
	}

	return r.Score.Score
}

// Classification is the band of FinalScore, weak for breached passwords.
func (r Report) Classification() strength.Classification {
	return strength.Classify(r.FinalScore())
}

// Suggestions are the scorer suggestions, plus the breach warning when needed.
func (r Report) Suggestions() []string {
	s := append([]string{}, r.Score.Suggestions...)
	if r.Breach == BreachFound {
		s = append(s, SuggestBreached)
	}

	return s
}

type Analyzer struct {
	checker  BreachChecker
	recorder audit.Recorder
	masker   *audit.Masker
	now      func() time.Time
}

// New builds an Analyzer. A nil checker disables breach checks, a nil recorder
// disables the audit log.
func New(checker BreachChecker, recorder audit.Recorder, masker *audit.Masker) *Analyzer {
	if recorder == nil {
		recorder = audit.Nop{}
	}

	return &Analyzer{
		checker:  checker,
		recorder: recorder,
		masker:   masker,
		now:      time.Now,
	}
}

// BreachCheckEnabled reports whether a breach checker is configured.
func (a *Analyzer) BreachCheckEnabled() bool {
	return a.checker != nil
}

// Analyze scores password and, when enabled, checks it for breaches. A failed
// breach check leaves the status unknown and never hides the score.
func (a *Analyzer) Analyze(ctx context.Context, password string) Report {
	r := Report{
		Score:    strength.Score(password),
		Estimate: strength.EstimateStrength(password),
		Breach:   BreachSkipped,
	}

	if a.checker != nil {
		res, err := a.checker.CheckPassword(ctx, password)
		switch {
		case err != nil:
			r.Breach = BreachUnknown
			r.BreachErr = err
			log.Debug().Err(err).Msg("breach check failed")
		case res.Breached:
			r.Breach = BreachFound
			r.BreachCount = res.Count
		default:
			r.Breach = BreachClean
		}
	}

	a.record(r, password)
	return r
}

// CheckHash runs a breach lookup on a SHA1 hex hash, without scoring.
func (a *Analyzer) CheckHash(ctx context.Context, hash string) (hibp.Result, error) {
	if a.checker == nil {
		return hibp.Result{}, ErrBreachCheckDisabled
	}

	return a.checker.CheckHash(ctx, hash)
}

func (a *Analyzer) record(r Report, password string) {
	if a.masker == nil {
		return
	}

	a.recorder.Record(audit.Entry{
		Time:           a.now(),
		Score:          r.FinalScore(),
		Classification: string(r.Classification()),
		Breach:         string(r.Breach),
		BreachCount:    r.BreachCount,
		Masked:         a.masker.Mask(password),
	})
}

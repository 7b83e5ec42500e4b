// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"errors"
	"fmt"

	"github.com/alvinbaena/pwd-strength/internal/analyzer"
	"github.com/alvinbaena/pwd-strength/internal/audit"
	"github.com/alvinbaena/pwd-strength/internal/config"
	"github.com/alvinbaena/pwd-strength/pkg/hibp"
	"github.com/rs/zerolog/log"
)

// loadConfig reads the environment and applies the root flags on top of it.
func loadConfig() (config.Config, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return cfg, &ExitError{Code: ExitFailure, Err: fmt.Errorf("invalid configuration: %w", err)}
	}

	applyFlags(&cfg)
	if cfg.BreachRequired && !cfg.BreachCheck {
		return cfg, &ExitError{Code: ExitFailure, Err: errors.New("invalid configuration: the breach check cannot be required and disabled at the same time")}
	}

	if err = config.Validate(cfg); err != nil {
		return cfg, &ExitError{Code: ExitFailure, Err: fmt.Errorf("invalid configuration: %w", err)}
	}

	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if offline {
		cfg.BreachCheck = false
	}
	if requireBreach {
		cfg.BreachRequired = true
	}
	if timeout > 0 {
		cfg.HibpTimeout = timeout
	}
	if auditFile != "" {
		cfg.AuditFile = auditFile
	}
	if noAudit {
		cfg.AuditEnabled = false
	}
	if verbose {
		cfg.Debug = true
	}
}

// environment holds the components a command works with.
type environment struct {
	analyzer *analyzer.Analyzer
	// checker is nil when the breach check is disabled.
	checker  *hibp.Checker
	auditLog *audit.Logger
}

func newEnvironment(cfg config.Config) (*environment, error) {
	env := &environment{}

	// Must stay an untyped nil when disabled, the analyzer checks for nil.
	var checker analyzer.BreachChecker
	if cfg.BreachCheck {
		c, err := hibp.NewChecker(hibp.Options{
			RangeURL:  cfg.HibpURL,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.HibpTimeout,
			Retries:   cfg.HibpRetries,
			Padding:   cfg.HibpPadding,
			CacheTTL:  cfg.CacheTTL,
		})
		if err != nil {
			return nil, err
		}
		env.checker = c
		checker = c
	} else {
		log.Debug().Msg("breach check disabled, scoring locally only")
	}

	var recorder audit.Recorder = audit.Nop{}
	if cfg.AuditEnabled {
		l, err := audit.NewLogger(audit.Options{
			File:       cfg.AuditFile,
			MaxSizeMB:  cfg.AuditMaxSizeMB,
			MaxBackups: cfg.AuditMaxBackups,
			MaxAgeDays: cfg.AuditMaxAgeDays,
			Compress:   cfg.AuditCompress,
		})
		if err != nil {
			env.Close()
			return nil, err
		}
		env.auditLog = l
		recorder = l
		log.Debug().Msgf("writing masked audit entries to %s", cfg.AuditFile)
	}

	masker, err := audit.NewMasker(cfg.AuditKey)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.analyzer = analyzer.New(checker, recorder, masker)
	return env, nil
}

func (e *environment) Close() {
	if e.checker != nil {
		e.checker.Close()
	}

	if e.auditLog != nil {
		if err := e.auditLog.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing audit log")
		}
	}
}

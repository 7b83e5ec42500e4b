// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is a MaskedLogEntry, one per analyzed password.
type Entry struct {
	Time           time.Time
	Score          int
	Classification string
	// Breach is one of clean, breached, unknown or skipped.
	Breach      string
	BreachCount uint64
	Masked
}

type Recorder interface {
	Record(e Entry)
}

// Nop discards entries, used when auditing is disabled.
type Nop struct{}

func (Nop) Record(Entry) {}

type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger appends entries as JSON lines to a rotated file.
type Logger struct {
	out io.WriteCloser
	log zerolog.Logger
}

func NewLogger(opts Options) (*Logger, error) {
	abs, err := filepath.Abs(opts.File)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of audit file: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return nil, fmt.Errorf("create audit dir failed: %w", err)
	}

	return newLogger(&lumberjack.Logger{
		Filename:   abs,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}), nil
}

func newLogger(out io.WriteCloser) *Logger {
	return &Logger{
		out: out,
		log: zerolog.New(out).With().Str("run_id", uuid.NewString()).Logger(),
	}
}

func (l *Logger) Record(e Entry) {
	l.log.Log().
		Time("time", e.Time.UTC()).
		Int("score", e.Score).
		Str("classification", e.Classification).
		Str("breach", e.Breach).
		Uint64("breach_count", e.BreachCount).
		Int("length", e.Length).
		Str("digest", e.Digest).
		Msg("password analyzed")
}

func (l *Logger) Close() error {
	return l.out.Close()
}

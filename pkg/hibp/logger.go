// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// retryLogger sends the retryable client logs to zerolog. Everything goes to
// debug, the checker reports the final outcome of a lookup itself.
type retryLogger struct {
	l zerolog.Logger
}

var _ retryablehttp.LeveledLogger = retryLogger{}

func newRetryLogger() retryLogger {
	return retryLogger{l: log.With().Str("component", "hibp").Logger()}
}

func (r retryLogger) Error(msg string, keysAndValues ...interface{}) {
	r.l.Debug().Str("retry_level", "error").Fields(keysAndValues).Msg(msg)
}

func (r retryLogger) Info(msg string, keysAndValues ...interface{}) {
	r.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (r retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (r retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.l.Debug().Str("retry_level", "warn").Fields(keysAndValues).Msg(msg)
}

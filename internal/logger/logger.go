// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger wraps zerolog for the server and the client daemon.
//
// Components receive a *Logger at construction time. Code running inside a
// request or a sync cycle should prefer FromContext or FromRequest so that
// trace and cycle fields travel with the entry.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"runtime"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger embeds zerolog.Logger and adds a few helpers.
type Logger struct {
	zerolog.Logger
}

// NewLogger constructs a *Logger for the given role label (e.g. "server",
// "client") writing JSON to os.Stdout.
//
// Every entry carries a "role" field, a timestamp and a "func" caller field
// holding the fully-qualified function name instead of file:line.
func NewLogger(role string) *Logger {
	return newLogger(role, os.Stdout, zerolog.DebugLevel)
}

// NewClientLogger constructs the logger of the client daemon. When cfg.File
// is set, output goes to a size-rotated file managed by lumberjack, otherwise
// to os.Stdout. An unknown cfg.Level falls back to debug.
func NewClientLogger(role string, cfg config.Log) *Logger {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
	}

	return newLogger(role, out, parseLevel(cfg.Level))
}

func newLogger(role string, out io.Writer, level zerolog.Level) *Logger {
	zerolog.SetGlobalLevel(level)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	logger := zerolog.New(out).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

func parseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.DebugLevel
	}
	return lvl
}

// Nop returns a *Logger that writes nothing.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger copies the receiver. Fields added to the copy do not leak
// back into the parent.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// FromRequest is FromContext applied to r.Context().
func FromRequest(r *http.Request) *Logger {
	return &Logger{*log.Ctx(r.Context())}
}

// FromContext returns the logger attached to ctx with zerolog's WithContext.
// The result is never nil; without an attached logger it is zerolog's
// disabled logger.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromContextOr is FromContext with a fallback used when ctx carries no
// enabled logger.
func FromContextOr(ctx context.Context, fallback *Logger) *Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled && fallback != nil {
		return fallback
	}
	return &Logger{*l}
}

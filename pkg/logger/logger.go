/*
 * Copyright 2026 The termatlas Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger provides JSON structured logging using zerolog.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Fatal() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) zerolog.Logger
	SetLevel(level zerolog.Level)
	SetDebug(debug bool)
}

// Impl implements Logger without global state so instances can be injected
// into components.
type Impl struct {
	logger zerolog.Logger
}

// New creates a logger from the provided configuration. When OTel export is
// enabled, log lines are mirrored to the OTLP endpoint in addition to the
// configured output.
func New(ctx context.Context, config *Config) (*Impl, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var output io.Writer = os.Stdout
	if config.Output == "stderr" {
		output = os.Stderr
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
	}

	timeFormat := time.RFC3339
	if config.TimeFormat != "" {
		timeFormat = config.TimeFormat
	}

	zerolog.TimeFieldFormat = timeFormat

	if config.OTel.Enabled && config.OTel.Endpoint != "" {
		otelWriter, err := NewOTelWriter(ctx, config.OTel)
		if err != nil {
			return nil, err
		}

		output = NewMultiWriter(output, otelWriter)
	}

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Impl{logger: zlog}, nil
}

func (l *Impl) Trace() *zerolog.Event {
	return l.logger.Trace()
}

func (l *Impl) Debug() *zerolog.Event {
	return l.logger.Debug()
}

func (l *Impl) Info() *zerolog.Event {
	return l.logger.Info()
}

func (l *Impl) Warn() *zerolog.Event {
	return l.logger.Warn()
}

func (l *Impl) Error() *zerolog.Event {
	return l.logger.Error()
}

func (l *Impl) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

func (l *Impl) With() zerolog.Context {
	return l.logger.With()
}

func (l *Impl) WithComponent(component string) zerolog.Logger {
	return l.logger.With().Str("component", component).Logger()
}

// Scoped returns a copy of the logger with a component field attached to
// every event.
func (l *Impl) Scoped(component string) *Impl {
	return &Impl{logger: l.logger.With().Str("component", component).Logger()}
}

func (l *Impl) SetLevel(level zerolog.Level) {
	l.logger = l.logger.Level(level)
}

func (l *Impl) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)
	} else {
		l.SetLevel(zerolog.InfoLevel)
	}
}

// NewTestLogger creates a no-op logger for tests that discards all output.
func NewTestLogger() Logger {
	nop := zerolog.New(io.Discard).Level(zerolog.Disabled)
	return &Impl{logger: nop}
}

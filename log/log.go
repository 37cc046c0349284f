// Copyright 2024 The go-probe Authors
// This file is part of the go-probe library.
//
// The go-probe library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probe library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probe library. If not, see <http://www.gnu.org/licenses/>.

// Package log is the structured, leveled logger shared by every corevm
// component. Call sites pass alternating key/value pairs, e.g.
// log.Info("order placed", "orderID", id, "side", side).
package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var root = New(os.Stderr)

// Logger wraps a slog.Logger with two extra levels beyond the stdlib's
// four: Trace for noisier-than-Debug detail, and Crit for a fatal
// condition that logs and then exits.
type Logger struct {
	l *slog.Logger
}

const (
	levelTrace = slog.Level(-8)
	levelCrit  = slog.Level(12)
)

// New builds a Logger writing to w through slog's text handler. When w is
// a terminal *os.File it is first wrapped with go-colorable; the handler
// itself is the same plain text handler either way.
func New(w io.Writer) *Logger {
	out := w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = colorable.NewColorable(f)
	}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: levelTrace})
	return &Logger{l: slog.New(h)}
}

// SetRoot replaces the package-level default logger.
func SetRoot(l *Logger) { root = l }

func (l *Logger) Trace(msg string, kv ...any) { l.l.Log(context.Background(), levelTrace, msg, kv...) }
func (l *Logger) Debug(msg string, kv ...any) { l.l.Debug(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.l.Info(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.l.Warn(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.l.Error(msg, kv...) }
func (l *Logger) Crit(msg string, kv ...any) {
	l.l.Log(context.Background(), levelCrit, msg, kv...)
	os.Exit(1)
}

// With returns a Logger that always includes the given key/value pairs,
// for building a per-component logger once at construction time.
func (l *Logger) With(kv ...any) *Logger { return &Logger{l: l.l.With(kv...)} }

// Package-level convenience wrappers over the default root logger.
func Trace(msg string, kv ...any) { root.Trace(msg, kv...) }
func Debug(msg string, kv ...any) { root.Debug(msg, kv...) }
func Info(msg string, kv ...any)  { root.Info(msg, kv...) }
func Warn(msg string, kv ...any)  { root.Warn(msg, kv...) }
func Error(msg string, kv ...any) { root.Error(msg, kv...) }
func Crit(msg string, kv ...any)  { root.Crit(msg, kv...) }

// NewWith returns a component-scoped logger off the package-level root.
func NewWith(kv ...any) *Logger { return root.With(kv...) }

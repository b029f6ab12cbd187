// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the logging facade used across forge. It is backed by the
// go-ethereum slog logger; package loggers resolve the root logger on every call
// so that handlers installed at startup apply to loggers created at init time.
package log

import (
	ethlog "github.com/ethereum/go-ethereum/log"
)

// Logger writes key/value records with a fixed context.
type Logger struct {
	ctx []any
}

// WithContext returns a logger that prepends ctx to every record.
func WithContext(ctx ...any) *Logger {
	return &Logger{ctx: ctx}
}

// With returns a child logger with additional context.
func (l *Logger) With(ctx ...any) *Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &Logger{ctx: append(merged, ctx...)}
}

func (l *Logger) root() ethlog.Logger {
	return ethlog.Root().With(l.ctx...)
}

func (l *Logger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *Logger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *Logger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *Logger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *Logger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }

func Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }

// Copyright 2019 The go-xgp Authors
// This file is part of the go-xgp library.
//
// The go-xgp library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-xgp library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-xgp library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides the module-scoped structured logger used across the
// node. Log sites attach alternating key/value context the same way the
// underlying zap sugared logger does.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes key-value structured log records.
type Logger interface {
	NewWith(ctx ...interface{}) Logger

	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type zapLogger struct {
	sugared *zap.SugaredLogger
}

var root = newRoot()

func newRoot() *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(zapcore.InfoLevel),
	)
	return zap.New(core).Sugar()
}

// NewModuleLogger returns a logger tagged with the given module.
func NewModuleLogger(mi ModuleID) Logger {
	return &zapLogger{sugared: root.With("module", mi.String())}
}

func (l *zapLogger) NewWith(ctx ...interface{}) Logger {
	return &zapLogger{sugared: l.sugared.With(ctx...)}
}

func (l *zapLogger) Debug(msg string, ctx ...interface{}) { l.sugared.Debugw(msg, ctx...) }
func (l *zapLogger) Info(msg string, ctx ...interface{})  { l.sugared.Infow(msg, ctx...) }
func (l *zapLogger) Warn(msg string, ctx ...interface{})  { l.sugared.Warnw(msg, ctx...) }
func (l *zapLogger) Error(msg string, ctx ...interface{}) { l.sugared.Errorw(msg, ctx...) }

// Crit logs the message and exits the process.
func (l *zapLogger) Crit(msg string, ctx ...interface{}) {
	l.sugared.Errorw(msg, ctx...)
	os.Exit(1)
}

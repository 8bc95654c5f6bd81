// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package logging defines the logger interface accepted by every component.
//
// Components take an optional L and call Must before logging, so a nil L
// discards everything. Backends live alongside: a *logrus.Logger is an L
// as-is, and Zerolog adapts a zerolog.Logger.
package logging

import (
	"fmt"
)

// L accepts logging data.
//
// L matches the leveled methods of logrus.Logger and zap.SugaredLogger, so
// either can be used directly.
type L interface {
	Error(args ...interface{})
	Warn(args ...interface{})
	Info(args ...interface{})
	Debug(args ...interface{})

	Errorf(fmt string, args ...interface{})
	Warnf(fmt string, args ...interface{})
	Infof(fmt string, args ...interface{})
	Debugf(fmt string, args ...interface{})
}

// Nop is a L instance that does nothing.
var Nop L = nopLogger{}

// Must returns l, or Nop if l is nil.
func Must(l L) L {
	if l != nil {
		return l
	}
	return Nop
}

type nopLogger struct{}

func (nopLogger) Error(args ...interface{}) {}
func (nopLogger) Warn(args ...interface{})  {}
func (nopLogger) Info(args ...interface{})  {}
func (nopLogger) Debug(args ...interface{}) {}

func (nopLogger) Errorf(fmt string, args ...interface{}) {}
func (nopLogger) Warnf(fmt string, args ...interface{})  {}
func (nopLogger) Infof(fmt string, args ...interface{})  {}
func (nopLogger) Debugf(fmt string, args ...interface{}) {}

// Prefix returns an L that prepends prefix to every message sent to l.
//
// If l is nil, Prefix returns nil.
func Prefix(l L, prefix string) L {
	if l == nil {
		return nil
	}
	return &prefixL{base: l, prefix: prefix}
}

type prefixL struct {
	base   L
	prefix string
}

func (p *prefixL) msg(args []interface{}) string { return p.prefix + fmt.Sprint(args...) }

func (p *prefixL) Error(args ...interface{}) { p.base.Error(p.msg(args)) }
func (p *prefixL) Warn(args ...interface{})  { p.base.Warn(p.msg(args)) }
func (p *prefixL) Info(args ...interface{})  { p.base.Info(p.msg(args)) }
func (p *prefixL) Debug(args ...interface{}) { p.base.Debug(p.msg(args)) }

func (p *prefixL) Errorf(f string, args ...interface{}) { p.base.Errorf(p.prefix+f, args...) }
func (p *prefixL) Warnf(f string, args ...interface{})  { p.base.Warnf(p.prefix+f, args...) }
func (p *prefixL) Infof(f string, args ...interface{})  { p.base.Infof(p.prefix+f, args...) }
func (p *prefixL) Debugf(f string, args ...interface{}) { p.base.Debugf(p.prefix+f, args...) }

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var _ L = (*logrus.Logger)(nil)

// Logrus returns a logrus Logger writing to w at the named level ("debug",
// "info", ...). If json is true, entries are JSON-formatted.
//
// An unparseable level falls back to info.
func Logrus(w io.Writer, level string, json bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Zerolog returns an L that emits to l.
func Zerolog(l zerolog.Logger) L { return &zerologL{l} }

type zerologL struct {
	l zerolog.Logger
}

func (z *zerologL) Error(args ...interface{}) { z.l.Error().Msg(fmt.Sprint(args...)) }
func (z *zerologL) Warn(args ...interface{})  { z.l.Warn().Msg(fmt.Sprint(args...)) }
func (z *zerologL) Info(args ...interface{})  { z.l.Info().Msg(fmt.Sprint(args...)) }
func (z *zerologL) Debug(args ...interface{}) { z.l.Debug().Msg(fmt.Sprint(args...)) }

func (z *zerologL) Errorf(f string, args ...interface{}) { z.l.Error().Msgf(f, args...) }
func (z *zerologL) Warnf(f string, args ...interface{})  { z.l.Warn().Msgf(f, args...) }
func (z *zerologL) Infof(f string, args ...interface{})  { z.l.Info().Msgf(f, args...) }
func (z *zerologL) Debugf(f string, args ...interface{}) { z.l.Debug().Msgf(f, args...) }

// Copyright 2025 The ArrowDNS Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import "github.com/rs/zerolog"

// ZerologAdapter adapts a zerolog.Logger to the Logger interface, so
// embedders who already have a zerolog pipeline wired up (for rotation,
// sampling, sinks, etc.) can reuse it here instead of standing up a second
// logging stack.
type ZerologAdapter struct {
	Logger zerolog.Logger
}

// NewZerolog wraps an existing zerolog.Logger.
func NewZerolog(logger zerolog.Logger) Logger {
	return ZerologAdapter{Logger: logger}
}

func (z ZerologAdapter) Log(level Level, file, function string, line int, message string) {
	event := z.Logger.WithLevel(toZerologLevel(level))
	event.Str("file", file).Str("func", function).Int("line", line).Msg(message)
}

func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelTrace:
		return zerolog.TraceLevel
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelCritical:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}

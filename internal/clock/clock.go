// Copyright 2023 Buf Technologies, Inc.
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

package clock

import "time"

// Clock is an interface compatible with the jonboulle/clockwork package.
// The intent is that clockwork only be a dependency for tests, not for
// non-test code: production code depends only on this interface.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Sleep(d time.Duration)
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer covers the part of a [time.Timer] that this interface exposes:
// Stop. The resolver discards the Timer of a scheduled retry re-dispatch
// and never stops it; a re-dispatch that fires after Shutdown reaches a
// strategy that is no longer initialized.
type Timer interface {
	Stop() bool
}

// NewReal returns a Clock implementation where all methods delegate to the
// corresponding function in the [time] package.
func NewReal() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time                   { return time.Now() }
func (realClock) Since(t time.Time) time.Duration  { return time.Since(t) }
func (realClock) Sleep(d time.Duration)            { time.Sleep(d) }
func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{time.AfterFunc(d, f)}
}

type realTimer struct{ *time.Timer }

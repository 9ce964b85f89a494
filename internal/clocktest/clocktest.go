// Copyright 2023-2025 Buf Technologies, Inc.
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

// Package clocktest exists to allow interoperability between our Clock
// interface and the Clockwork interfaces. Compatibility between Go
// interfaces is shallow, since function signatures containing other
// interfaces within an interface are compared by exact (nominal) type. So
// for the one Clock method that returns a Timer, we still need a thin
// wrapper type to adapt *clockwork.FakeClock to our clock.Clock interface.
package clocktest

import (
	"context"
	"time"

	"github.com/arrowdns/resolver/internal/clock"
	"github.com/jonboulle/clockwork"
)

// FakeClock provides a clock that can be manually advanced through time,
// adapting *clockwork.FakeClock to our clock.Clock interface so that retry
// backoff and cache TTL expiry can be tested deterministically.
type FakeClock interface {
	clock.Clock
	Advance(d time.Duration)
	BlockUntilContext(ctx context.Context, waiters int) error
}

// New creates a new FakeClock using clockwork.
func New() FakeClock {
	return fakeClock{clockwork.NewFakeClock()}
}

type fakeClock struct {
	*clockwork.FakeClock
}

var _ FakeClock = fakeClock{}

// AfterFunc implements clock.Clock by re-boxing the clockwork.Timer
// returned by clockwork.Clock.AfterFunc as a clock.Timer.
func (f fakeClock) AfterFunc(d time.Duration, fn func()) clock.Timer {
	return f.FakeClock.AfterFunc(d, fn)
}

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

package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowdns/resolver/config"
	"github.com/arrowdns/resolver/internal/clocktest"
	"github.com/arrowdns/resolver/logging"
	"github.com/arrowdns/resolver/metrics"
	"github.com/arrowdns/resolver/status"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Servers = []config.ServerDescriptor{
		{Address: "127.0.0.1", Port: 53, Weight: 1, Timeout: 50 * time.Millisecond, Enabled: true},
	}
	return cfg.Normalize()
}

func TestDNSStrategyNotInitializedFiresSynchronously(t *testing.T) {
	s := NewDNSStrategy(clocktest.New(), logging.NewNop(), metrics.Nop{})

	var got status.Outcome
	fired := false
	s.Query("example.com", func(o status.Outcome) {
		fired = true
		got = o
	})

	assert.True(t, fired, "callback must fire synchronously when uninitialized")
	assert.Equal(t, status.NotInitialized, got.Status)
}

func TestDNSStrategyInitializeRejectsEmptyServerList(t *testing.T) {
	s := NewDNSStrategy(clocktest.New(), logging.NewNop(), metrics.Nop{})
	err := s.Initialize(config.Config{})
	assert.Error(t, err)
	assert.False(t, s.IsInitialized())
}

func TestDNSStrategyInitializeThenShutdownToggleState(t *testing.T) {
	s := NewDNSStrategy(clocktest.New(), logging.NewNop(), metrics.Nop{})
	require.NoError(t, s.Initialize(testConfig()))
	assert.True(t, s.IsInitialized())

	s.Shutdown()
	assert.False(t, s.IsInitialized())

	// Idempotent.
	s.Shutdown()
}

func TestDNSStrategyShutdownCancelsPendingCallbacks(t *testing.T) {
	s := NewDNSStrategy(clocktest.New(), logging.NewNop(), metrics.Nop{})
	require.NoError(t, s.Initialize(testConfig()))

	var outcomes []status.Outcome
	s.mu.Lock()
	for i := 0; i < 3; i++ {
		id := s.nextID
		s.nextID++
		s.pending[id] = func(o status.Outcome) {
			outcomes = append(outcomes, o)
		}
	}
	s.mu.Unlock()

	s.Shutdown()

	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.Equal(t, status.Cancelled, o.Status)
	}
}

func TestDNSStrategyProcessEventsDrainsCompletions(t *testing.T) {
	s := NewDNSStrategy(clocktest.New(), logging.NewNop(), metrics.Nop{})
	require.NoError(t, s.Initialize(testConfig()))
	defer s.Shutdown()

	var got status.Outcome
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.pending[id] = func(o status.Outcome) { got = o }
	s.mu.Unlock()

	s.results <- completion{
		id:      id,
		outcome: status.Outcome{Hostname: "example.com", Status: status.Success, Addresses: []string{"1.2.3.4"}},
	}

	s.ProcessEvents()

	assert.Equal(t, status.Success, got.Status)
	assert.Equal(t, []string{"1.2.3.4"}, got.Addresses)

	s.mu.Lock()
	_, stillPending := s.pending[id]
	s.mu.Unlock()
	assert.False(t, stillPending)
}

func TestDNSStrategyProcessEventsNoopWhenUninitialized(t *testing.T) {
	s := NewDNSStrategy(clocktest.New(), logging.NewNop(), metrics.Nop{})
	s.ProcessEvents() // must not panic on empty/uninitialized state
}

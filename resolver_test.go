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

package resolver

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowdns/resolver/cache"
	"github.com/arrowdns/resolver/config"
	"github.com/arrowdns/resolver/event"
	"github.com/arrowdns/resolver/internal/clocktest"
	"github.com/arrowdns/resolver/metrics"
	"github.com/arrowdns/resolver/status"
	"github.com/arrowdns/resolver/strategy"
)

// stubStrategy is a Strategy whose responses are scripted per call, used
// to drive Resolve through deterministic success/retry/failure sequences.
type stubStrategy struct {
	mu         sync.Mutex
	calls      int
	script     []status.Outcome // one entry consumed per Query call; last entry repeats
	dispatched []string
}

func (s *stubStrategy) Initialize(config.Config) error { return nil }

func (s *stubStrategy) Query(host string, cb strategy.Callback) {
	s.mu.Lock()
	s.dispatched = append(s.dispatched, host)
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	outcome := s.script[idx]
	s.calls++
	s.mu.Unlock()

	outcome.Hostname = host
	cb(outcome)
}

func (*stubStrategy) ProcessEvents()      {}
func (*stubStrategy) Shutdown()           {}
func (*stubStrategy) IsInitialized() bool { return true }

// blockingStrategy never completes its Query until release is closed, used
// to hold the admission gate open for TestResolveAdmissionRejection.
type blockingStrategy struct {
	release chan struct{}
}

func (*blockingStrategy) Initialize(config.Config) error { return nil }
func (s *blockingStrategy) Query(host string, cb strategy.Callback) {
	<-s.release
	cb(status.Outcome{Hostname: host, Status: status.Cancelled})
}
func (*blockingStrategy) ProcessEvents()      {}
func (*blockingStrategy) Shutdown()           {}
func (*blockingStrategy) IsInitialized() bool { return true }

type countingMetrics struct {
	mu      sync.Mutex
	queries []bool
	retries []int
	errors  []string
}

func (m *countingMetrics) RecordQuery(hostname string, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, success)
}
func (m *countingMetrics) RecordCacheHit(string)  {}
func (m *countingMetrics) RecordCacheMiss(string) {}
func (m *countingMetrics) RecordError(kind, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}
func (m *countingMetrics) RecordRetry(hostname string, attempt int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries = append(m.retries, attempt)
}
func (m *countingMetrics) RecordServerLatency(string, time.Duration) {}
func (m *countingMetrics) GetStats() metrics.Stats                   { return metrics.Stats{} }
func (m *countingMetrics) ResetStats()                                {}

func testResolverConfig() config.Config {
	cfg := config.Default()
	cfg.Servers = []config.ServerDescriptor{{Address: "10.0.0.1", Port: 53, Weight: 1, Timeout: time.Second, Enabled: true}}
	cfg.Retry = config.RetryConfig{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 1000 * time.Millisecond}
	cfg.Cache = config.CacheConfig{Enabled: true, TTL: 60 * time.Second, MaxSize: 1000}
	cfg.MaxConcurrentQueries = 100
	return cfg
}

// buildResolver wires a Resolver with a fake clock, the given strategy, a
// real LRU cache, and counting metrics.
func buildResolver(t *testing.T, cfg config.Config, strat strategy.Strategy, met *countingMetrics) (*Resolver, clocktest.FakeClock) {
	t.Helper()
	fc := clocktest.New()
	c := cache.NewWithClock(cfg.Cache.MaxSize, cfg.Cache.TTL, fc)
	r := New(Options{
		Config:   cfg,
		Cache:    c,
		Strategy: strat,
		Metrics:  met,
		Clock:    fc,
	})
	require.NoError(t, r.Initialize())
	return r, fc
}

func TestResolveCacheHit(t *testing.T) {
	cfg := testResolverConfig()
	strat := &stubStrategy{script: []status.Outcome{{Status: status.Success, Addresses: []string{"should-not-be-used"}}}}
	met := &countingMetrics{}
	r, _ := buildResolver(t, cfg, strat, met)
	defer r.Shutdown()

	r.Cache().Update("example.com", []string{"93.184.216.34"})

	var got ResolveResult
	r.Resolve("example.com", func(res ResolveResult) { got = res })

	assert.Equal(t, status.Success, got.Status)
	assert.True(t, got.FromCache)
	assert.Equal(t, []string{"93.184.216.34"}, got.Addresses)
	assert.Less(t, got.Elapsed, 10*time.Millisecond)
	assert.Empty(t, strat.dispatched, "cache hit must not dispatch to the strategy")
}

func TestResolveRetriesThenSucceeds(t *testing.T) {
	cfg := testResolverConfig()
	strat := &stubStrategy{script: []status.Outcome{
		{Status: status.Timeout},
		{Status: status.Timeout},
		{Status: status.Success, Addresses: []string{"1.2.3.4"}},
	}}
	met := &countingMetrics{}
	r, fc := buildResolver(t, cfg, strat, met)
	defer r.Shutdown()

	var got ResolveResult
	done := make(chan struct{})
	r.Resolve("retry.test", func(res ResolveResult) {
		got = res
		close(done)
	})

	// Advance the fake clock past both backoff delays (100ms, 200ms) so the
	// scheduled re-dispatches fire.
	for i := 0; i < 50; i++ {
		select {
		case <-done:
			i = 50
		default:
			fc.Advance(50 * time.Millisecond)
			time.Sleep(time.Millisecond)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}

	assert.Equal(t, status.Success, got.Status)
	assert.False(t, got.FromCache)
	met.mu.Lock()
	assert.Equal(t, []int{1, 2}, met.retries)
	met.mu.Unlock()
}

func TestResolveExhaustsRetries(t *testing.T) {
	cfg := testResolverConfig()
	strat := &stubStrategy{script: []status.Outcome{{Status: status.Timeout}}}
	met := &countingMetrics{}
	r, fc := buildResolver(t, cfg, strat, met)
	defer r.Shutdown()

	var got ResolveResult
	done := make(chan struct{})
	r.Resolve("always-timeout.test", func(res ResolveResult) {
		got = res
		close(done)
	})

	for i := 0; i < 50; i++ {
		select {
		case <-done:
			i = 50
		default:
			fc.Advance(50 * time.Millisecond)
			time.Sleep(time.Millisecond)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}

	assert.Equal(t, status.Timeout, got.Status)
	met.mu.Lock()
	assert.Equal(t, []int{1, 2}, met.retries)
	assert.Equal(t, []bool{false}, met.queries, "record_query fires once, at the terminal outcome")
	met.mu.Unlock()
}

func TestResolveNXDOMAINNotRetried(t *testing.T) {
	cfg := testResolverConfig()
	strat := &stubStrategy{script: []status.Outcome{{Status: status.NotFound}}}
	met := &countingMetrics{}
	r, _ := buildResolver(t, cfg, strat, met)
	defer r.Shutdown()

	var got ResolveResult
	r.Resolve("nxdomain.test", func(res ResolveResult) { got = res })

	assert.Equal(t, status.NotFound, got.Status)
	met.mu.Lock()
	assert.Empty(t, met.retries)
	met.mu.Unlock()
	assert.Equal(t, 1, strat.calls)
}

// TestResolveAddressChangeDetection exercises onResult directly rather
// than through Resolve, to cover a dispatch completing while the cache
// already holds a prior value for the same host (e.g. a concurrent
// writer, or a retry whose first attempt raced a cache write), which
// Resolve's own admit-then-cache-lookup gate does not reach on a single
// synchronous call.
func TestResolveAddressChangeDetection(t *testing.T) {
	cfg := testResolverConfig()
	strat := &stubStrategy{}
	met := &countingMetrics{}
	r, _ := buildResolver(t, cfg, strat, met)
	defer r.Shutdown()

	r.Cache().Update("foo.test", []string{"10.0.0.1"})

	var changes []event.AddressChanged
	r.EventBus().SubscribeAddressChange(func(e event.AddressChanged) {
		changes = append(changes, e)
	})

	var got ResolveResult
	r.onResult("foo.test", 0, status.Outcome{Status: status.Success, Addresses: []string{"10.0.0.2"}}, func(res ResolveResult) {
		got = res
	}, cfg)

	require.Equal(t, status.Success, got.Status)
	require.Len(t, changes, 1)
	assert.Equal(t, []string{"10.0.0.1"}, changes[0].OldAddresses)
	assert.Equal(t, []string{"10.0.0.2"}, changes[0].NewAddresses)
	assert.Equal(t, "A", changes[0].RecordType)

	// A second resolution returning the same address must not re-fire.
	r.onResult("foo.test", 0, status.Outcome{Status: status.Success, Addresses: []string{"10.0.0.2"}}, func(ResolveResult) {}, cfg)
	assert.Len(t, changes, 1, "no address-changed event when old == new")
}

func TestResolveAdmissionRejection(t *testing.T) {
	cfg := testResolverConfig()
	cfg.MaxConcurrentQueries = 1

	block := make(chan struct{})
	strat := &blockingStrategy{release: block}
	met := &countingMetrics{}
	r, _ := buildResolver(t, cfg, strat, met)
	defer func() {
		close(block)
		r.Shutdown()
	}()

	go r.Resolve("slow.test", func(ResolveResult) {})
	// Give the first call a moment to cross the admission gate and block in
	// dispatch.
	time.Sleep(20 * time.Millisecond)

	var got ResolveResult
	fired := make(chan struct{})
	r.Resolve("second.test", func(res ResolveResult) {
		got = res
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("second resolve should be rejected synchronously")
	}
	assert.Equal(t, status.Overloaded, got.Status)
}

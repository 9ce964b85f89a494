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
	"fmt"
	"sync/atomic"
	"time"

	"github.com/arrowdns/resolver/cache"
	"github.com/arrowdns/resolver/config"
	"github.com/arrowdns/resolver/event"
	"github.com/arrowdns/resolver/internal/clock"
	"github.com/arrowdns/resolver/logging"
	"github.com/arrowdns/resolver/metrics"
	"github.com/arrowdns/resolver/registry"
	"github.com/arrowdns/resolver/status"
	"github.com/arrowdns/resolver/strategy"
)

// Options configures a new Resolver. Every collaborator field is optional:
// a nil Provider, Cache, Strategy, Bus, Metrics, Logger, Clock or Registry
// is replaced with a built-in default, since the core depends only on
// interfaces and never requires a particular external collaborator. The
// config snapshot must still pass validation (at least one server, among
// others) for Initialize to succeed.
type Options struct {
	Config config.Config

	Provider config.Provider
	Cache    cache.Cache
	Strategy strategy.Strategy
	Bus      *event.Bus
	Metrics  metrics.Metrics
	Logger   logging.Logger
	Clock    clock.Clock
	Registry *registry.Registry
}

// Resolver orchestrates admission, cache lookup, dispatch, retry, and
// change detection, wired to a pluggable strategy.Strategy, cache.Cache,
// and event.Bus.
type Resolver struct {
	initialized atomic.Bool
	inFlight    atomic.Int64

	provider config.Provider
	cache    cache.Cache
	strat    strategy.Strategy
	bus      *event.Bus
	metrics  metrics.Metrics
	logger   logging.Logger
	clock    clock.Clock
	registry *registry.Registry
}

// New constructs a Resolver. Call Initialize before issuing queries.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	met := opts.Metrics
	if met == nil {
		met = metrics.Nop{}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewReal()
	}
	provider := opts.Provider
	if provider == nil {
		provider = config.NewStaticProvider(opts.Config)
	}
	bus := opts.Bus
	if bus == nil {
		bus = event.New()
	}
	reg := opts.Registry
	if reg == nil {
		reg = registry.New(logger)
	}

	return &Resolver{
		provider: provider,
		cache:    opts.Cache,
		strat:    opts.Strategy,
		bus:      bus,
		metrics:  met,
		logger:   logger,
		clock:    clk,
		registry: reg,
	}
}

// Initialize validates the current config snapshot, registers the two
// built-in factories (strategy.DNSStrategy under "default", cache.LRU
// under "lru"), instantiates a cache/strategy if none were injected via
// Options, and subscribes to config-change notifications. Idempotent:
// calling it again after a successful call is a no-op that returns nil.
func (r *Resolver) Initialize() error {
	if r.initialized.Load() {
		return nil
	}

	cfg := r.provider.GetConfig().Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("resolver: invalid config: %w", err)
	}

	r.registry.RegisterStrategy("default", func() strategy.Strategy {
		return strategy.NewDNSStrategy(r.clock, r.logger, r.metrics)
	})
	r.registry.RegisterCache("lru", func() cache.Cache {
		return cache.NewWithClock(cfg.Cache.MaxSize, cfg.Cache.TTL, r.clock)
	})

	if r.strat == nil {
		strat, ok := r.registry.NewStrategy("default")
		if !ok {
			return fmt.Errorf("resolver: no strategy factory registered under %q", "default")
		}
		r.strat = strat
	}
	if r.cache == nil {
		c, ok := r.registry.NewCache("lru")
		if !ok {
			return fmt.Errorf("resolver: no cache factory registered under %q", "lru")
		}
		r.cache = c
	}

	if err := r.strat.Initialize(cfg); err != nil {
		return fmt.Errorf("resolver: strategy initialization failed: %w", err)
	}

	r.provider.RegisterChangeHandler(r.onConfigChanged)

	r.initialized.Store(true)
	return nil
}

// Shutdown delegates to the strategy's shutdown (cancelling outstanding
// queries) and marks the Resolver uninitialized. After Shutdown, Resolve
// returns NotInitialized synchronously. Safe to call multiple times.
func (r *Resolver) Shutdown() {
	if !r.initialized.CompareAndSwap(true, false) {
		return
	}
	if r.strat != nil {
		r.strat.Shutdown()
	}
}

// IsInitialized reports whether Initialize has succeeded and Shutdown has
// not yet been called.
func (r *Resolver) IsInitialized() bool {
	return r.initialized.Load()
}

// ProcessEvents drives the underlying strategy's async completions. Safe
// to call when not initialized (no-op).
func (r *Resolver) ProcessEvents() {
	if !r.initialized.Load() {
		return
	}
	r.strat.ProcessEvents()
}

// Resolve admits host through the concurrency gate, serves it from cache
// when possible, and otherwise dispatches it to the strategy. cb always
// fires exactly once, synchronously for a rejection or cache hit and
// asynchronously once the dispatched query (and any retries) settle.
func (r *Resolver) Resolve(host string, cb Callback) {
	admitStart := r.clock.Now()

	if !r.initialized.Load() {
		cb(ResolveResult{Hostname: host, Status: status.NotInitialized, Error: status.NotInitialized.String()})
		return
	}

	if !validHostname(host) {
		cb(ResolveResult{Hostname: host, Status: status.BadName, Error: status.BadName.String()})
		return
	}

	cfg := r.provider.GetConfig()

	n := r.inFlight.Add(1)
	if n > int64(cfg.MaxConcurrentQueries) {
		r.inFlight.Add(-1)
		cb(ResolveResult{Hostname: host, Status: status.Overloaded, Error: status.Overloaded.String()})
		return
	}

	r.bus.PublishQueryStarted(host)

	if addrs, ok := r.cache.Get(host); ok {
		r.inFlight.Add(-1)
		r.metrics.RecordCacheHit(host)
		elapsed := r.clock.Since(admitStart)
		cb(ResolveResult{
			Hostname:  host,
			Status:    status.Success,
			Addresses: addrs,
			Elapsed:   elapsed,
			FromCache: true,
		})
		r.bus.PublishQueryCompleted(host, addrs, true)
		return
	}
	r.metrics.RecordCacheMiss(host)

	r.dispatch(host, 0, cb, cfg)
}

func (r *Resolver) dispatch(host string, retryCount int, cb Callback, cfg config.Config) {
	r.strat.Query(host, func(outcome status.Outcome) {
		r.onResult(host, retryCount, outcome, cb, cfg)
	})
}

// onResult handles one strategy completion: on success it updates the
// cache and fires an address-changed event if the address set drifted;
// on a retryable failure within the attempt budget it schedules a
// backed-off re-dispatch instead of calling back; otherwise it delivers
// the terminal result. The query and error metrics are recorded once per
// top-level Resolve call, at the terminal outcome, not on every interim
// retry attempt, so a query retried twice before succeeding shows up as
// one successful query plus two retry events, not three query events.
func (r *Resolver) onResult(host string, retryCount int, outcome status.Outcome, cb Callback, cfg config.Config) {
	oldAddrs, _ := r.cache.Get(host)

	if outcome.Status == status.Success && len(outcome.Addresses) > 0 {
		r.cache.Update(host, outcome.Addresses)
		if !addressesEqual(oldAddrs, outcome.Addresses) {
			r.bus.PublishAddressChanged(event.AddressChanged{
				Hostname:        host,
				OldAddresses:    oldAddrs,
				NewAddresses:    outcome.Addresses,
				Timestamp:       r.clock.Now(),
				Source:          "dns_resolver",
				TTL:             cfg.Cache.TTL,
				RecordType:      recordType(outcome.Addresses),
				IsAuthoritative: false,
			})
		}
		r.metrics.RecordQuery(host, outcome.Elapsed, true)
		r.inFlight.Add(-1)
		cb(resultFromOutcome(outcome, false))
		r.bus.PublishQueryCompleted(host, outcome.Addresses, true)
		return
	}

	// MaxAttempts bounds the total number of attempts, the first included.
	if outcome.Status.Retryable() && retryCount+1 < cfg.Retry.MaxAttempts {
		retryCount++
		r.metrics.RecordRetry(host, retryCount)
		delay := retryBackoff(retryCount, cfg.Retry)
		r.clock.AfterFunc(delay, func() {
			r.dispatch(host, retryCount, cb, cfg)
		})
		return
	}

	r.metrics.RecordQuery(host, outcome.Elapsed, false)
	r.metrics.RecordError(outcome.Status.String(), outcome.ErrorString())
	r.inFlight.Add(-1)
	cb(resultFromOutcome(outcome, false))
	r.bus.PublishQueryCompleted(host, outcome.Addresses, false)
}

// retryBackoff computes an exponential backoff delay, doubling per retry
// and capped at max_delay: min(base_delay * 2^(retryCount-1), max_delay).
func retryBackoff(retryCount int, cfg config.RetryConfig) time.Duration {
	delay := cfg.BaseDelay << (retryCount - 1)
	if delay > cfg.MaxDelay || delay <= 0 {
		return cfg.MaxDelay
	}
	return delay
}

// addressesEqual is order-sensitive: reordering the same set of addresses
// is treated as a change, matching original_source/src/DNSResolver.cpp's
// sequence comparison rather than a set comparison.
func addressesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// recordType reports "AAAA" iff any address is an IPv6 literal (contains
// ':'), else "A".
func recordType(addrs []string) string {
	for _, a := range addrs {
		for i := 0; i < len(a); i++ {
			if a[i] == ':' {
				return "AAAA"
			}
		}
	}
	return "A"
}

// onConfigChanged validates the new config, and if valid, propagates it
// to the strategy; invalid configs are logged and ignored, leaving the
// previous config in effect.
func (r *Resolver) onConfigChanged(cfg config.Config) {
	normalized := cfg.Normalize()
	if err := normalized.Validate(); err != nil {
		r.logger.Log(logging.LevelWarning, "", "", 0, fmt.Sprintf("resolver: rejected config update: %v", err))
		return
	}
	r.registry.SetPluginConfig(registry.PluginConfig{
		AutoLoad:       normalized.Plugins.AutoLoad,
		ConfigPath:     normalized.Plugins.ConfigPath,
		AllowedNames:   normalized.Plugins.AllowedPlugins,
		ReloadInterval: normalized.Plugins.ReloadInterval,
	})
	if err := r.strat.Initialize(normalized); err != nil {
		r.logger.Log(logging.LevelError, "", "", 0, fmt.Sprintf("resolver: strategy rejected config update: %v", err))
	}
}

// UpdateConfig validates cfg and, if valid, propagates it to the provider
// (which in turn notifies the change handler above). An invalid config is
// logged and rejected without touching the provider, so the previous
// config remains in effect.
func (r *Resolver) UpdateConfig(cfg config.Config) error {
	normalized := cfg.Normalize()
	if err := normalized.Validate(); err != nil {
		r.logger.Log(logging.LevelWarning, "", "", 0, fmt.Sprintf("resolver: rejected config update: %v", err))
		return err
	}
	return r.provider.UpdateConfig(normalized)
}

// GetConfig returns the current config snapshot.
func (r *Resolver) GetConfig() config.Config {
	return r.provider.GetConfig()
}

// Cache, Metrics, EventBus, and Logger are accessors for the Resolver's
// collaborators.
func (r *Resolver) Cache() cache.Cache      { return r.cache }
func (r *Resolver) Metrics() metrics.Metrics { return r.metrics }
func (r *Resolver) EventBus() *event.Bus    { return r.bus }
func (r *Resolver) Logger() logging.Logger  { return r.logger }

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

// Package registry implements an in-process factory registry, grounded on
// original_source/src/PluginManager.cpp: named construction of a Cache or
// Strategy, last registration wins, and a PluginConfig record that is
// stored and exposed but never actioned — the core never dlopen's
// anything on its own behalf; loading a plugin's shared object is an
// embedder's responsibility, not the registry's.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/arrowdns/resolver/cache"
	"github.com/arrowdns/resolver/logging"
	"github.com/arrowdns/resolver/strategy"
)

// CacheFactory constructs a cache.Cache instance. Factories take no
// arguments because construction-time tuning (size, TTL) is the caller's
// job via closures, matching PluginManager::registerCacheFactory's
// zero-argument creator signature.
type CacheFactory func() cache.Cache

// StrategyFactory constructs a strategy.Strategy instance.
type StrategyFactory func() strategy.Strategy

// PluginConfig is carried and exposed for schema fidelity with
// original_source's PluginManager::setPluginConfig, but the registry never
// acts on it: dynamic-library loading is out of scope for this package.
type PluginConfig struct {
	AutoLoad       bool
	ConfigPath     string
	AllowedNames   []string
	ReloadInterval time.Duration
}

// Registry is an in-process factory registry for named Cache and
// Strategy constructors. Registration is idempotent: registering a name
// that already exists logs and overwrites, matching PluginManager's
// "last registration wins" behavior.
type Registry struct {
	mu sync.RWMutex

	caches     map[string]CacheFactory
	strategies map[string]StrategyFactory
	plugin     PluginConfig

	logger logging.Logger
}

// New creates an empty Registry. A nil logger is replaced with a no-op
// logger.
func New(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		caches:     make(map[string]CacheFactory),
		strategies: make(map[string]StrategyFactory),
		logger:     logger,
	}
}

// RegisterCache registers (or overwrites) the cache factory under name.
func (r *Registry) RegisterCache(name string, factory CacheFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caches[name]; exists {
		r.logger.Log(logging.LevelWarning, "", "", 0, fmt.Sprintf("registry: overwriting cache factory %q", name))
	}
	r.caches[name] = factory
}

// RegisterStrategy registers (or overwrites) the strategy factory under
// name.
func (r *Registry) RegisterStrategy(name string, factory StrategyFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.strategies[name]; exists {
		r.logger.Log(logging.LevelWarning, "", "", 0, fmt.Sprintf("registry: overwriting strategy factory %q", name))
	}
	r.strategies[name] = factory
}

// NewCache constructs a new Cache from the factory registered under name.
// A missing name is the caller's initialization error to handle; the
// registry itself just reports absence.
func (r *Registry) NewCache(name string) (cache.Cache, bool) {
	r.mu.RLock()
	factory, ok := r.caches[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// NewStrategy constructs a new Strategy from the factory registered under
// name.
func (r *Registry) NewStrategy(name string) (strategy.Strategy, bool) {
	r.mu.RLock()
	factory, ok := r.strategies[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// HasCache and HasStrategy report whether a factory is registered under
// name, for callers that want to validate configuration before
// construction.
func (r *Registry) HasCache(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.caches[name]
	return ok
}

func (r *Registry) HasStrategy(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.strategies[name]
	return ok
}

// SetPluginConfig stores cfg for later retrieval by an external plugin
// loader. The registry never reads ConfigPath or dlopen's AllowedNames
// itself.
func (r *Registry) SetPluginConfig(cfg PluginConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugin = cfg
}

func (r *Registry) PluginConfig() PluginConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugin
}

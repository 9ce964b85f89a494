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

package config

import "sync"

// Provider is the config-provider trait boundary. Snapshots returned by
// GetConfig are immutable; producers publish them atomically and readers
// are wait-free.
type Provider interface {
	GetConfig() Config
	UpdateConfig(Config) error
	RegisterChangeHandler(func(Config))
}

// StaticProvider is an in-memory Provider with no file-watching or
// hot-reload: loading from disk is an external collaborator's job. It
// exists so the core is runnable and testable standalone, mirroring
// original_source's ConfigManager but without the file-loading half of
// it.
type StaticProvider struct {
	mu       sync.RWMutex
	current  Config
	handlers []func(Config)
}

// NewStaticProvider creates a Provider seeded with the given config. The
// config is not validated here; Resolver.Initialize is responsible for
// validating the first snapshot it reads.
func NewStaticProvider(initial Config) *StaticProvider {
	return &StaticProvider{current: initial}
}

func (p *StaticProvider) GetConfig() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// UpdateConfig stores the new snapshot and notifies registered handlers in
// registration order. It does not validate the config itself — that is the
// handler's job, matching the original's handleConfigChange, which logs and
// discards invalid updates while keeping the previous config in effect.
func (p *StaticProvider) UpdateConfig(cfg Config) error {
	p.mu.Lock()
	p.current = cfg
	handlers := make([]func(Config), len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	for _, h := range handlers {
		h(cfg)
	}
	return nil
}

func (p *StaticProvider) RegisterChangeHandler(handler func(Config)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

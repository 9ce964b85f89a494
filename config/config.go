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

// Package config defines the resolver's configuration schema and the
// Provider trait boundary. Loading configuration from disk and watching
// it for changes belongs to the embedding application, not the core; this
// package only defines the schema, validates it, and offers an in-memory
// Provider so the core is runnable without an external collaborator.
package config

import "time"

// ServerDescriptor is one upstream DNS server entry from the "servers"
// section of the schema.
type ServerDescriptor struct {
	Address string
	Port    uint16
	Weight  int
	Timeout time.Duration
	Enabled bool
}

// CacheConfig is the "cache" section of the schema.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	MaxSize int
	// Persistent and CacheFile are carried for schema fidelity with the
	// original implementation but are not actioned: this core keeps its
	// cache in memory only and never reads or writes either field.
	Persistent bool
	CacheFile  string
}

// RetryConfig is the "retry" section of the schema.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// MetricsConfig is the "metrics" section of the schema.
type MetricsConfig struct {
	Enabled           bool
	MetricsFile       string
	ReportInterval    time.Duration
}

// PluginsConfig is the "plugins" section of the schema. The core never
// dynamically loads a library on its own behalf; this record is only
// stored and exposed through the registry for an external loader to act
// on.
type PluginsConfig struct {
	AutoLoad       bool
	ConfigPath     string
	AllowedPlugins []string
	ReloadInterval time.Duration
}

// Config is the full resolver configuration schema.
type Config struct {
	Servers               []ServerDescriptor
	Cache                 CacheConfig
	Retry                 RetryConfig
	Metrics               MetricsConfig
	Plugins               PluginsConfig
	QueryTimeout          time.Duration
	MaxConcurrentQueries  int
	IPv6Enabled           bool
	ServerErrorThreshold  int
}

// Default returns the schema's documented defaults.
func Default() Config {
	return Config{
		Servers: nil,
		Cache: CacheConfig{
			Enabled: true,
			TTL:     300 * time.Second,
			MaxSize: 10000,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   100 * time.Millisecond,
			MaxDelay:    1000 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled:        true,
			ReportInterval: 60 * time.Second,
		},
		Plugins: PluginsConfig{
			ReloadInterval: 60 * time.Second,
		},
		QueryTimeout:         5 * time.Second,
		MaxConcurrentQueries: 100,
		IPv6Enabled:          false,
		ServerErrorThreshold: 10,
	}
}

// Validate checks the bounds a resolver must enforce before it can safely
// start: at least one server, query timeout in [100ms, 30000ms], retry max
// attempts in [1, 10], and max delay >= base delay.
func (c Config) Validate() error {
	if len(c.Servers) == 0 {
		return ErrNoServers
	}
	if c.QueryTimeout < 100*time.Millisecond || c.QueryTimeout > 30*time.Second {
		return ErrQueryTimeoutOutOfRange
	}
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		return ErrRetryAttemptsOutOfRange
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return ErrRetryDelayInverted
	}
	return nil
}

// ServerDescriptor with a zero Weight is not useful for the strategy's
// weight/(1+avg_latency) scoring formula; Normalize applies the schema's
// documented default of 1 for any server with Weight <= 0, and Port 53 /
// Timeout 2s for zero-valued fields.
func (c Config) Normalize() Config {
	servers := make([]ServerDescriptor, len(c.Servers))
	for i, s := range c.Servers {
		if s.Weight <= 0 {
			s.Weight = 1
		}
		if s.Port == 0 {
			s.Port = 53
		}
		if s.Timeout <= 0 {
			s.Timeout = 2 * time.Second
		}
		servers[i] = s
	}
	c.Servers = servers
	return c
}

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

// Package strategy defines the pluggable query-strategy abstraction: the
// replaceable piece that turns a hostname into an address list via an
// upstream DNS protocol, independent of caching or retry policy (which
// live in the resolver package).
package strategy

import (
	"github.com/arrowdns/resolver/config"
	"github.com/arrowdns/resolver/status"
)

// Callback is invoked exactly once per dispatched query, matching the
// one-shot completion contract every query context carries.
type Callback func(status.Outcome)

// Strategy is the query-strategy contract. A single instance must accept
// unbounded concurrent Query calls and be internally thread-safe.
type Strategy interface {
	// Initialize (re)configures the strategy from cfg: the server pool,
	// address-family policy, and health thresholds. Called once at
	// resolver startup and again on every accepted config-change
	// notification.
	Initialize(cfg config.Config) error

	// Query dispatches an asynchronous lookup for host. The callback fires
	// exactly once: on some later ProcessEvents call, from Shutdown with
	// status.Cancelled if the query is still outstanding then, or
	// synchronously with status.NotInitialized if the strategy is not
	// initialized (including after Shutdown).
	Query(host string, cb Callback)

	// ProcessEvents advances outstanding I/O and fires callbacks for
	// completed queries. Safe to call when not initialized (no-op).
	ProcessEvents()

	// Shutdown cancels all outstanding queries, delivering status.Cancelled
	// to any callback that has not yet fired, then tears down the
	// underlying channel. Safe to call multiple times.
	Shutdown()

	// IsInitialized reports whether Initialize succeeded and Shutdown has
	// not yet been called.
	IsInitialized() bool
}

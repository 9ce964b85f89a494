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
	"time"

	"github.com/arrowdns/resolver/status"
)

// ResolveResult is the caller-facing tuple returned for every resolution:
// status code, hostname, address list, elapsed time, human-readable
// error, and whether the answer came from cache.
type ResolveResult struct {
	Status     status.Status
	Hostname   string
	Addresses  []string
	Elapsed    time.Duration
	Error      string
	FromCache  bool
}

// Callback is the shape of the function passed to Resolver.Resolve. It is
// always invoked exactly once.
type Callback func(ResolveResult)

func resultFromOutcome(o status.Outcome, fromCache bool) ResolveResult {
	return ResolveResult{
		Status:    o.Status,
		Hostname:  o.Hostname,
		Addresses: o.Addresses,
		Elapsed:   o.Elapsed,
		Error:     o.ErrorString(),
		FromCache: fromCache,
	}
}

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

// Package cache implements a bounded, TTL-indexed, recency-ordered cache
// mapping hostnames to address lists.
package cache

// Cache is the cache contract. All operations are thread-safe and O(1)
// amortized.
type Cache interface {
	Get(host string) ([]string, bool)
	Update(host string, addrs []string)
	Remove(host string)
	Clear()
	Size() int
	HitRate() float64
}

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

// Package resolver provides an embeddable, asynchronous DNS name-resolution
// core suitable for long-running client applications that repeatedly
// resolve the same set of hostnames and need low tail latency, tolerance of
// flaky upstream servers, and observable change notification when a
// hostname's address set drifts.
//
// The core is four cooperating pieces: the Resolver itself (admission,
// cache lookup, dispatch, retry, change detection), a pluggable
// strategy.Strategy for the actual upstream query, a cache.Cache, and an
// event.Bus for change notification. The default strategy.Strategy
// (strategy.DNSStrategy) issues queries with github.com/miekg/dns against a
// configured pool of servers, selecting among them by a weight/latency
// health score.
//
// To use it, build a Config, construct a Resolver with New, call
// Initialize, and drive ProcessEvents periodically (every ~10ms is a
// reasonable cadence) from a goroutine owned by the embedder:
//
//	r := resolver.New(resolver.Options{Config: cfg})
//	if err := r.Initialize(); err != nil {
//		log.Fatal(err)
//	}
//	defer r.Shutdown()
//	go func() {
//		for {
//			r.ProcessEvents()
//			time.Sleep(10 * time.Millisecond)
//		}
//	}()
//
//	r.Resolve("example.com", func(res resolver.ResolveResult) {
//		// res.Addresses, res.Status, ...
//	})
package resolver

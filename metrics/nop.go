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

package metrics

import "time"

// Nop discards every measurement. Used when an embedder has not wired a
// real sink, the same role a no-op health checker plays for health
// checking in a load-balancer package.
type Nop struct{}

var _ Metrics = Nop{}

func (Nop) RecordQuery(string, time.Duration, bool)   {}
func (Nop) RecordCacheHit(string)                     {}
func (Nop) RecordCacheMiss(string)                    {}
func (Nop) RecordError(string, string)                {}
func (Nop) RecordRetry(string, int)                   {}
func (Nop) RecordServerLatency(string, time.Duration) {}
func (Nop) GetStats() Stats                           { return Stats{} }
func (Nop) ResetStats()                               {}

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

package strategy

import (
	"sync"
	"time"

	"github.com/arrowdns/resolver/config"
	"github.com/arrowdns/resolver/internal/clock"
)

// rollingWindowSize bounds the per-server rolling latency window: average
// latency is computed over the most recent 100 samples, so one bad sample
// can't dominate the score forever and a server can recover once its
// recent latencies improve.
const rollingWindowSize = 100

// serverHealth is the per-server health record: a rolling latency
// average, an error counter, and the derived healthy flag used by
// selection. It is guarded by healthTable's mutex, held only while
// mutating the per-server record.
type serverHealth struct {
	healthy     bool
	lastCheck   time.Time
	errorCount  int
	avgLatency  time.Duration
	window      []time.Duration
	windowNext  int
}

func newServerHealth() *serverHealth {
	return &serverHealth{healthy: true}
}

func (h *serverHealth) recordSuccess(latency time.Duration, now time.Time) {
	if len(h.window) < rollingWindowSize {
		h.window = append(h.window, latency)
	} else {
		h.window[h.windowNext] = latency
		h.windowNext = (h.windowNext + 1) % rollingWindowSize
	}
	var sum time.Duration
	for _, d := range h.window {
		sum += d
	}
	h.avgLatency = sum / time.Duration(len(h.window))
	h.errorCount = 0
	h.healthy = true
	h.lastCheck = now
}

func (h *serverHealth) recordFailure(now time.Time, threshold int) {
	h.errorCount++
	h.lastCheck = now
	if h.errorCount > threshold {
		h.healthy = false
	}
}

func (h *serverHealth) reset() {
	h.healthy = true
	h.errorCount = 0
}

// score computes the server's selection weight: score = weight /
// (1 + avg_latency_ms). Higher weight and lower latency both push a
// server towards selection.
func (h *serverHealth) score(weight int) float64 {
	return float64(weight) / (1 + float64(h.avgLatency.Milliseconds()))
}

// healthTable tracks serverHealth for every configured server and
// implements weighted, health-aware server selection, grounded on
// CaresQueryStrategy::selectServer and
// CaresQueryStrategy::updateServerMetrics.
type healthTable struct {
	mu      sync.Mutex
	byAddr  map[string]*serverHealth
	clock   clock.Clock
}

func newHealthTable(c clock.Clock) *healthTable {
	return &healthTable{byAddr: make(map[string]*serverHealth), clock: c}
}

// reconfigure rebuilds the table for the enabled servers, on
// initialization and on config change: servers already in the table keep
// their accumulated health, new ones start healthy with zeroed counters,
// and servers that are disabled or no longer listed are dropped.
func (t *healthTable) reconfigure(servers []config.ServerDescriptor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fresh := make(map[string]*serverHealth, len(servers))
	for _, s := range servers {
		if !s.Enabled {
			continue
		}
		if existing, ok := t.byAddr[s.Address]; ok {
			fresh[s.Address] = existing
			continue
		}
		fresh[s.Address] = newServerHealth()
	}
	t.byAddr = fresh
}

// selectServer picks the highest score among enabled-and-healthy
// servers, falling back to a total health reset plus the first configured
// server if none are eligible — the failsafe path for when every server
// has tripped its error threshold.
func (t *healthTable) selectServer(servers []config.ServerDescriptor) (config.ServerDescriptor, bool) {
	if len(servers) == 0 {
		return config.ServerDescriptor{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var best config.ServerDescriptor
	bestScore := -1.0
	found := false
	for _, s := range servers {
		if !s.Enabled {
			continue
		}
		h, ok := t.byAddr[s.Address]
		if !ok || !h.healthy {
			continue
		}
		sc := h.score(s.Weight)
		if sc > bestScore {
			bestScore = sc
			best = s
			found = true
		}
	}
	if found {
		return best, true
	}

	// Failsafe: total health collapse. Reset everyone and pick the first
	// configured server.
	for _, h := range t.byAddr {
		h.reset()
	}
	return servers[0], true
}

func (t *healthTable) recordSuccess(addr string, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.byAddr[addr]
	if !ok {
		h = newServerHealth()
		t.byAddr[addr] = h
	}
	h.recordSuccess(latency, t.clock.Now())
}

func (t *healthTable) recordFailure(addr string, threshold int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.byAddr[addr]
	if !ok {
		h = newServerHealth()
		t.byAddr[addr] = h
	}
	h.recordFailure(t.clock.Now(), threshold)
}

// avgLatency returns the rolling average latency currently recorded for
// addr, and false if addr has no health record.
func (t *healthTable) avgLatency(addr string) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.byAddr[addr]
	if !ok {
		return 0, false
	}
	return h.avgLatency, true
}

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

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arrowdns/resolver/logging"
)

const maxSamples = 1000

// AlertThresholds mirrors original_source/src/BasicMetrics.cpp's
// AlertThresholds record. CheckAlertConditions compares the current
// snapshot against MaxErrorRate and MinCacheHitRate; MaxLatency and
// MaxRetryCount are checked as each server latency or retry is recorded,
// and a warning is logged when one is exceeded. A zero field disables its
// check.
type AlertThresholds struct {
	MaxErrorRate     float64
	MinCacheHitRate  float64
	MaxLatency       time.Duration
	MaxRetryCount    int
}

// Basic is a mutex-protected, in-process Metrics implementation, grounded
// on original_source/src/BasicMetrics.cpp. It is a reference sink: real
// aggregation/percentile reporting across process boundaries is an
// external collaborator's job, but this implementation is still fully
// functional on its own, the way the original ships a working
// BasicMetrics alongside the abstract IMetrics interface.
type Basic struct {
	mu sync.Mutex

	totalQueries, successfulQueries, failedQueries int64
	cacheHits, cacheMisses, totalRetries            int64

	durations []time.Duration

	serverLatencies map[string]time.Duration
	errorStats      map[string]ErrorStats
	hostnameStats   map[string]HostnameStats

	thresholds AlertThresholds
	logger     logging.Logger
}

var _ Metrics = (*Basic)(nil)

// NewBasic creates a Basic metrics sink. A nil logger is replaced with a
// no-op logger.
func NewBasic(logger logging.Logger) *Basic {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Basic{
		serverLatencies: make(map[string]time.Duration),
		errorStats:      make(map[string]ErrorStats),
		hostnameStats:   make(map[string]HostnameStats),
		logger:          logger,
	}
}

func (b *Basic) RecordQuery(hostname string, duration time.Duration, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalQueries++
	if success {
		b.successfulQueries++
	} else {
		b.failedQueries++
	}

	b.durations = append(b.durations, duration)
	if len(b.durations) > maxSamples {
		b.durations = b.durations[len(b.durations)-maxSamples:]
	}

	stats := b.hostnameStats[hostname]
	stats.QueryCount++
	b.hostnameStats[hostname] = stats
}

func (b *Basic) RecordCacheHit(hostname string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cacheHits++
	stats := b.hostnameStats[hostname]
	stats.CacheHits++
	b.hostnameStats[hostname] = stats
}

func (b *Basic) RecordCacheMiss(hostname string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cacheMisses++
	stats := b.hostnameStats[hostname]
	stats.CacheMisses++
	b.hostnameStats[hostname] = stats
}

func (b *Basic) RecordError(kind, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stats := b.errorStats[kind]
	stats.Count++
	stats.LastDetail = detail
	stats.LastOccurred = time.Now()
	b.errorStats[kind] = stats
}

func (b *Basic) RecordRetry(hostname string, attempt int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalRetries++
	stats := b.hostnameStats[hostname]
	stats.RetryCount++
	b.hostnameStats[hostname] = stats

	if b.thresholds.MaxRetryCount > 0 && attempt > b.thresholds.MaxRetryCount {
		b.logger.Log(logging.LevelWarning, "metrics", "RecordRetry", 0,
			fmt.Sprintf("hostname %s exceeded retry threshold: %d attempts", hostname, attempt))
	}
}

func (b *Basic) RecordServerLatency(server string, latency time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.serverLatencies[server] = latency

	if b.thresholds.MaxLatency > 0 && latency > b.thresholds.MaxLatency {
		b.logger.Log(logging.LevelWarning, "metrics", "RecordServerLatency", 0,
			fmt.Sprintf("server %s latency (%s) exceeded threshold (%s)", server, latency, b.thresholds.MaxLatency))
	}
}

func (b *Basic) GetStats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := b.cacheHits + b.cacheMisses
	var hitRate float64
	if total > 0 {
		hitRate = float64(b.cacheHits) / float64(total)
	}

	stats := Stats{
		TotalQueries:      b.totalQueries,
		SuccessfulQueries: b.successfulQueries,
		FailedQueries:     b.failedQueries,
		CacheHits:         b.cacheHits,
		CacheMisses:       b.cacheMisses,
		TotalRetries:      b.totalRetries,
		CacheHitRate:      hitRate,
		ServerLatencies:   cloneLatencies(b.serverLatencies),
		ErrorStats:        cloneErrorStats(b.errorStats),
		HostnameStats:     cloneHostnameStats(b.hostnameStats),
	}

	if len(b.durations) > 0 {
		sorted := make([]time.Duration, len(b.durations))
		copy(sorted, b.durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum time.Duration
		for _, d := range sorted {
			sum += d
		}
		stats.AvgQueryTime = sum / time.Duration(len(sorted))
		stats.MinQueryTime = sorted[0]
		stats.MaxQueryTime = sorted[len(sorted)-1]
	}

	return stats
}

func (b *Basic) ResetStats() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalQueries, b.successfulQueries, b.failedQueries = 0, 0, 0
	b.cacheHits, b.cacheMisses, b.totalRetries = 0, 0, 0
	b.durations = nil
	b.serverLatencies = make(map[string]time.Duration)
	b.errorStats = make(map[string]ErrorStats)
	b.hostnameStats = make(map[string]HostnameStats)
}

// SetAlertThresholds configures the limits CheckAlertConditions compares
// against, grounded on BasicMetrics::setAlertThresholds.
func (b *Basic) SetAlertThresholds(t AlertThresholds) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.thresholds = t
}

// CheckAlertConditions reports human-readable descriptions of the error
// rate and cache hit rate thresholds currently being exceeded, grounded on
// BasicMetrics::checkAlertConditions. It does not check MaxLatency or
// MaxRetryCount.
func (b *Basic) CheckAlertConditions() []string {
	stats := b.GetStats()
	var alerts []string

	var errorRate float64
	if stats.TotalQueries > 0 {
		errorRate = float64(stats.FailedQueries) / float64(stats.TotalQueries)
	}
	if b.thresholds.MaxErrorRate > 0 && errorRate > b.thresholds.MaxErrorRate {
		alerts = append(alerts, fmt.Sprintf("error rate %.2f%% exceeded threshold %.2f%%",
			errorRate*100, b.thresholds.MaxErrorRate*100))
	}
	if b.thresholds.MinCacheHitRate > 0 && stats.CacheHitRate < b.thresholds.MinCacheHitRate {
		alerts = append(alerts, fmt.Sprintf("cache hit rate %.2f%% below threshold %.2f%%",
			stats.CacheHitRate*100, b.thresholds.MinCacheHitRate*100))
	}
	return alerts
}

// WriteProm renders a Prometheus text-exposition snapshot, grounded on
// BasicMetrics::getPrometheusMetrics.
func (b *Basic) WriteProm() string {
	stats := b.GetStats()
	var sb strings.Builder

	fmt.Fprintf(&sb, "# TYPE dns_total_queries counter\ndns_total_queries %d\n", stats.TotalQueries)
	fmt.Fprintf(&sb, "# TYPE dns_successful_queries counter\ndns_successful_queries %d\n", stats.SuccessfulQueries)
	fmt.Fprintf(&sb, "# TYPE dns_failed_queries counter\ndns_failed_queries %d\n", stats.FailedQueries)
	fmt.Fprintf(&sb, "# TYPE dns_cache_hits counter\ndns_cache_hits %d\n", stats.CacheHits)
	fmt.Fprintf(&sb, "# TYPE dns_cache_misses counter\ndns_cache_misses %d\n", stats.CacheMisses)
	fmt.Fprintf(&sb, "# TYPE dns_total_retries counter\ndns_total_retries %d\n", stats.TotalRetries)

	fmt.Fprintf(&sb, "# TYPE dns_server_latency_ms gauge\n")
	for server, latency := range stats.ServerLatencies {
		fmt.Fprintf(&sb, "dns_server_latency_ms{server=%q} %d\n", server, latency.Milliseconds())
	}

	fmt.Fprintf(&sb, "# TYPE dns_errors counter\n")
	for kind, errStats := range stats.ErrorStats {
		fmt.Fprintf(&sb, "dns_errors{type=%q} %d\n", kind, errStats.Count)
	}

	return sb.String()
}

func cloneLatencies(in map[string]time.Duration) map[string]time.Duration {
	out := make(map[string]time.Duration, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneErrorStats(in map[string]ErrorStats) map[string]ErrorStats {
	out := make(map[string]ErrorStats, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneHostnameStats(in map[string]HostnameStats) map[string]HostnameStats {
	out := make(map[string]HostnameStats, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

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

// Package metrics defines the instrumentation boundary the resolver core
// reports through. Aggregation and percentile reporting across process
// boundaries is an external collaborator's job, but the package still
// ships Nop and Basic implementations so the core is runnable and
// testable standalone.
package metrics

import "time"

// Metrics is the instrumentation interface the resolver core records
// against: per-query outcomes, cache hit/miss counters, error and retry
// counters, and per-server latency, plus a snapshot/reset pair for
// reporting.
type Metrics interface {
	RecordQuery(hostname string, duration time.Duration, success bool)
	RecordCacheHit(hostname string)
	RecordCacheMiss(hostname string)
	RecordError(kind, detail string)
	RecordRetry(hostname string, attempt int)
	RecordServerLatency(server string, latency time.Duration)
	GetStats() Stats
	ResetStats()
}

// HostnameStats tracks per-hostname counters, grounded on
// original_source/src/BasicMetrics.cpp's hostname_stats_ map.
type HostnameStats struct {
	QueryCount  int64
	CacheHits   int64
	CacheMisses int64
	RetryCount  int64
}

// ErrorStats tracks per-error-kind counters, grounded on the same file's
// error_stats_ map.
type ErrorStats struct {
	Count        int64
	LastDetail   string
	LastOccurred time.Time
}

// Stats is a point-in-time snapshot returned by GetStats.
type Stats struct {
	TotalQueries      int64
	SuccessfulQueries int64
	FailedQueries     int64
	CacheHits         int64
	CacheMisses       int64
	TotalRetries      int64
	CacheHitRate      float64

	AvgQueryTime time.Duration
	MinQueryTime time.Duration
	MaxQueryTime time.Duration

	ServerLatencies map[string]time.Duration
	ErrorStats      map[string]ErrorStats
	HostnameStats   map[string]HostnameStats
}

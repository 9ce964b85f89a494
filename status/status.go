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

// Package status defines the resolution status-code taxonomy shared by the
// resolver and strategy packages, so neither has to import the other just
// to exchange an outcome.
package status

import "time"

// Status is the outcome of a single resolution attempt.
type Status int

const (
	// Success means the resolution returned at least one address.
	Success Status = iota
	// NotInitialized means the resolver has not had Initialize called, or
	// shutdown is in progress.
	NotInitialized
	// BadName means the hostname failed validation.
	BadName
	// Overloaded means the in-flight query count is at max_concurrent_queries.
	Overloaded
	// Timeout means the upstream server did not respond in time.
	Timeout
	// ServerFail means the upstream returned SERVFAIL or an equivalent.
	ServerFail
	// NoData means the name exists but has no records of the requested family.
	NoData
	// NotFound means the name does not exist (NXDOMAIN).
	NotFound
	// Cancelled means the query was cancelled by Shutdown.
	Cancelled
	// TransportError means a network-level failure occurred.
	TransportError
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NotInitialized:
		return "not_initialized"
	case BadName:
		return "bad_name"
	case Overloaded:
		return "overloaded"
	case Timeout:
		return "timeout"
	case ServerFail:
		return "server_fail"
	case NoData:
		return "no_data"
	case NotFound:
		return "not_found"
	case Cancelled:
		return "cancelled"
	case TransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Retryable reports whether the resolver's retry loop should re-dispatch a
// query that completed with this status. NotFound and NoData are
// deliberately not retryable: they are authoritative answers, not failures.
func (s Status) Retryable() bool {
	switch s {
	case Timeout, ServerFail, TransportError:
		return true
	default:
		return false
	}
}

// ServerAttributable reports whether a failure of this kind should count
// against the upstream server's health, as opposed to being a property of
// the name itself (NXDOMAIN-like statuses never indicate server unhealth).
func (s Status) ServerAttributable() bool {
	switch s {
	case Timeout, ServerFail, TransportError:
		return true
	default:
		return false
	}
}

// Outcome is the result of one query dispatched to a Strategy. It is the
// wire format between the strategy and resolver packages; the resolver
// package's client-facing ResolveResult is derived from it.
type Outcome struct {
	Hostname  string
	Status    Status
	Addresses []string
	Elapsed   time.Duration
	Err       error
}

// ErrorString renders a human-readable error string for the outcome,
// suitable for a caller-facing error field. It never exposes a raw,
// untyped underlying error to a caller: the Status.String() value is
// always present, and Err (if any) is appended for diagnostic context
// only.
func (o Outcome) ErrorString() string {
	if o.Status == Success {
		return ""
	}
	if o.Err != nil {
		return o.Status.String() + ": " + o.Err.Error()
	}
	return o.Status.String()
}

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
	"context"
	"errors"
	"net"
	"strconv"
	"sync"

	"github.com/miekg/dns"

	"github.com/arrowdns/resolver/config"
	"github.com/arrowdns/resolver/internal/clock"
	"github.com/arrowdns/resolver/logging"
	"github.com/arrowdns/resolver/metrics"
	"github.com/arrowdns/resolver/status"
)

// processEventsBatch bounds how many completed queries a single
// ProcessEvents call fires callbacks for, matching the driver loop (c-ares'
// processFds in the original) being called on a short, regular cadence
// rather than draining an unbounded queue in one pass.
const processEventsBatch = 256

// DNSStrategy is the default Strategy implementation, grounded on
// original_source/src/CaresQueryStrategy.cpp's async dispatch
// model but using github.com/miekg/dns as the wire-protocol channel in
// place of c-ares: one goroutine per outstanding query instead of a
// fd/select reactor, completion delivered over a channel that ProcessEvents
// drains, per other_examples/haccht-dnsperf-go__resolver.go's use of
// dns.Client.ExchangeContext.
type DNSStrategy struct {
	mu          sync.Mutex
	initialized bool
	shutdownCh  chan struct{}
	wg          sync.WaitGroup

	servers []config.ServerDescriptor
	ipv6    bool
	health  *healthTable

	errorThreshold int

	results chan completion
	pending map[uint64]Callback
	nextID  uint64

	clock   clock.Clock
	logger  logging.Logger
	metrics metrics.Metrics
}

type completion struct {
	id      uint64
	outcome status.Outcome
	server  string
}

// NewDNSStrategy constructs a DNSStrategy. Call Initialize before issuing
// queries.
func NewDNSStrategy(c clock.Clock, logger logging.Logger, m metrics.Metrics) *DNSStrategy {
	if logger == nil {
		logger = logging.NewNop()
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &DNSStrategy{
		clock:   c,
		logger:  logger,
		metrics: m,
		health:  newHealthTable(c),
		results: make(chan completion, processEventsBatch),
		pending: make(map[uint64]Callback),
	}
}

var _ Strategy = (*DNSStrategy)(nil)

// Initialize (re)configures the strategy with the servers and address
// family policy from cfg, matching DNSResolver::initialize's server-list
// setup.
func (s *DNSStrategy) Initialize(cfg config.Config) error {
	if len(cfg.Servers) == 0 {
		return errors.New("strategy: no servers configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.servers = cfg.Servers
	s.ipv6 = cfg.IPv6Enabled
	s.errorThreshold = cfg.ServerErrorThreshold
	s.health.reconfigure(cfg.Servers)
	s.shutdownCh = make(chan struct{})
	s.initialized = true
	return nil
}

func (s *DNSStrategy) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Query dispatches an asynchronous lookup for host against the
// highest-scoring healthy server.
func (s *DNSStrategy) Query(host string, cb Callback) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		cb(status.Outcome{Hostname: host, Status: status.NotInitialized})
		return
	}
	server, ok := s.health.selectServer(s.servers)
	if !ok {
		s.mu.Unlock()
		cb(status.Outcome{Hostname: host, Status: status.TransportError, Err: errors.New("no upstream servers configured")})
		return
	}
	id := s.nextID
	s.nextID++
	s.pending[id] = cb
	shutdownCh := s.shutdownCh
	s.mu.Unlock()

	s.wg.Add(1)
	go s.dispatch(id, host, server, shutdownCh)
}

func (s *DNSStrategy) dispatch(id uint64, host string, server config.ServerDescriptor, shutdownCh chan struct{}) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), server.Timeout)
	defer cancel()

	start := s.clock.Now()
	addrs, recordFailed, rstatus, err := s.exchange(ctx, host, server)
	elapsed := s.clock.Since(start)

	if rstatus.ServerAttributable() {
		s.health.recordFailure(server.Address, s.errorThreshold)
	} else if rstatus == status.Success {
		s.health.recordSuccess(server.Address, elapsed)
	}
	s.metrics.RecordServerLatency(server.Address, elapsed)
	_ = recordFailed

	outcome := status.Outcome{
		Hostname:  host,
		Status:    rstatus,
		Addresses: addrs,
		Elapsed:   elapsed,
		Err:       err,
	}

	select {
	case s.results <- completion{id: id, outcome: outcome, server: server.Address}:
	case <-shutdownCh:
	}
}

// exchange performs the actual wire exchange(s) against server, returning
// the merged address list and a status code. When ipv6 is enabled, an A
// and an AAAA query are both issued and their answers merged, mirroring
// the original's dual-family lookup.
func (s *DNSStrategy) exchange(ctx context.Context, host string, server config.ServerDescriptor) ([]string, bool, status.Status, error) {
	client := &dns.Client{Net: "udp", Timeout: server.Timeout}
	target := net.JoinHostPort(server.Address, strconv.Itoa(int(server.Port)))

	types := []uint16{dns.TypeA}
	if s.ipv6 {
		types = append(types, dns.TypeAAAA)
	}

	var addrs []string
	var lastStatus status.Status = status.NoData
	for _, qtype := range types {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(host), qtype)
		msg.RecursionDesired = true

		resp, _, err := client.ExchangeContext(ctx, msg, target)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, true, status.Timeout, err
			}
			return nil, true, status.TransportError, err
		}

		switch resp.Rcode {
		case dns.RcodeNameError:
			return nil, false, status.NotFound, nil
		case dns.RcodeSuccess:
			// fall through to record collection
		default:
			return nil, true, status.ServerFail, errors.New(dns.RcodeToString[resp.Rcode])
		}

		for _, rr := range resp.Answer {
			switch rec := rr.(type) {
			case *dns.A:
				addrs = append(addrs, rec.A.String())
			case *dns.AAAA:
				addrs = append(addrs, rec.AAAA.String())
			}
		}
		lastStatus = status.Success
	}

	if len(addrs) == 0 {
		return nil, false, status.NoData, nil
	}
	return addrs, false, lastStatus, nil
}

// ProcessEvents fires callbacks for up to processEventsBatch completed
// queries, so a single call from the driver loop never blocks it for
// longer than one bounded batch.
func (s *DNSStrategy) ProcessEvents() {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	for i := 0; i < processEventsBatch; i++ {
		select {
		case c := <-s.results:
			s.mu.Lock()
			cb, ok := s.pending[c.id]
			delete(s.pending, c.id)
			s.mu.Unlock()
			if ok {
				cb(c.outcome)
			}
		default:
			return
		}
	}
}

// Shutdown cancels all outstanding queries, delivers status.Cancelled to
// any callback that has not yet fired, and waits for in-flight goroutines
// to observe cancellation. Safe to call multiple times.
func (s *DNSStrategy) Shutdown() {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = false
	close(s.shutdownCh)
	remaining := s.pending
	s.pending = make(map[uint64]Callback)
	s.mu.Unlock()

	s.wg.Wait()

	for _, cb := range remaining {
		cb(status.Outcome{Status: status.Cancelled})
	}

	// Drain anything that landed in the channel between closing shutdownCh
	// and wg.Wait() returning.
	for {
		select {
		case <-s.results:
		default:
			return
		}
	}
}

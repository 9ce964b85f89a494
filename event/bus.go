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

// Package event implements a synchronous fan-out EventBus, grounded
// structurally on original_source/src/EventPublisher.cpp and stylistically
// on the bare sync.Mutex + slice subscriber registry pattern used by
// other_examples/mikesale-dnsres__events.go.
package event

import (
	"sync"
	"time"
)

// AddressChanged is the payload delivered to every address-change
// subscriber when a hostname's resolved address set drifts. Metadata
// carries embedder-defined key/value annotations (e.g. which upstream
// answered, zone information) without the event or resolver packages
// needing to know their meaning.
type AddressChanged struct {
	Hostname        string
	OldAddresses    []string
	NewAddresses    []string
	Timestamp       time.Time
	Source          string
	TTL             time.Duration
	RecordType      string // "A" or "AAAA"
	IsAuthoritative bool
	Metadata        map[string]string
}

// AddressChangeHandler, QueryStartHandler, and QueryCompleteHandler are the
// three subscriber shapes the bus supports.
type (
	AddressChangeHandler  func(AddressChanged)
	QueryStartHandler     func(hostname string)
	QueryCompleteHandler  func(hostname string, addresses []string, success bool)
)

// Bus is a synchronous fan-out event bus with three event kinds, each
// with its own subscriber list, delivery in registration order, and
// isolation of one misbehaving subscriber from the rest.
type Bus struct {
	mu sync.Mutex

	addressChange []AddressChangeHandler
	queryStart    []QueryStartHandler
	queryComplete []QueryCompleteHandler
}

// New creates an empty EventBus.
func New() *Bus {
	return &Bus{}
}

func (b *Bus) SubscribeAddressChange(h AddressChangeHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addressChange = append(b.addressChange, h)
}

func (b *Bus) SubscribeQueryStart(h QueryStartHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queryStart = append(b.queryStart, h)
}

func (b *Bus) SubscribeQueryComplete(h QueryCompleteHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queryComplete = append(b.queryComplete, h)
}

// UnsubscribeAll clears all three subscriber lists.
func (b *Bus) UnsubscribeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addressChange = nil
	b.queryStart = nil
	b.queryComplete = nil
}

// PublishAddressChanged fans the event out to every address-change
// subscriber, in registration order, isolating each from the others' and
// its own panics.
func (b *Bus) PublishAddressChanged(event AddressChanged) {
	b.mu.Lock()
	handlers := make([]AddressChangeHandler, len(b.addressChange))
	copy(handlers, b.addressChange)
	b.mu.Unlock()

	for _, h := range handlers {
		invokeAddressChange(h, event)
	}
}

func (b *Bus) PublishQueryStarted(hostname string) {
	b.mu.Lock()
	handlers := make([]QueryStartHandler, len(b.queryStart))
	copy(handlers, b.queryStart)
	b.mu.Unlock()

	for _, h := range handlers {
		invokeQueryStart(h, hostname)
	}
}

func (b *Bus) PublishQueryCompleted(hostname string, addresses []string, success bool) {
	b.mu.Lock()
	handlers := make([]QueryCompleteHandler, len(b.queryComplete))
	copy(handlers, b.queryComplete)
	b.mu.Unlock()

	for _, h := range handlers {
		invokeQueryComplete(h, hostname, addresses, success)
	}
}

// invokeAddressChange, invokeQueryStart, and invokeQueryComplete each
// recover from a subscriber panic so one misbehaving subscriber cannot
// block delivery to the others.
func invokeAddressChange(h AddressChangeHandler, event AddressChanged) {
	defer func() { _ = recover() }()
	h(event)
}

func invokeQueryStart(h QueryStartHandler, hostname string) {
	defer func() { _ = recover() }()
	h(hostname)
}

func invokeQueryComplete(h QueryCompleteHandler, hostname string, addresses []string, success bool) {
	defer func() { _ = recover() }()
	h(hostname, addresses, success)
}

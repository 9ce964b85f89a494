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

package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowdns/resolver/internal/clocktest"
)

func TestLRUGetMissIncrementsMisses(t *testing.T) {
	c := New(10, time.Minute)
	_, ok := c.Get("nothing.test")
	assert.False(t, ok)
	assert.Equal(t, 0.0, c.HitRate())
}

func TestLRURoundTrip(t *testing.T) {
	c := New(10, time.Minute)
	c.Update("example.com", []string{"1.2.3.4"})

	got, ok := c.Get("example.com")
	require.True(t, ok)
	assert.Equal(t, []string{"1.2.3.4"}, got)
	assert.Equal(t, 1, c.Size())
}

func TestLRUGetReturnsDefensiveCopy(t *testing.T) {
	c := New(10, time.Minute)
	c.Update("example.com", []string{"1.2.3.4"})

	got, ok := c.Get("example.com")
	require.True(t, ok)
	got[0] = "mutated"

	again, ok := c.Get("example.com")
	require.True(t, ok)
	assert.Equal(t, []string{"1.2.3.4"}, again)
}

func TestLRUExpiryIsLazy(t *testing.T) {
	fc := clocktest.New()
	c := NewWithClock(10, time.Minute, fc)
	c.Update("example.com", []string{"1.2.3.4"})

	fc.Advance(2 * time.Minute)

	_, ok := c.Get("example.com")
	assert.False(t, ok, "expired entry must be invisible to readers")
	assert.Equal(t, 0, c.Size(), "lazy expiry removes the entry from the map")
}

func TestLRUEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	c := New(2, time.Minute)
	c.Update("a.test", []string{"1.1.1.1"})
	c.Update("b.test", []string{"2.2.2.2"})

	// Touch a.test so b.test becomes the LRU victim.
	_, _ = c.Get("a.test")

	c.Update("c.test", []string{"3.3.3.3"})

	_, ok := c.Get("b.test")
	assert.False(t, ok, "b.test should have been evicted")

	_, ok = c.Get("a.test")
	assert.True(t, ok)
	_, ok = c.Get("c.test")
	assert.True(t, ok)

	assert.Equal(t, 2, c.Size())
}

func TestLRUUpdateExistingRefreshesWithoutGrowing(t *testing.T) {
	c := New(1, time.Minute)
	c.Update("a.test", []string{"1.1.1.1"})
	c.Update("a.test", []string{"9.9.9.9"})

	got, ok := c.Get("a.test")
	require.True(t, ok)
	assert.Equal(t, []string{"9.9.9.9"}, got)
	assert.Equal(t, 1, c.Size())
}

func TestLRURemoveAndClear(t *testing.T) {
	c := New(10, time.Minute)
	c.Update("a.test", []string{"1.1.1.1"})
	c.Remove("a.test")
	_, ok := c.Get("a.test")
	assert.False(t, ok)

	c.Update("b.test", []string{"2.2.2.2"})
	c.Clear()
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, 0.0, c.HitRate())
}

func TestLRUHitRate(t *testing.T) {
	c := New(10, time.Minute)
	c.Update("a.test", []string{"1.1.1.1"})

	_, _ = c.Get("a.test") // hit
	_, _ = c.Get("a.test") // hit
	_, _ = c.Get("b.test") // miss

	assert.InDelta(t, 2.0/3.0, c.HitRate(), 0.0001)
}

func TestLRUUnboundedWhenMaxSizeNonPositive(t *testing.T) {
	c := New(0, time.Minute)
	for i := 0; i < 50; i++ {
		c.Update(fmt.Sprintf("host-%d.test", i), []string{"1.1.1.1"})
	}
	assert.Equal(t, 50, c.Size())
}

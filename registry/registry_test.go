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

package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowdns/resolver/cache"
)

func TestRegistryConstructsRegisteredCache(t *testing.T) {
	r := New(nil)
	r.RegisterCache("lru", func() cache.Cache { return cache.New(10, time.Minute) })

	got, ok := r.NewCache("lru")
	require.True(t, ok)
	require.NotNil(t, got)
	assert.True(t, r.HasCache("lru"))
}

func TestRegistryMissingNameReturnsFalse(t *testing.T) {
	r := New(nil)
	_, ok := r.NewCache("does-not-exist")
	assert.False(t, ok)
	assert.False(t, r.HasCache("does-not-exist"))
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	r := New(nil)
	r.RegisterCache("lru", func() cache.Cache { return cache.New(1, time.Minute) })
	r.RegisterCache("lru", func() cache.Cache { return cache.New(99, time.Minute) })

	got, ok := r.NewCache("lru")
	require.True(t, ok)
	// Only the second factory's cache (max size 99) can hold two entries.
	got.Update("a.test", []string{"1.1.1.1"})
	got.Update("b.test", []string{"2.2.2.2"})
	assert.Equal(t, 2, got.Size())
}

func TestRegistryPluginConfigStoredNotActioned(t *testing.T) {
	r := New(nil)
	cfg := PluginConfig{
		AutoLoad:       true,
		ConfigPath:     "/etc/arrowdns/plugins.yaml",
		AllowedNames:   []string{"geoip"},
		ReloadInterval: 30 * time.Second,
	}
	r.SetPluginConfig(cfg)
	assert.Equal(t, cfg, r.PluginConfig())
}

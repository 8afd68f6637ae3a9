//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Session-scoped key/value storage backed by an in-memory
// cache. Entries expire so an abandoned login does not linger.
//

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL bounds how long a pending login survives between the redirect
// and the callback.
const DefaultTTL = 10 * time.Minute

// Memory is an expiring in-process key/value store.
type Memory struct {
	cache *cache.Cache[any]
	ttl   time.Duration
}

// NewMemory creates a Memory store whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client := gocache.New(ttl, 2*ttl)
	return &Memory{
		cache: cache.New[any](gocache_store.NewGoCache(client)),
		ttl:   ttl,
	}
}

// Get returns the value for key and whether it was present.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := m.cache.Get(ctx, key)
	if err != nil {
		// The go-cache store only fails Get for missing or expired keys.
		return "", false, nil
	}

	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("unexpected value type %T for key %s", v, key)
	}
	return s, true, nil
}

// Set stores value under key.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	return m.cache.Set(ctx, key, value, store.WithExpiration(m.ttl))
}

// Delete removes key. Missing keys are not an error.
func (m *Memory) Delete(ctx context.Context, key string) error {
	return m.cache.Delete(ctx, key)
}

// Clear removes every key.
func (m *Memory) Clear(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

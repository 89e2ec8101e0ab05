// Package lbcache is the time-boxed memo in front of leaderboard reads.
// Values are opaque bytes scoped by track; a write to a track invalidates
// every key of that track.
package lbcache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL bounds how stale a cached leaderboard read can be.
const DefaultTTL = 5 * time.Minute

// Cache is implemented by the in-process Memory backend and the shared Redis backend.
//
// Get reports the track's current generation alongside the value. A caller
// that misses reads the store and passes that generation to Set; a fill whose
// generation has since been invalidated never becomes visible.
type Cache interface {
	Get(ctx context.Context, track, key string) (val []byte, gen int64, ok bool, err error)
	Set(ctx context.Context, track, key string, gen int64, val []byte) error
	InvalidateTrack(ctx context.Context, track string) error
}

type memItem struct {
	val     []byte
	expires time.Time
}

// Memory is a per-process TTL cache.
type Memory struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tracks map[string]map[string]memItem
	gens   map[string]int64
}

// NewMemory returns a Memory cache. ttl <= 0 uses DefaultTTL; now == nil uses time.Now.
func NewMemory(ttl time.Duration, now func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Memory{
		ttl:    ttl,
		now:    now,
		tracks: make(map[string]map[string]memItem),
		gens:   make(map[string]int64),
	}
}

func (m *Memory) Get(_ context.Context, track, key string) ([]byte, int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen := m.gens[track]
	items := m.tracks[track]
	it, ok := items[key]
	if !ok {
		return nil, gen, false, nil
	}
	if !m.now().Before(it.expires) {
		delete(items, key)
		return nil, gen, false, nil
	}
	return it.val, gen, true, nil
}

// Set stores val unless the track was invalidated after gen was read.
func (m *Memory) Set(_ context.Context, track, key string, gen int64, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[track] != gen {
		return nil
	}
	items := m.tracks[track]
	if items == nil {
		items = make(map[string]memItem)
		m.tracks[track] = items
	}
	items[key] = memItem{val: val, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) InvalidateTrack(_ context.Context, track string) error {
	m.mu.Lock()
	delete(m.tracks, track)
	m.gens[track]++
	m.mu.Unlock()
	return nil
}

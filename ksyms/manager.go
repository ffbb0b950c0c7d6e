package ksyms

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"

	"github.com/klogd/ksymmod/modquery"
)

// Manager owns the live symbol table. Build constructs a new snapshot
// off to the side and publishes it with a single pointer swap, so
// concurrent Resolve calls either see the previous complete table or
// the new one, never a partial build. Build and Teardown are serialized
// by an exclusive mutex.
type Manager struct {
	mu    sync.Mutex
	table atomic.Pointer[Table]
	cache *freelru.SyncedLRU[uint64, cachedResolution]
}

// cachedResolution also remembers misses; oops dumps tend to repeat the
// same handful of addresses.
type cachedResolution struct {
	res Resolution
	ok  bool
}

func hashAddr(addr uint64) uint32 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], addr)
	return uint32(xxhash.Sum64(b[:]))
}

// NewManager returns an empty Manager. cacheSize bounds the resolution
// cache; zero disables caching.
func NewManager(cacheSize uint32) (*Manager, error) {
	m := &Manager{}
	if cacheSize > 0 {
		cache, err := freelru.NewSynced[uint64, cachedResolution](cacheSize, hashAddr)
		if err != nil {
			return nil, err
		}
		m.cache = cache
	}
	return m, nil
}

// Build replaces the live table with a fresh snapshot of the loaded
// module set. On failure the live table is dropped: a failed rebuild
// leaves no symbol resolution available rather than stale data.
func (m *Manager) Build(q modquery.Querier) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buildsTotal.Inc()
	table, stats, err := Build(q)
	if err != nil {
		buildFailuresTotal.Inc()
		table = nil
	}
	m.publish(table, stats)
	return stats, err
}

// Teardown drops the live table and empties the cache. Subsequent
// Resolve calls report not-found until the next successful Build.
func (m *Manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publish(nil, Stats{})
}

func (m *Manager) publish(table *Table, stats Stats) {
	m.table.Store(table)
	if m.cache != nil {
		m.cache.Purge()
	}
	modulesLoaded.Set(float64(stats.Modules))
	symbolsLoaded.Set(float64(stats.Symbols))
}

// Resolve looks up addr in the live table. An empty manager resolves
// nothing; "no data" and "no match" are the same outcome to the caller.
func (m *Manager) Resolve(addr uint64) (Resolution, bool) {
	table := m.table.Load()
	if table == nil {
		resolveMisses.Inc()
		return Resolution{}, false
	}
	if m.cache != nil {
		if hit, found := m.cache.Get(addr); found {
			countResolution(hit.ok)
			return hit.res, hit.ok
		}
	}
	res, ok := table.Resolve(addr)
	if m.cache != nil {
		m.cache.Add(addr, cachedResolution{res: res, ok: ok})
	}
	countResolution(ok)
	return res, ok
}

func countResolution(ok bool) {
	if ok {
		resolveHits.Inc()
	} else {
		resolveMisses.Inc()
	}
}

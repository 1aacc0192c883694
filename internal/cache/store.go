// Package cache is an in-memory query cache keyed by query identity,
// built for optimistic mutation: callers snapshot affected entries,
// rewrite them with a predicted state, and either reconcile with the
// server's answer or restore the snapshot. Registered fetchers let the
// store refresh entries in the background so stale optimistic state
// cannot persist indefinitely.
package cache

import (
	"context"
	"strings"
	"sync"
)

// Key identifies one cached query, e.g. "community/posts?category=all".
type Key string

// Fetcher loads the authoritative value for a key.
type Fetcher func(ctx context.Context) (any, error)

// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	entries  map[Key]any
	fetchers map[Key]Fetcher
	subs     map[int]func(Key)
	nextSub  int

	// refreshes tracks in-flight background refetches so tests and
	// shutdown paths can wait for them.
	refreshes sync.WaitGroup
}

func New() *Store {
	return &Store{
		entries:  make(map[Key]any),
		fetchers: make(map[Key]Fetcher),
		subs:     make(map[int]func(Key)),
	}
}

// Get returns the cached value for key, if present.
func (s *Store) Get(key Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.entries[key]
	return val, ok
}

// Set stores a value and notifies subscribers.
func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	s.entries[key] = value
	subs := make([]func(Key), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
}

// Delete removes a cached entry without notification.
func (s *Store) Delete(key Key) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Keys returns every cached key with the given prefix.
func (s *Store) Keys(prefix string) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []Key
	for key := range s.entries {
		if strings.HasPrefix(string(key), prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Register binds a fetcher used by Invalidate to refresh key.
func (s *Store) Register(key Key, fetch Fetcher) {
	s.mu.Lock()
	s.fetchers[key] = fetch
	s.mu.Unlock()
}

// Subscribe registers a notification callback for every Set. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Key)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot captures the exact state of the given keys, including absence.
type Snapshot struct {
	store  *Store
	values map[Key]snapshotEntry
}

type snapshotEntry struct {
	value   any
	present bool
}

// Snapshot captures the current values of keys for a later Restore.
func (s *Store) Snapshot(keys ...Key) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &Snapshot{store: s, values: make(map[Key]snapshotEntry, len(keys))}
	for _, key := range keys {
		val, ok := s.entries[key]
		snap.values[key] = snapshotEntry{value: val, present: ok}
	}
	return snap
}

// Restore puts every snapshotted key back to its captured state, removing
// entries that did not exist at snapshot time.
func (snap *Snapshot) Restore() {
	for key, entry := range snap.values {
		if entry.present {
			snap.store.Set(key, entry.value)
		} else {
			snap.store.Delete(key)
		}
	}
}

// Invalidate schedules a background refetch of each key that has a
// registered fetcher. Fetch failures leave the current entry in place;
// a background refresh degrading to stale data is preferable to
// blocking the caller.
func (s *Store) Invalidate(ctx context.Context, keys ...Key) {
	for _, key := range keys {
		s.mu.Lock()
		fetch, ok := s.fetchers[key]
		s.mu.Unlock()
		if !ok {
			continue
		}

		s.refreshes.Add(1)
		go func(key Key, fetch Fetcher) {
			defer s.refreshes.Done()
			if val, err := fetch(ctx); err == nil {
				s.Set(key, val)
			}
		}(key, fetch)
	}
}

// Wait blocks until all scheduled refreshes finish.
func (s *Store) Wait() {
	s.refreshes.Wait()
}

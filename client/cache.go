package client

import (
	"context"
	"log"
	"sync"
	"time"
)

// FetchFunc loads a roster snapshot for a scope from the backend
type FetchFunc func(ctx context.Context, scope Scope) ([]RosterMember, error)

// RosterCache is a small query cache: one roster snapshot per scope.
// Consumers read snapshots and request invalidation; they never mutate a
// snapshot in place. Invalidate refetches in the background so the stale
// snapshot stays visible until fresh data lands.
type RosterCache struct {
	fetch        FetchFunc
	fetchTimeout time.Duration
	log          *log.Logger

	mu      sync.RWMutex
	entries map[Scope][]RosterMember
}

// NewRosterCache creates a cache that loads snapshots through fetch
func NewRosterCache(fetch FetchFunc, logger *log.Logger) *RosterCache {
	if logger == nil {
		logger = log.Default()
	}
	return &RosterCache{
		fetch:        fetch,
		fetchTimeout: 10 * time.Second,
		log:          logger,
		entries:      make(map[Scope][]RosterMember),
	}
}

// Load fetches the roster for a scope synchronously and caches it. Hosts
// call this once when the roster view opens.
func (c *RosterCache) Load(ctx context.Context, scope Scope) ([]RosterMember, error) {
	members, err := c.fetch(ctx, scope)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[scope] = members
	c.mu.Unlock()
	return members, nil
}

// Snapshot returns the cached roster for a scope. ok is false before the
// initial Load completes.
func (c *RosterCache) Snapshot(scope Scope) (members []RosterMember, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	members, ok = c.entries[scope]
	return members, ok
}

// Ready reports whether the scope's initial load has completed
func (c *RosterCache) Ready(scope Scope) bool {
	_, ok := c.Snapshot(scope)
	return ok
}

// Invalidate schedules a background refetch of the scope. On fetch failure
// the previous snapshot is kept; the next invalidation tries again.
func (c *RosterCache) Invalidate(scope Scope) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
		defer cancel()

		if _, err := c.Load(ctx, scope); err != nil {
			c.log.Printf("⚠️ Roster refetch failed for %s: %v", scope.Team, err)
		}
	}()
}

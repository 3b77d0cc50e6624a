package client

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedFetch struct {
	mu      sync.Mutex
	results [][]RosterMember
	errs    []error
	calls   int
	fetched chan struct{}
}

func newScriptedFetch() *scriptedFetch {
	return &scriptedFetch{fetched: make(chan struct{}, 16)}
}

func (f *scriptedFetch) push(members []RosterMember, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, members)
	f.errs = append(f.errs, err)
}

func (f *scriptedFetch) fetch(_ context.Context, _ Scope) ([]RosterMember, error) {
	f.mu.Lock()
	idx := f.calls
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	members, err := f.results[idx], f.errs[idx]
	f.calls++
	f.mu.Unlock()

	f.fetched <- struct{}{}
	return members, err
}

func (f *scriptedFetch) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitForFetch(t *testing.T, f *scriptedFetch) {
	t.Helper()
	select {
	case <-f.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
	}
}

func TestRosterCache_loadCachesSnapshot(t *testing.T) {
	scope := Scope{Team: "t1", UserID: "u1"}
	members := []RosterMember{{Name: "Faker", IsOnline: true}}

	fetch := newScriptedFetch()
	fetch.push(members, nil)
	cache := NewRosterCache(fetch.fetch, nil)

	assert.False(t, cache.Ready(scope), "cache must not be ready before Load")
	_, ok := cache.Snapshot(scope)
	assert.False(t, ok)

	got, err := cache.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, members, got)

	snap, ok := cache.Snapshot(scope)
	require.True(t, ok)
	assert.Equal(t, members, snap)
	assert.True(t, cache.Ready(scope))
}

func TestRosterCache_loadErrorLeavesCacheEmpty(t *testing.T) {
	scope := Scope{Team: "t1"}

	fetch := newScriptedFetch()
	fetch.push(nil, errors.New("backend down"))
	cache := NewRosterCache(fetch.fetch, nil)

	_, err := cache.Load(context.Background(), scope)
	require.Error(t, err)
	assert.False(t, cache.Ready(scope))
}

func TestRosterCache_invalidateRefetchesInBackground(t *testing.T) {
	scope := Scope{Team: "t1", UserID: "u1"}
	stale := []RosterMember{{Name: "Faker", IsOnline: false}}
	fresh := []RosterMember{{Name: "Faker", IsOnline: true}}

	fetch := newScriptedFetch()
	fetch.push(stale, nil)
	fetch.push(fresh, nil)
	cache := NewRosterCache(fetch.fetch, nil)

	_, err := cache.Load(context.Background(), scope)
	require.NoError(t, err)
	waitForFetch(t, fetch)

	cache.Invalidate(scope)
	waitForFetch(t, fetch)

	require.Eventually(t, func() bool {
		snap, ok := cache.Snapshot(scope)
		return ok && len(snap) == 1 && snap[0].IsOnline
	}, 2*time.Second, 10*time.Millisecond, "snapshot must be replaced by the refetch")
	assert.Equal(t, 2, fetch.callCount())
}

func TestRosterCache_failedRefetchKeepsOldSnapshot(t *testing.T) {
	scope := Scope{Team: "t1"}
	stale := []RosterMember{{Name: "Chovy"}}

	fetch := newScriptedFetch()
	fetch.push(stale, nil)
	fetch.push(nil, errors.New("backend down"))
	cache := NewRosterCache(fetch.fetch, log.New(io.Discard, "", 0))

	_, err := cache.Load(context.Background(), scope)
	require.NoError(t, err)
	waitForFetch(t, fetch)

	cache.Invalidate(scope)
	waitForFetch(t, fetch)

	snap, ok := cache.Snapshot(scope)
	require.True(t, ok)
	assert.Equal(t, stale, snap, "failed refetch must keep the stale snapshot visible")
}

func TestRosterCache_scopesAreIndependent(t *testing.T) {
	t1 := Scope{Team: "t1"}
	geng := Scope{Team: "gen"}

	cache := NewRosterCache(func(_ context.Context, scope Scope) ([]RosterMember, error) {
		return []RosterMember{{Name: scope.Team}}, nil
	}, nil)

	_, err := cache.Load(context.Background(), t1)
	require.NoError(t, err)

	assert.True(t, cache.Ready(t1))
	assert.False(t, cache.Ready(geng), "loading one scope must not mark another ready")

	_, err = cache.Load(context.Background(), geng)
	require.NoError(t, err)

	snap, _ := cache.Snapshot(t1)
	assert.Equal(t, "t1", snap[0].Name)
	snap, _ = cache.Snapshot(geng)
	assert.Equal(t, "gen", snap[0].Name)
}

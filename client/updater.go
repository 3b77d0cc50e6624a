package client

import (
	"errors"
	"log"
	"sync"
	"time"
)

// DefaultQuietWindow is how long the updater waits after the last qualifying
// event before refreshing the roster. Realtime backends emit bursts; one
// refresh per burst is enough.
const DefaultQuietWindow = 3 * time.Second

// ErrRosterLoading is returned when Start is called before the scope's
// initial roster load has completed
var ErrRosterLoading = errors.New("roster still loading")

// RosterSource is the query-cache view the updater needs
type RosterSource interface {
	Snapshot(scope Scope) ([]RosterMember, bool)
	Invalidate(scope Scope)
}

// UpdaterConfig wires a RosterLiveUpdater's collaborators
type UpdaterConfig struct {
	Scope       Scope
	Roster      RosterSource
	Notify      Notifier
	QuietWindow time.Duration // defaults to DefaultQuietWindow
	Logger      *log.Logger
}

// RosterLiveUpdater keeps a displayed roster's online indicators eventually
// consistent with the change feed. Events for players not on the roster are
// dropped; qualifying events arm a single-slot debounce timer, and only the
// timer armed by the last event survives a burst. On expiry the roster query
// is invalidated once and the viewer gets one toast.
type RosterLiveUpdater struct {
	scope  Scope
	roster RosterSource
	notify Notifier
	quiet  time.Duration
	log    *log.Logger

	mu      sync.Mutex
	sub     Subscription
	pending *time.Timer
	closed  bool
}

// NewRosterLiveUpdater creates an updater for one roster view
func NewRosterLiveUpdater(cfg UpdaterConfig) *RosterLiveUpdater {
	quiet := cfg.QuietWindow
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &RosterLiveUpdater{
		scope:  cfg.Scope,
		roster: cfg.Roster,
		notify: cfg.Notify,
		quiet:  quiet,
		log:    logger,
	}
}

// Start opens the feed subscription. It refuses to start before the initial
// roster load has completed, so events are never classified against an
// absent snapshot.
func (u *RosterLiveUpdater) Start(feed Feed) error {
	if _, ok := u.roster.Snapshot(u.scope); !ok {
		return ErrRosterLoading
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errors.New("updater closed")
	}
	if u.sub != nil {
		return errors.New("updater already started")
	}

	sub, err := feed.Subscribe(u.HandleEvent)
	if err != nil {
		return err
	}
	u.sub = sub
	return nil
}

// HandleEvent classifies one change event against the current snapshot and
// arms the debounce timer when the event is worth surfacing. The snapshot is
// read fresh on every call, never captured at subscription time.
func (u *RosterLiveUpdater) HandleEvent(ev ChangeEvent) {
	members, ok := u.roster.Snapshot(u.scope)
	if !ok {
		return
	}

	var member *RosterMember
	for i := range members {
		if members[i].ID == ev.PlayerID {
			member = &members[i]
			break
		}
	}
	if member == nil {
		// Not a player on this roster
		return
	}

	if !worthSurfacing(member, ev) {
		return
	}
	u.scheduleRefresh()
}

// worthSurfacing decides whether an event represents a meaningful
// transition for the displayed entry:
//   - a different account for this player just came online, or
//   - the displayed account's online flag actually flipped.
func worthSurfacing(member *RosterMember, ev ChangeEvent) bool {
	if member.AccountID != ev.RecordID {
		return ev.IsOnline
	}
	return ev.IsOnline != member.IsOnline
}

// scheduleRefresh arms the single-slot debounce timer, replacing any timer
// armed by an earlier event
func (u *RosterLiveUpdater) scheduleRefresh() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	if u.pending != nil {
		u.pending.Stop()
	}
	u.pending = time.AfterFunc(u.quiet, u.refresh)
}

// refresh fires when the quiet window elapses with no further qualifying
// events
func (u *RosterLiveUpdater) refresh() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.pending = nil
	u.mu.Unlock()

	u.roster.Invalidate(u.scope)
	if u.notify != nil {
		u.notify.Notify("🎉 Roster updated 🎉")
	}
}

// Close tears the updater down: the subscription is closed and any pending
// refresh is cancelled so no invalidation fires after teardown. Safe to call
// more than once.
func (u *RosterLiveUpdater) Close() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil
	}
	u.closed = true
	if u.pending != nil {
		u.pending.Stop()
		u.pending = nil
	}
	sub := u.sub
	u.sub = nil
	u.mu.Unlock()

	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			// Best effort; a failed teardown never takes the page down
			u.log.Printf("⚠️ Failed to unsubscribe from feed: %v", err)
		}
	}
	return nil
}

package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uuid.UUID, buffer int) *Client {
	return &Client{
		hub:    hub,
		send:   make(chan []byte, buffer),
		UserID: userID,
	}
}

func statusEvent(online bool) *model.WSEvent {
	return &model.WSEvent{
		Type: model.WSEventAccountStatus,
		Payload: model.AccountStatusEvent{
			RecordID: uuid.New(),
			PlayerID: uuid.New(),
			IsOnline: online,
			At:       time.Now(),
		},
	}
}

func TestBroadcastToLocal_deliversToAllViewers(t *testing.T) {
	hub := NewHub(nil)
	anon := newTestClient(hub, uuid.Nil, 4)
	viewer := newTestClient(hub, uuid.New(), 4)
	hub.addClient(anon)
	hub.addClient(viewer)

	hub.broadcastToLocal(statusEvent(true))

	require.Len(t, anon.send, 1, "anonymous viewers receive broadcasts too")
	require.Len(t, viewer.send, 1)
	assert.Contains(t, string(<-viewer.send), model.WSEventAccountStatus)
}

func TestBroadcastToLocal_evictsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := newTestClient(hub, uuid.New(), 1)
	hub.addClient(slow)

	hub.broadcastToLocal(statusEvent(true))
	require.Equal(t, 1, hub.ViewerCount())

	// Buffer is full now; the next broadcast drops the client
	hub.broadcastToLocal(statusEvent(false))
	assert.Equal(t, 0, hub.ViewerCount())

	// The send channel was closed as part of eviction
	<-slow.send
	_, open := <-slow.send
	assert.False(t, open, "evicted client's send channel must be closed")
}

func TestSendToLocalUser_targetsOnlyThatUser(t *testing.T) {
	hub := NewHub(nil)
	alice := uuid.New()
	target := newTestClient(hub, alice, 4)
	other := newTestClient(hub, uuid.New(), 4)
	hub.addClient(target)
	hub.addClient(other)

	hub.sendToLocalUser(alice, &model.WSEvent{
		Type:    model.WSEventSubscribed,
		Payload: model.SubscriptionEvent{UserID: alice, PlayerID: uuid.New()},
	})

	assert.Len(t, target.send, 1)
	assert.Empty(t, other.send, "targeted events must not reach other viewers")
}

// Broadcasts evict clients from the same map ViewerCount iterates; run both
// concurrently so the race detector catches any locking regression.
func TestHub_concurrentBroadcastAndViewerCount(t *testing.T) {
	hub := NewHub(nil)
	for i := 0; i < 8; i++ {
		hub.addClient(newTestClient(hub, uuid.New(), 1))
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hub.broadcastToLocal(statusEvent(i%2 == 0))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hub.ViewerCount()
		}
	}()
	wg.Wait()

	assert.Equal(t, 0, hub.ViewerCount(), "all one-slot clients end up evicted")
}

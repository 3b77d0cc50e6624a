package client

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFeedServer runs a websocket endpoint that writes whatever frames the
// test pushes into the returned channel
func newFeedServer(t *testing.T) (*httptest.Server, chan []byte) {
	t.Helper()
	frames := make(chan []byte, 8)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		for frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}))
	t.Cleanup(func() {
		close(frames)
		srv.Close()
	})
	return srv, frames
}

func dialTestFeed(t *testing.T, srv *httptest.Server) *WSFeed {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed, err := DialFeed(context.Background(), url, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { feed.Close() })
	return feed
}

func collectEvent(t *testing.T, events chan ChangeEvent) ChangeEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a change event")
		return ChangeEvent{}
	}
}

func TestWSFeed_decodesNewlineBatchedFrame(t *testing.T) {
	srv, frames := newFeedServer(t)
	feed := dialTestFeed(t, srv)

	events := make(chan ChangeEvent, 8)
	_, err := feed.Subscribe(func(ev ChangeEvent) { events <- ev })
	require.NoError(t, err)

	// One frame carrying a write-pump batch: two status events, one event of
	// another type, and one line that is not JSON at all
	frames <- []byte(strings.Join([]string{
		`{"type":"account_status","payload":{"record_id":"a1","player_id":"p1","is_online":true}}`,
		`{"type":"subscribed","payload":{"user_id":"u1","player_id":"p1"}}`,
		`{broken`,
		`{"type":"account_status","payload":{"record_id":"a2","player_id":"p2","is_online":false}}`,
	}, "\n"))

	first := collectEvent(t, events)
	assert.Equal(t, ChangeEvent{RecordID: "a1", PlayerID: "p1", IsOnline: true}, first)

	second := collectEvent(t, events)
	assert.Equal(t, ChangeEvent{RecordID: "a2", PlayerID: "p2", IsOnline: false}, second)

	// The subscribed event and the malformed line produced nothing
	select {
	case ev := <-events:
		t.Fatalf("unexpected extra event: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWSFeed_unsubscribeStopsDelivery(t *testing.T) {
	srv, frames := newFeedServer(t)
	feed := dialTestFeed(t, srv)

	events := make(chan ChangeEvent, 8)
	sub, err := feed.Subscribe(func(ev ChangeEvent) { events <- ev })
	require.NoError(t, err)

	frames <- []byte(`{"type":"account_status","payload":{"record_id":"a1","player_id":"p1","is_online":true}}`)
	collectEvent(t, events)

	require.NoError(t, sub.Unsubscribe())
	frames <- []byte(`{"type":"account_status","payload":{"record_id":"a1","player_id":"p1","is_online":false}}`)

	select {
	case ev := <-events:
		t.Fatalf("event delivered after unsubscribe: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWSFeed_subscribeAfterCloseFails(t *testing.T) {
	srv, _ := newFeedServer(t)
	feed := dialTestFeed(t, srv)

	require.NoError(t, feed.Close())
	_, err := feed.Subscribe(func(ChangeEvent) {})
	assert.Error(t, err)

	assert.NoError(t, feed.Close(), "double close must be safe")
}

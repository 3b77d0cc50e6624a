package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// accountStatusType matches the server's change-feed event type
const accountStatusType = "account_status"

// wsEnvelope is the wire shape of a feed frame
type wsEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WSFeed subscribes to the server's websocket change feed and fans incoming
// account-status events out to local subscribers. Reconnection is the host's
// concern; when the connection drops the feed closes and subscribers stop
// receiving events.
type WSFeed struct {
	conn *websocket.Conn
	log  *log.Logger

	mu     sync.Mutex
	subs   map[int]func(ChangeEvent)
	nextID int
	closed bool
}

// DialFeed connects to the feed endpoint, e.g. "ws://host/ws?token=<jwt>"
func DialFeed(ctx context.Context, url string, logger *log.Logger) (*WSFeed, error) {
	if logger == nil {
		logger = log.Default()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing change feed: %w", err)
	}

	f := &WSFeed{
		conn: conn,
		log:  logger,
		subs: make(map[int]func(ChangeEvent)),
	}
	go f.readLoop()
	return f, nil
}

// Subscribe registers a callback for incoming change events
func (f *WSFeed) Subscribe(onEvent func(ChangeEvent)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, fmt.Errorf("change feed closed")
	}

	id := f.nextID
	f.nextID++
	f.subs[id] = onEvent
	return &feedSubscription{feed: f, id: id}, nil
}

// Close shuts the feed connection down
func (f *WSFeed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()
	return f.conn.Close()
}

func (f *WSFeed) readLoop() {
	defer f.Close()

	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.log.Printf("⚠️ Change feed read error: %v", err)
			}
			return
		}

		// The server batches queued events into one frame, newline separated
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(line) == 0 {
				continue
			}

			var envelope wsEnvelope
			if err := json.Unmarshal(line, &envelope); err != nil {
				f.log.Printf("⚠️ Malformed feed frame: %v", err)
				continue
			}
			if envelope.Type != accountStatusType {
				continue
			}

			var ev ChangeEvent
			if err := json.Unmarshal(envelope.Payload, &ev); err != nil {
				f.log.Printf("⚠️ Malformed status event: %v", err)
				continue
			}
			f.dispatch(ev)
		}
	}
}

func (f *WSFeed) dispatch(ev ChangeEvent) {
	f.mu.Lock()
	callbacks := make([]func(ChangeEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		callbacks = append(callbacks, fn)
	}
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(ev)
	}
}

type feedSubscription struct {
	feed *WSFeed
	id   int
}

func (s *feedSubscription) Unsubscribe() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	delete(s.feed.subs, s.id)
	return nil
}

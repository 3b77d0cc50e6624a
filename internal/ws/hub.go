package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "teamlive:events"

// Hub manages the realtime change feed: every connected viewer receives
// account status events as game accounts flip online state.
// It uses Redis Pub/Sub for horizontal scaling across multiple instances.
type Hub struct {
	// Map of userID -> set of client connections. Anonymous viewers are
	// keyed under uuid.Nil; they still receive broadcast events.
	clients map[uuid.UUID]map[*Client]bool
	mu      sync.RWMutex

	// Channels for registering/unregistering clients
	register   chan *Client
	unregister chan *Client

	// Redis client for Pub/Sub (horizontal scaling)
	rdb *redis.Client
}

// NewHub creates a new feed Hub
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
	}
}

// Run starts the Hub's main event loop
func (h *Hub) Run(ctx context.Context) {
	// Start Redis subscriber in a goroutine
	go h.subscribeRedis(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register queues a client for registration with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// addClient registers a new client connection
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	log.Printf("✅ Feed client connected: %s (connections for viewer: %d)", client.UserID, len(h.clients[client.UserID]))
}

// removeClient unregisters a client connection
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.UserID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, client.UserID)
			}
		}
	}
	log.Printf("❌ Feed client disconnected: %s", client.UserID)
}

// BroadcastStatusChange publishes an account status event to every viewer on
// every instance
func (h *Hub) BroadcastStatusChange(ev model.AccountStatusEvent) {
	h.publishToRedis(&TargetedEvent{
		Event: &model.WSEvent{
			Type:    model.WSEventAccountStatus,
			Payload: ev,
		},
	})
}

// SendToUser sends an event to a specific user (all their connections)
func (h *Hub) SendToUser(userID uuid.UUID, event *model.WSEvent) {
	// Publish to Redis so all instances can deliver
	h.publishToRedis(&TargetedEvent{
		TargetUserID: userID,
		Event:        event,
	})
}

// sendToLocalUser sends an event to a user on this instance only.
// Takes the write lock: a slow client is evicted from the map inline.
func (h *Hub) sendToLocalUser(userID uuid.UUID, event *model.WSEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[userID]; ok {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("Error marshaling event: %v", err)
			return
		}
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Client's send buffer is full, close connection
				close(client.send)
				delete(clients, client)
			}
		}
	}
}

// broadcastToLocal sends an event to all connected local clients.
// Takes the write lock: slow clients are evicted from the map inline.
func (h *Hub) broadcastToLocal(event *model.WSEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling broadcast event: %v", err)
		return
	}

	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(clients, client)
			}
		}
	}
}

// ViewerCount returns the number of active feed connections on this instance
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// ========== Redis Pub/Sub for Horizontal Scaling ==========

// TargetedEvent wraps an event with an optional target user ID for Redis Pub/Sub
type TargetedEvent struct {
	TargetUserID uuid.UUID      `json:"target_user_id,omitempty"`
	Event        *model.WSEvent `json:"event"`
}

// publishToRedis publishes an event to Redis for cross-instance communication
func (h *Hub) publishToRedis(data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling for Redis: %v", err)
		return
	}

	if err := h.rdb.Publish(context.Background(), redisChannel, jsonData).Err(); err != nil {
		log.Printf("Error publishing to Redis: %v", err)
	}
}

// subscribeRedis subscribes to Redis and delivers events to local clients
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Println("📡 Redis Pub/Sub subscriber started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			var targeted TargetedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &targeted); err != nil {
				log.Printf("Error unmarshaling Redis message: %v", err)
				continue
			}

			if targeted.TargetUserID != uuid.Nil {
				// Targeted event - send to specific user
				h.sendToLocalUser(targeted.TargetUserID, targeted.Event)
			} else if targeted.Event != nil {
				// Broadcast event - send to all local clients
				h.broadcastToLocal(targeted.Event)
			}
		}
	}
}

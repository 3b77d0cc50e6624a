// Package client implements the browser-side controllers of TeamLive:
// push-token registration against the backend and the debounced live-update
// listener that keeps a displayed roster in sync with the change feed.
// It is rendering-agnostic; a UI host composes these into its page lifecycle.
package client

import "context"

// Session is the authenticated viewer's state, owned by an external auth
// collaborator. Both controllers only read it.
type Session struct {
	LoggedIn bool
	UserID   string
}

// PermissionState mirrors the platform notification-permission states
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionDefault PermissionState = "default"
)

// Permissions is the platform notification-permission API
type Permissions interface {
	// Current returns the permission state without prompting
	Current() PermissionState
	// Request prompts the user. It suspends until the user responds.
	Request(ctx context.Context) (PermissionState, error)
}

// TokenSource issues push delivery tokens for this device
type TokenSource interface {
	DeliveryToken(ctx context.Context, vapidKey string) (string, error)
}

// DeviceRegistry is the backend upsert for (user, token, deviceType)
type DeviceRegistry interface {
	UpsertToken(ctx context.Context, userID, token, deviceType string) error
}

// TokenStore is a durable device-local cache. It survives restarts but is
// never shared across devices.
type TokenStore interface {
	Get(key string) string
	Set(key, value string) error
}

// Notifier delivers fire-and-forget user-visible feedback (a toast)
type Notifier interface {
	Notify(message string)
}

// ChangeEvent is one realtime notification: an online-status record changed
type ChangeEvent struct {
	RecordID string `json:"record_id"`
	PlayerID string `json:"player_id"`
	IsOnline bool   `json:"is_online"`
}

// Subscription is an open realtime channel that can be torn down
type Subscription interface {
	Unsubscribe() error
}

// Feed is a source of realtime change events
type Feed interface {
	Subscribe(onEvent func(ChangeEvent)) (Subscription, error)
}

// RosterMember is one displayed player in a roster snapshot
type RosterMember struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Name         string `json:"name"`
	SummonerName string `json:"summoner_name"`
	IsOnline     bool   `json:"is_online"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// Scope identifies which cached roster a query or update applies to
type Scope struct {
	Team   string
	UserID string
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// ========== Roster DTOs ==========

// RosterEntry is one displayed player: the player plus the account currently
// surfaced for them (the online one if any, otherwise the primary account).
type RosterEntry struct {
	ID           uuid.UUID `json:"id"` // player id
	Name         string    `json:"name"`
	Position     string    `json:"position"`
	AvatarURL    string    `json:"avatar_url"`
	AccountID    uuid.UUID `json:"account_id"`
	SummonerName string    `json:"summoner_name"`
	TagLine      string    `json:"tag_line"`
	PUUID        string    `json:"puuid"`
	IsOnline     bool      `json:"is_online"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// ========== Device DTOs ==========

type RegisterDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceType string `json:"device_type" binding:"required,oneof=web android ios"`
}

// ========== Subscription DTOs ==========

type SubscribeRequest struct {
	PlayerID uuid.UUID `json:"player_id" binding:"required"`
}

// ========== Status tracker DTOs ==========

// UpdateStatusRequest is sent by the game-data tracker when an account's
// in-game state changes.
type UpdateStatusRequest struct {
	IsOnline bool `json:"is_online"`
}

// ========== Generic envelopes ==========

type StatusResponse struct {
	Status  string `json:"status"` // "success" | "error"
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ========== WebSocket Event DTOs ==========

type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket event types
const (
	WSEventAccountStatus = "account_status"
	WSEventSubscribed    = "subscribed"
	WSEventUnsubscribed  = "unsubscribed"
)

// AccountStatusEvent is broadcast on the feed when a game account flips
// online state. RecordID is the account row id, so viewers can tell whether
// the change concerns the account they currently show for the player.
type AccountStatusEvent struct {
	RecordID uuid.UUID `json:"record_id"` // game account row id
	PlayerID uuid.UUID `json:"player_id"`
	IsOnline bool      `json:"is_online"`
	At       time.Time `json:"at"`
}

// SubscriptionEvent is delivered to a single user when their follow list changes
type SubscriptionEvent struct {
	UserID   uuid.UUID `json:"user_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscription marks that a user wants push notifications for a player
type Subscription struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_player"`
	PlayerID  uuid.UUID `json:"player_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_player;index"`
	CreatedAt time.Time `json:"created_at"`
}

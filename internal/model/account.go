package model

import (
	"time"

	"github.com/google/uuid"
)

// GameAccount is one in-game account belonging to a player.
// A player usually has a main account plus alt accounts; the online flag
// on these rows is what the realtime feed watches.
type GameAccount struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlayerID     uuid.UUID  `json:"player_id" gorm:"type:uuid;not null;index"`
	SummonerName string     `json:"summoner_name" gorm:"size:100;not null"`
	TagLine      string     `json:"tag_line" gorm:"size:10;default:''"`
	PUUID        string     `json:"puuid" gorm:"size:100;uniqueIndex;not null"` // game API identity
	IsPrimary    bool       `json:"is_primary" gorm:"default:false"`
	IsOnline     bool       `json:"is_online" gorm:"default:false;index"`
	LastOnlineAt *time.Time `json:"last_online_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a pro team whose roster can be browsed
type Team struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	NameAbbr  string    `json:"name_abbr" gorm:"size:10;uniqueIndex;not null"` // e.g. "T1", "GEN"
	LogoURL   string    `json:"logo_url" gorm:"size:500;default:''"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Player represents a roster member of a team
type Player struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamID    int64     `json:"team_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"` // pro name, e.g. "Faker"
	Position  string    `json:"position" gorm:"size:20;default:''"`
	AvatarURL string    `json:"avatar_url" gorm:"size:500;default:''"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Accounts []GameAccount `json:"accounts,omitempty" gorm:"foreignKey:PlayerID"`
}

package repository

import (
	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"gorm.io/gorm"
)

// TeamRepository handles database operations for Team and Player
type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// ListTeams returns all teams ordered by id
func (r *TeamRepository) ListTeams() ([]model.Team, error) {
	var teams []model.Team
	err := r.db.Order("id ASC").Find(&teams).Error
	return teams, err
}

// FindTeamByAbbr finds a team by its abbreviation (e.g. "T1")
func (r *TeamRepository) FindTeamByAbbr(abbr string) (*model.Team, error) {
	var team model.Team
	err := r.db.Where("name_abbr = ?", abbr).First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// FindPlayerByID finds a player by UUID
func (r *TeamRepository) FindPlayerByID(id uuid.UUID) (*model.Player, error) {
	var player model.Player
	err := r.db.Where("id = ?", id).First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GetRoster returns the roster of a team: one entry per player, carrying the
// surfaced account (online account first, else the primary one) and whether
// the given user follows the player. userID may be uuid.Nil for anonymous
// viewers, in which case is_subscribed is always false.
func (r *TeamRepository) GetRoster(teamAbbr string, userID uuid.UUID) ([]model.RosterEntry, error) {
	var entries []model.RosterEntry
	err := r.db.
		Table("players").
		Select(`players.id, players.name, players.position, players.avatar_url,
			ga.id AS account_id, ga.summoner_name, ga.tag_line, ga.puuid, ga.is_online,
			(s.id IS NOT NULL) AS is_subscribed`).
		Joins("JOIN teams ON teams.id = players.team_id AND teams.name_abbr = ?", teamAbbr).
		Joins(`JOIN LATERAL (
			SELECT id, summoner_name, tag_line, puuid, is_online
			FROM game_accounts
			WHERE game_accounts.player_id = players.id
			ORDER BY is_online DESC, is_primary DESC, created_at ASC
			LIMIT 1
		) ga ON true`).
		Joins("LEFT JOIN subscriptions s ON s.player_id = players.id AND s.user_id = ?", userID).
		Order("players.name ASC").
		Scan(&entries).Error
	return entries, err
}

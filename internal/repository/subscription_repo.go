package repository

import (
	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository handles database operations for Subscription
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Subscribe follows a player. Safe to call twice: the second call is a no-op.
func (r *SubscriptionRepository) Subscribe(userID, playerID uuid.UUID) error {
	sub := model.Subscription{
		UserID:   userID,
		PlayerID: playerID,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "player_id"}},
		DoNothing: true,
	}).Create(&sub).Error
}

// Unsubscribe stops following a player
func (r *SubscriptionRepository) Unsubscribe(userID, playerID uuid.UUID) error {
	return r.db.
		Where("user_id = ? AND player_id = ?", userID, playerID).
		Delete(&model.Subscription{}).Error
}

// SubscriberIDs returns the user ids following a player
func (r *SubscriptionRepository) SubscriberIDs(playerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&model.Subscription{}).
		Where("player_id = ?", playerID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// ListByUser returns the player ids a user follows
func (r *SubscriptionRepository) ListByUser(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&model.Subscription{}).
		Where("user_id = ?", userID).
		Pluck("player_id", &ids).Error
	return ids, err
}

package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"gorm.io/gorm"
)

// AccountRepository handles database operations for GameAccount
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByID finds a game account by UUID
func (r *AccountRepository) FindByID(id uuid.UUID) (*model.GameAccount, error) {
	var account model.GameAccount
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByPUUID finds a game account by its game API identity
func (r *AccountRepository) FindByPUUID(puuid string) (*model.GameAccount, error) {
	var account model.GameAccount
	err := r.db.Where("puuid = ?", puuid).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SetOnlineStatus updates an account's online flag and reports the value it
// held before the write, so callers can tell a real transition from a no-op.
func (r *AccountRepository) SetOnlineStatus(id uuid.UUID, online bool) (wasOnline bool, err error) {
	err = r.db.Transaction(func(tx *gorm.DB) error {
		var account model.GameAccount
		if err := tx.Where("id = ?", id).First(&account).Error; err != nil {
			return err
		}
		wasOnline = account.IsOnline

		updates := map[string]interface{}{
			"is_online": online,
		}
		if online && !wasOnline {
			updates["last_online_at"] = time.Now()
		}
		return tx.Model(&model.GameAccount{}).Where("id = ?", id).Updates(updates).Error
	})
	return wasOnline, err
}

// ListByPlayer returns all accounts of a player, primary first
func (r *AccountRepository) ListByPlayer(playerID uuid.UUID) ([]model.GameAccount, error) {
	var accounts []model.GameAccount
	err := r.db.
		Where("player_id = ?", playerID).
		Order("is_primary DESC, created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceRepository handles database operations for UserDevice
type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Upsert adds or refreshes a device token for a user
func (r *DeviceRepository) Upsert(userID uuid.UUID, token string, deviceType string) error {
	device := model.UserDevice{
		UserID:       userID,
		FCMToken:     token,
		DeviceType:   deviceType,
		LastActiveAt: time.Now(),
	}
	// Upsert: on conflict do update
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "fcm_token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_active_at": time.Now(),
			"device_type":    deviceType,
		}),
	}).Create(&device).Error
}

// ListByUser gets all devices for a user
func (r *DeviceRepository) ListByUser(userID uuid.UUID) ([]model.UserDevice, error) {
	var devices []model.UserDevice
	err := r.db.Where("user_id = ?", userID).Find(&devices).Error
	return devices, err
}

// ListByUsers gets the devices of a set of users in one query
func (r *DeviceRepository) ListByUsers(userIDs []uuid.UUID) ([]model.UserDevice, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var devices []model.UserDevice
	err := r.db.Where("user_id IN ?", userIDs).Find(&devices).Error
	return devices, err
}

// Delete removes a device token, e.g. when FCM reports it unregistered
func (r *DeviceRepository) Delete(userID uuid.UUID, token string) error {
	return r.db.
		Where("user_id = ? AND fcm_token = ?", userID, token).
		Delete(&model.UserDevice{}).Error
}

// PruneStale removes devices that have not been active since the cutoff
func (r *DeviceRepository) PruneStale(cutoff time.Time) (int64, error) {
	res := r.db.Where("last_active_at < ?", cutoff).Delete(&model.UserDevice{})
	return res.RowsAffected, res.Error
}

package database

import (
	"context"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	base
}

func NewUserRepository(db *gorm.DB, timeout time.Duration) *UserRepository {
	return &UserRepository{base{db: db, timeout: timeout}}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return storeError("create user", db.Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, storeError("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, storeError("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateFCMToken(ctx context.Context, id uint, token string) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	res := db.Model(&models.User{}).Where("id = ?", id).Update("fcm_token", token)
	if res.Error != nil {
		return storeError("update fcm token", res.Error)
	}
	if res.RowsAffected == 0 {
		return storeError("update fcm token", gorm.ErrRecordNotFound)
	}
	return nil
}

type PreferenceRepository struct {
	base
}

func NewPreferenceRepository(db *gorm.DB, timeout time.Duration) *PreferenceRepository {
	return &PreferenceRepository{base{db: db, timeout: timeout}}
}

// Get returns the stored preferences, or the defaults for a user who never
// saved any.
func (r *PreferenceRepository) Get(ctx context.Context, userID uint) (*models.NotificationPreference, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var pref models.NotificationPreference
	err := db.Where("user_id = ?", userID).Limit(1).Find(&pref).Error
	if err != nil {
		return nil, storeError("get preferences", err)
	}
	if pref.ID == 0 {
		return models.DefaultPreferences(userID), nil
	}
	return &pref, nil
}

func (r *PreferenceRepository) Save(ctx context.Context, pref *models.NotificationPreference) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"push_enabled", "email_enabled", "updated_at"}),
	}).Create(pref).Error
	return storeError("save preferences", err)
}

package database

import (
	"context"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"gorm.io/gorm"
)

type CarRepository struct {
	base
}

func NewCarRepository(db *gorm.DB, timeout time.Duration) *CarRepository {
	return &CarRepository{base{db: db, timeout: timeout}}
}

func (r *CarRepository) FindByID(ctx context.Context, id uint) (*models.Car, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var car models.Car
	if err := db.First(&car, id).Error; err != nil {
		return nil, storeError("find car", err)
	}
	return &car, nil
}

func (r *CarRepository) ListAvailableAt(ctx context.Context, location string) ([]models.Car, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var cars []models.Car
	err := db.Where("location = ? AND is_available = ?", location, true).
		Order("id").
		Find(&cars).Error
	return cars, storeError("list cars", err)
}

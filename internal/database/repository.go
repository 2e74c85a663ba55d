package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"gorm.io/gorm"
)

// base bounds every store call by the configured timeout.
type base struct {
	db      *gorm.DB
	timeout time.Duration
}

func (b base) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return b.db.WithContext(ctx), cancel
}

// storeError maps driver errors onto the domain sentinels.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: already exists", op, models.ErrValidation)
	case errors.Is(err, models.ErrCarUnavailable), errors.Is(err, models.ErrStatusConflict):
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, models.ErrStorageUnavailable, err)
}

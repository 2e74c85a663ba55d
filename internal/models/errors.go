package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrCarUnavailable     = errors.New("car is not available")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrStatusConflict     = errors.New("booking status changed concurrently")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ErrInvalidTransition is reported as a validation failure.
var ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrValidation)

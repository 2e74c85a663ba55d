package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chachabrian/carrental-backend/internal/middleware"
	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/chachabrian/carrental-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError turns a domain error into the failure envelope. notFound is
// the message used for models.ErrNotFound.
func respondError(c *gin.Context, log *zap.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		utils.RespondFailure(c, validationMessage(err))
	case errors.Is(err, models.ErrCarUnavailable):
		utils.RespondFailure(c, "Car is not available")
	case errors.Is(err, models.ErrUnauthorized):
		utils.RespondFailure(c, "Unauthorized")
	case errors.Is(err, models.ErrNotFound):
		utils.RespondFailure(c, notFound)
	case errors.Is(err, models.ErrAlreadyCancelled):
		utils.RespondFailure(c, "Booking is already cancelled")
	case errors.Is(err, models.ErrStatusConflict):
		utils.RespondFailure(c, "Booking was changed by another request, please retry")
	case errors.Is(err, models.ErrStorageUnavailable):
		log.Error("Storage unavailable",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.RespondFailure(c, "Service temporarily unavailable, please try again")
	default:
		log.Error("Unhandled error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.RespondFailure(c, "Something went wrong")
	}
}

func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, models.ErrValidation.Error()+": "); i >= 0 {
		msg = msg[i+len(models.ErrValidation.Error())+2:]
	}
	return msg
}

// identity returns the caller or answers "not authorized" itself.
func identity(c *gin.Context) (services.Identity, bool) {
	who, ok := middleware.GetIdentity(c)
	if !ok {
		utils.RespondFailure(c, "not authorized")
	}
	return who, ok
}

// ID accepts both 12 and "12" in request bodies.
type ID uint

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", string(b))
	}
	*id = ID(n)
	return nil
}

var _ json.Unmarshaler = (*ID)(nil)

func parseRange(pickup, ret string) (time.Time, time.Time, error) {
	p, err := utils.ParseDate(pickup)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid pickupDate", models.ErrValidation)
	}
	r, err := utils.ParseDate(ret)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid returnDate", models.ErrValidation)
	}
	return p, r, nil
}

func bindError(err error) error {
	return fmt.Errorf("%w: invalid request: %v", models.ErrValidation, err)
}

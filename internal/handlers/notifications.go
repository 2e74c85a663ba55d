package handlers

import (
	"context"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PreferenceService interface {
	Get(ctx context.Context, userID uint) (*models.NotificationPreference, error)
	Save(ctx context.Context, pref *models.NotificationPreference) error
}

// RegisterFCMToken registers or updates a user's FCM token
func RegisterFCMToken(users UserService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := identity(c)
		if !ok {
			return
		}

		var input struct {
			FCMToken string `json:"fcmToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, log, bindError(err), "")
			return
		}

		if err := users.UpdateFCMToken(c.Request.Context(), who.ID, input.FCMToken); err != nil {
			respondError(c, log, err, "User not found")
			return
		}
		utils.RespondSuccess(c, "FCM token registered", nil)
	}
}

// GetNotificationPreferences retrieves user's notification preferences
func GetNotificationPreferences(prefs PreferenceService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := identity(c)
		if !ok {
			return
		}

		pref, err := prefs.Get(c.Request.Context(), who.ID)
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		utils.RespondSuccess(c, "", gin.H{"preferences": pref})
	}
}

// UpdateNotificationPreferences updates only the provided fields.
func UpdateNotificationPreferences(prefs PreferenceService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := identity(c)
		if !ok {
			return
		}

		var input struct {
			PushEnabled  *bool `json:"pushEnabled"`
			EmailEnabled *bool `json:"emailEnabled"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, log, bindError(err), "")
			return
		}

		pref, err := prefs.Get(c.Request.Context(), who.ID)
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		if input.PushEnabled != nil {
			pref.PushEnabled = *input.PushEnabled
		}
		if input.EmailEnabled != nil {
			pref.EmailEnabled = *input.EmailEnabled
		}

		if err := prefs.Save(c.Request.Context(), pref); err != nil {
			respondError(c, log, err, "")
			return
		}
		utils.RespondSuccess(c, "Preferences updated", gin.H{"preferences": pref})
	}
}

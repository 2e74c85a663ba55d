package middleware

import (
	"context"
	"strings"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/chachabrian/carrental-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	identityKey = "identity"
	userKey     = "user"
)

// UserLookup loads the account behind a token.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware accepts "Bearer <jwt>", a raw token in the Authorization
// header, or a token query parameter (for WebSocket). The user record is
// reloaded so deleted accounts lose access immediately.
func AuthMiddleware(secret string, users UserLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			utils.AbortWithFailure(c, "not authorized")
			return
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			utils.AbortWithFailure(c, "not authorized")
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Debug("Token user lookup failed", zap.Uint("userId", claims.UserID), zap.Error(err))
			utils.AbortWithFailure(c, "not authorized")
			return
		}

		c.Set(identityKey, services.Identity{ID: user.ID, Role: user.Role})
		c.Set(userKey, user)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return authHeader
	}
	return c.Query("token")
}

// GetIdentity returns the caller stored by AuthMiddleware.
func GetIdentity(c *gin.Context) (services.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return services.Identity{}, false
	}
	id, ok := v.(services.Identity)
	return id, ok
}

// GetUser returns the account stored by AuthMiddleware.
func GetUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

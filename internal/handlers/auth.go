package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chachabrian/carrental-backend/internal/middleware"
	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserService interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id uint, token string) error
}

// TokenIssuer signs JWTs for authenticated users.
type TokenIssuer struct {
	Secret string
	TTL    time.Duration
}

func (t TokenIssuer) Issue(user *models.User) (string, error) {
	return utils.GenerateToken(user.ID, string(user.Role), t.Secret, t.TTL)
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(users UserService, tokens TokenIssuer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, log, bindError(err), "")
			return
		}

		role := models.Role(strings.ToLower(strings.TrimSpace(input.Role)))
		if role == "" {
			role = models.RoleUser
		}
		if !role.Valid() {
			utils.RespondFailure(c, "Invalid role")
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))
		if _, err := users.FindByEmail(c.Request.Context(), email); err == nil {
			utils.RespondFailure(c, "User already exists")
			return
		} else if !errors.Is(err, models.ErrNotFound) {
			respondError(c, log, err, "")
			return
		}

		user := models.User{
			Name:     strings.TrimSpace(input.Name),
			Email:    email,
			Password: input.Password,
			Role:     role,
		}
		if err := user.HashPassword(); err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			utils.RespondFailure(c, "Something went wrong")
			return
		}

		if err := users.Create(c.Request.Context(), &user); err != nil {
			if errors.Is(err, models.ErrValidation) {
				utils.RespondFailure(c, "User already exists")
				return
			}
			respondError(c, log, err, "")
			return
		}

		token, err := tokens.Issue(&user)
		if err != nil {
			log.Error("Failed to sign token", zap.Error(err))
			utils.RespondFailure(c, "Something went wrong")
			return
		}

		utils.RespondSuccess(c, "", gin.H{"token": token})
	}
}

func Login(users UserService, tokens TokenIssuer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, log, bindError(err), "")
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				utils.RespondFailure(c, "Invalid Credentials")
				return
			}
			respondError(c, log, err, "")
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			utils.RespondFailure(c, "Invalid Credentials")
			return
		}

		token, err := tokens.Issue(user)
		if err != nil {
			log.Error("Failed to sign token", zap.Error(err))
			utils.RespondFailure(c, "Something went wrong")
			return
		}

		utils.RespondSuccess(c, "", gin.H{"token": token})
	}
}

// GetUserData returns the authenticated user's profile.
func GetUserData() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUser(c)
		if !ok {
			utils.RespondFailure(c, "not authorized")
			return
		}
		utils.RespondSuccess(c, "", gin.H{"user": user})
	}
}

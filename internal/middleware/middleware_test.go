package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsers map[uint]models.User

func (s stubUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func authRouter() *gin.Engine {
	owner := models.User{Name: "Ravi", Role: models.RoleOwner}
	owner.ID = 10

	r := gin.New()
	r.GET("/me", AuthMiddleware(secret, stubUsers{10: owner}, zap.NewNop()), func(c *gin.Context) {
		who, ok := GetIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		u, _ := GetUser(c)
		c.JSON(http.StatusOK, gin.H{"id": who.ID, "role": who.Role, "name": u.Name})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := authRouter()
	valid, err := utils.GenerateToken(10, "owner", secret, time.Hour)
	require.NoError(t, err)
	unknownUser, err := utils.GenerateToken(99, "user", secret, time.Hour)
	require.NoError(t, err)
	wrongSecret, err := utils.GenerateToken(10, "owner", "other", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		ok     bool
	}{
		{"bearer token", "Bearer " + valid, "", true},
		{"raw token", valid, "", true},
		{"query token", "", valid, true},
		{"missing token", "", "", false},
		{"wrong secret", "Bearer " + wrongSecret, "", false},
		{"deleted user", "Bearer " + unknownUser, "", false},
		{"garbage", "Bearer nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/me"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			if tt.ok {
				assert.Equal(t, float64(10), body["id"])
				assert.Equal(t, "owner", body["role"])
				assert.Equal(t, "Ravi", body["name"])
			} else {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, "not authorized", body["message"])
			}
		})
	}
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(1, 2, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

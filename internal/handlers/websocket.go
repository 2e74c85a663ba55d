package handlers

import (
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler streams booking events to the authenticated user.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := identity(c)
		if !ok {
			return
		}
		services.HandleWebSocket(hub, c.Writer, c.Request, who.ID, who.Role)
	}
}

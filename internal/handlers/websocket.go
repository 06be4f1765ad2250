package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/internal/services"
)

// WebSocketHandler handles WebSocket connections
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := models.Role(c.GetString("role"))

		services.HandleWebSocket(hub, c.Writer, c.Request, userID, role)
	}
}

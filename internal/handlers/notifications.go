package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/models"
)

// GetNotifications returns the caller's 50 newest notifications
func GetNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var notifications []models.Notification
		if err := db.Where("user_id = ?", userId).
			Order("created_at DESC").
			Limit(50).
			Find(&notifications).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch notifications"})
			return
		}

		c.JSON(200, notifications)
	}
}

// MarkNotificationRead marks one of the caller's notifications as read
func MarkNotificationRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		id := c.Param("id")

		if err := db.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", id, userId).
			Update("is_read", true).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to mark notification as read"})
			return
		}

		c.JSON(200, gin.H{"message": "Notification marked as read"})
	}
}

// MarkAllNotificationsRead marks all of the caller's notifications as read
func MarkAllNotificationsRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		if err := db.Model(&models.Notification{}).
			Where("user_id = ?", userId).
			Update("is_read", true).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to mark notifications as read"})
			return
		}

		c.JSON(200, gin.H{"message": "All notifications marked as read"})
	}
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/models"
)

// GetStats returns dashboard counters, admin only
func GetStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userCount, propertyCount, bookingCount, activeBookingCount int64

		db.Model(&models.User{}).Count(&userCount)
		db.Model(&models.Property{}).Count(&propertyCount)
		db.Model(&models.Booking{}).Count(&bookingCount)
		db.Model(&models.Booking{}).
			Where("status IN ?", []models.BookingStatus{
				models.BookingStatusPending,
				models.BookingStatusConfirmed,
			}).
			Count(&activeBookingCount)

		c.JSON(200, gin.H{
			"totalUsers":      userCount,
			"totalProperties": propertyCount,
			"totalBookings":   bookingCount,
			"activeBookings":  activeBookingCount,
		})
	}
}

// GetAllProperties returns every listing with its host, admin only
func GetAllProperties(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var properties []models.Property
		if err := db.Preload("Host").
			Order("created_at DESC").
			Find(&properties).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch properties"})
			return
		}

		out := make([]gin.H, 0, len(properties))
		for i := range properties {
			entry := propertyResponse(&properties[i])
			entry["hostName"] = properties[i].Host.FullName
			out = append(out, entry)
		}

		c.JSON(200, out)
	}
}

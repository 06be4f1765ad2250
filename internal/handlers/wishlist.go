package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/models"
)

// AddToWishlist saves a property to the caller's wishlist
func AddToWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestId := c.GetUint("userId")
		propertyId, ok := parseUintParam(c, "propertyId")
		if !ok {
			return
		}

		var count int64
		db.Model(&models.Property{}).Where("id = ?", propertyId).Count(&count)
		if count == 0 {
			c.JSON(404, gin.H{"error": "Property not found"})
			return
		}

		db.Model(&models.WishlistItem{}).
			Where("guest_id = ? AND property_id = ?", guestId, propertyId).
			Count(&count)
		if count > 0 {
			c.JSON(400, gin.H{"error": "Property already in wishlist"})
			return
		}

		item := models.WishlistItem{GuestID: guestId, PropertyID: propertyId}
		if err := db.Create(&item).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to add to wishlist"})
			return
		}

		c.JSON(201, gin.H{"message": "Added to wishlist"})
	}
}

// RemoveFromWishlist drops a property from the caller's wishlist
func RemoveFromWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestId := c.GetUint("userId")
		propertyId, ok := parseUintParam(c, "propertyId")
		if !ok {
			return
		}

		if err := db.Where("guest_id = ? AND property_id = ?", guestId, propertyId).
			Delete(&models.WishlistItem{}).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to remove from wishlist"})
			return
		}

		c.JSON(200, gin.H{"message": "Removed from wishlist"})
	}
}

// GetWishlist returns the caller's wishlist with its properties
func GetWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestId := c.GetUint("userId")

		var items []models.WishlistItem
		if err := db.Preload("Property").Preload("Property.Host").
			Where("guest_id = ?", guestId).
			Order("created_at DESC").
			Find(&items).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch wishlist"})
			return
		}

		out := make([]gin.H, 0, len(items))
		for i := range items {
			entry := propertyResponse(&items[i].Property)
			entry["hostName"] = items[i].Property.Host.FullName
			entry["addedAt"] = items[i].CreatedAt
			out = append(out, entry)
		}

		c.JSON(200, out)
	}
}

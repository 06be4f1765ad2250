package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/models"
)

type CreateReviewInput struct {
	BookingID uint   `json:"bookingId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// CreateReview records a guest's review of a completed stay. One review
// per booking, and only for confirmed or completed bookings.
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestId := c.GetUint("userId")

		var input CreateReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if err := db.Where("id = ? AND guest_id = ?", input.BookingID, guestId).
			First(&booking).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if !booking.Status.IsReviewable() {
			c.JSON(400, gin.H{"error": "Can only review confirmed or completed bookings"})
			return
		}

		var count int64
		db.Model(&models.Review{}).Where("booking_id = ?", input.BookingID).Count(&count)
		if count > 0 {
			c.JSON(400, gin.H{"error": "Review already exists for this booking"})
			return
		}

		review := models.Review{
			BookingID:  input.BookingID,
			GuestID:    guestId,
			PropertyID: booking.PropertyID,
			Rating:     input.Rating,
			Comment:    input.Comment,
		}

		if err := db.Create(&review).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create review"})
			return
		}

		c.JSON(201, gin.H{"message": "Review created successfully", "id": review.ID})
	}
}

// GetPropertyReviews returns a property's reviews, newest first
func GetPropertyReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		propertyId := c.Param("propertyId")

		var reviews []models.Review
		if err := db.Preload("Guest").
			Where("property_id = ?", propertyId).
			Order("created_at DESC").
			Find(&reviews).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		c.JSON(200, reviews)
	}
}

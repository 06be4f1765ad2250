package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/booking"
	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/internal/services"
	"github.com/stayhub/stayhub-backend/pkg/apperrors"
)

// bookingError maps core error codes to HTTP responses
func bookingError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status := 500
	switch code {
	case apperrors.CodeValidation, apperrors.CodeInvalidRange,
		apperrors.CodeInvalidTransition, apperrors.CodeAlreadyCancelled,
		apperrors.CodePastCheckIn:
		status = 400
	case apperrors.CodeNotFound, apperrors.CodeUnavailable:
		status = 404
	case apperrors.CodeUnauthorized:
		status = 403
	case apperrors.CodeConflict:
		status = 409
	case apperrors.CodeContention:
		status = 503
	}

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	c.JSON(status, gin.H{"error": message, "code": code})
}

type CreateBookingInput struct {
	PropertyID   uint   `json:"propertyId" binding:"required"`
	CheckIn      string `json:"checkIn" binding:"required"`
	CheckOut     string `json:"checkOut" binding:"required"`
	GuestMessage string `json:"guestMessage"`
}

// CreateBooking handles a guest's stay request
func CreateBooking(ctrl *booking.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestId := c.GetUint("userId")

		var input CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		checkIn, err := time.Parse("2006-01-02", input.CheckIn)
		if err != nil {
			c.JSON(400, gin.H{"error": "Valid check-in date is required (YYYY-MM-DD)"})
			return
		}
		checkOut, err := time.Parse("2006-01-02", input.CheckOut)
		if err != nil {
			c.JSON(400, gin.H{"error": "Valid check-out date is required (YYYY-MM-DD)"})
			return
		}

		result, err := ctrl.CreateBooking(c.Request.Context(), input.PropertyID, guestId, checkIn, checkOut, input.GuestMessage)
		if err != nil {
			bookingError(c, err)
			return
		}

		if services.RedisClient != nil {
			services.PublishBookingUpdate(context.Background(), result.BookingID,
				models.BookingStatusPending, map[string]interface{}{"propertyId": input.PropertyID})
		}

		c.JSON(201, gin.H{
			"message":    "Booking request created successfully",
			"bookingId":  result.BookingID,
			"totalPrice": result.TotalPrice,
			"nights":     result.Nights,
		})
	}
}

// GetMyBookings returns the caller's bookings: stays for guests, incoming
// requests for hosts
func GetMyBookings(ctrl *booking.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		role := models.Role(c.GetString("role"))

		var (
			bookings []models.Booking
			err      error
		)
		if role.CanManageListings() {
			bookings, err = ctrl.Ledger().ListByHost(c.Request.Context(), userId)
		} else {
			bookings, err = ctrl.Ledger().ListByGuest(c.Request.Context(), userId)
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// GetBooking returns a single booking visible to its guest, the property
// host, or an admin
func GetBooking(ctrl *booking.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingId, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		userId := c.GetUint("userId")
		role := models.Role(c.GetString("role"))

		b, err := ctrl.Ledger().Get(c.Request.Context(), bookingId)
		if err != nil {
			bookingError(c, err)
			return
		}

		if b.GuestID != userId && b.Property.HostID != userId && role != models.RoleAdmin {
			c.JSON(403, gin.H{"error": "Not authorized"})
			return
		}

		c.JSON(200, b)
	}
}

type DecideBookingInput struct {
	Status       string `json:"status" binding:"required,oneof=confirmed cancelled"`
	HostResponse string `json:"hostResponse"`
}

// UpdateBookingStatus applies the host's accept/reject decision
func UpdateBookingStatus(ctrl *booking.Controller, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingId, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		userId := c.GetUint("userId")
		role := models.Role(c.GetString("role"))

		var input DecideBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		decision := models.BookingStatus(input.Status)
		if err := ctrl.DecideBooking(c.Request.Context(), bookingId, userId, role, decision, input.HostResponse); err != nil {
			bookingError(c, err)
			return
		}

		// Live push to the guest's open connections
		if hub != nil {
			if b, err := ctrl.Ledger().Get(c.Request.Context(), bookingId); err == nil {
				hub.SendBookingUpdate(b.GuestID, bookingId, decision)
			}
		}
		if services.RedisClient != nil {
			services.PublishBookingUpdate(context.Background(), bookingId, decision, nil)
		}

		c.JSON(200, gin.H{"message": "Booking " + input.Status + " successfully"})
	}
}

// CancelBooking lets the owning guest cancel before check-in
func CancelBooking(ctrl *booking.Controller, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingId, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		if err := ctrl.CancelBooking(c.Request.Context(), bookingId, userId); err != nil {
			bookingError(c, err)
			return
		}

		// Live push so the guest's other sessions see the change
		if hub != nil {
			hub.SendBookingUpdate(userId, bookingId, models.BookingStatusCancelled)
		}
		if services.RedisClient != nil {
			services.PublishBookingUpdate(context.Background(), bookingId,
				models.BookingStatusCancelled, nil)
		}

		c.JSON(200, gin.H{"message": "Booking cancelled successfully"})
	}
}

// GetPropertyBookings returns a property's reservation calendar to its host
func GetPropertyBookings(db *gorm.DB, ctrl *booking.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if _, ok := requireOwnership(db, c, id); !ok {
			return
		}
		propertyId, ok := parseUintParam(c, "id")
		if !ok {
			return
		}

		bookings, err := ctrl.Ledger().ListByProperty(c.Request.Context(), propertyId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// GetAllBookings returns every booking, admin only
func GetAllBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bookings []models.Booking
		if err := db.Preload("Property").Preload("Guest").
			Order("created_at DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

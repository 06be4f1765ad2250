package booking

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/pkg/apperrors"
)

// Ledger is the authoritative record of reservation intervals per
// property. It owns conflict detection, price computation, and the
// status compare-and-swap. Callers wanting check-then-insert atomicity
// must hold the property's exclusive section around FindConflicts and
// Append; the ledger itself only guarantees single-statement atomicity.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// activeStatuses are the statuses that count toward conflict checks.
var activeStatuses = []models.BookingStatus{
	models.BookingStatusPending,
	models.BookingStatusConfirmed,
}

// FindConflicts returns every active reservation on the property whose
// stay overlaps [checkIn, checkOut). Intervals are half-open: a stay
// ending on checkIn or starting on checkOut does not conflict.
func (l *Ledger) FindConflicts(ctx context.Context, propertyID uint, checkIn, checkOut time.Time) ([]models.Booking, error) {
	var conflicts []models.Booking
	err := l.db.WithContext(ctx).
		Where("property_id = ? AND status IN ? AND check_in < ? AND check_out > ?",
			propertyID, activeStatuses, checkOut, checkIn).
		Find(&conflicts).Error
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

// ComputePrice returns the frozen total for a stay: nights times the
// per-night rate at booking time. Later price changes to the listing
// never touch existing reservations.
func (l *Ledger) ComputePrice(pricePerNight float64, checkIn, checkOut time.Time) (total float64, nights int, err error) {
	nights = int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights <= 0 {
		return 0, 0, apperrors.New(apperrors.CodeInvalidRange, "check-out date must be after check-in date")
	}
	return float64(nights) * pricePerNight, nights, nil
}

// Append inserts a new reservation in pending state. The caller must
// have verified no conflicts exist while holding the property section.
func (l *Ledger) Append(ctx context.Context, booking *models.Booking) error {
	booking.Status = models.BookingStatusPending
	if err := l.db.WithContext(ctx).Create(booking).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to store reservation", err)
	}
	return nil
}

// Transition applies a state-machine edge as an atomic compare-and-swap
// on the reservation row. extra columns (e.g. the host's response) are
// written in the same statement. A concurrent transition that got there
// first makes the swap miss, reported as an invalid transition.
func (l *Ledger) Transition(ctx context.Context, bookingID uint, from, to models.BookingStatus, extra map[string]interface{}) error {
	if !from.CanTransitionTo(to) {
		return apperrors.New(apperrors.CodeInvalidTransition,
			fmt.Sprintf("cannot move booking from %s to %s", from, to))
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	res := l.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, from).
		Updates(updates)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to update reservation status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeInvalidTransition,
			fmt.Sprintf("booking is no longer %s", from))
	}
	return nil
}

// ListByProperty returns the property's reservations, newest first.
func (l *Ledger) ListByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := l.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// ListByGuest returns the guest's reservations, newest first.
func (l *Ledger) ListByGuest(ctx context.Context, guestID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := l.db.WithContext(ctx).
		Preload("Property").
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// ListByHost returns reservations against all of the host's properties,
// newest first.
func (l *Ledger) ListByHost(ctx context.Context, hostID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := l.db.WithContext(ctx).
		Preload("Property").
		Preload("Guest").
		Joins("JOIN properties ON properties.id = bookings.property_id").
		Where("properties.host_id = ?", hostID).
		Order("bookings.created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// Get fetches a single reservation with its property.
func (l *Ledger) Get(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := l.db.WithContext(ctx).Preload("Property").First(&booking, bookingID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.CodeNotFound, "booking not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load booking", err)
	}
	return &booking, nil
}

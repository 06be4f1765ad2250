package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// transitions is the closed edge set of the booking state machine.
// cancelled and completed are terminal. completed is only ever produced
// by an external batch promotion, never by an API-driven transition.
var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

// CanTransitionTo reports whether the state machine allows the edge.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether the booking counts toward conflict checks.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s BookingStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsReviewable reports whether a review may be written against the booking.
func (s BookingStatus) IsReviewable() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCompleted
}

type Booking struct {
	gorm.Model
	PropertyID   uint          `json:"propertyId" gorm:"not null;index"`
	Property     Property      `json:"property"`
	GuestID      uint          `json:"guestId" gorm:"not null;index"`
	Guest        User          `json:"guest"`
	CheckIn      time.Time     `json:"checkIn" gorm:"not null"`
	CheckOut     time.Time     `json:"checkOut" gorm:"not null"`
	Status       BookingStatus `json:"status" gorm:"not null;default:pending;index"`
	TotalPrice   float64       `json:"totalPrice" gorm:"not null"`
	GuestMessage string        `json:"guestMessage" gorm:"type:text"`
	HostResponse string        `json:"hostResponse" gorm:"type:text"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Nights returns the length of the stay in calendar nights.
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// Overlaps reports whether the half-open stay intervals [CheckIn, CheckOut)
// of two bookings intersect. Back-to-back stays do not overlap.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && checkIn.Before(b.CheckOut)
}

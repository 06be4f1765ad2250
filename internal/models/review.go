package models

import (
	"gorm.io/gorm"
)

type Review struct {
	gorm.Model
	BookingID  uint     `json:"bookingId" gorm:"not null;uniqueIndex"`
	Booking    Booking  `json:"-"`
	GuestID    uint     `json:"guestId" gorm:"not null;index"`
	Guest      User     `json:"guest"`
	PropertyID uint     `json:"propertyId" gorm:"not null;index"`
	Property   Property `json:"-"`
	Rating     int      `json:"rating" gorm:"not null"`
	Comment    string   `json:"comment" gorm:"type:text"`
}

func (Review) TableName() string {
	return "reviews"
}

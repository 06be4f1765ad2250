package models

import (
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationBookingRequest   NotificationType = "booking_request"
	NotificationBookingUpdate    NotificationType = "booking_update"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
)

type Notification struct {
	gorm.Model
	UserID  uint             `json:"userId" gorm:"not null;index"`
	Message string           `json:"message" gorm:"not null"`
	Type    NotificationType `json:"type" gorm:"not null"`
	IsRead  bool             `json:"isRead" gorm:"default:false"`
}

func (Notification) TableName() string {
	return "notifications"
}

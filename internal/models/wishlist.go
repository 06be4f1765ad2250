package models

import (
	"gorm.io/gorm"
)

type WishlistItem struct {
	gorm.Model
	GuestID    uint     `json:"guestId" gorm:"not null;index;uniqueIndex:idx_wishlist_guest_property"`
	PropertyID uint     `json:"propertyId" gorm:"not null;uniqueIndex:idx_wishlist_guest_property"`
	Property   Property `json:"property"`
}

func (WishlistItem) TableName() string {
	return "wishlist"
}

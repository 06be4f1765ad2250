package models

import (
	"gorm.io/gorm"
)

type Property struct {
	gorm.Model
	HostID        uint    `json:"hostId" gorm:"not null;index"`
	Host          User    `json:"host"`
	Title         string  `json:"title" gorm:"not null"`
	Description   string  `json:"description" gorm:"type:text"`
	Address       string  `json:"address" gorm:"not null"`
	City          string  `json:"city" gorm:"not null;index"`
	State         string  `json:"state"`
	Country       string  `json:"country"`
	PricePerNight float64 `json:"pricePerNight" gorm:"not null"`
	Bedrooms      int     `json:"bedrooms" gorm:"default:1"`
	Bathrooms     int     `json:"bathrooms" gorm:"default:1"`
	MaxGuests     int     `json:"maxGuests" gorm:"default:2"`
	PropertyType  string  `json:"propertyType"`
	Amenities     string  `json:"amenities" gorm:"type:text"`  // JSON-encoded string array
	HouseRules    string  `json:"houseRules" gorm:"type:text"`
	Images        string  `json:"images" gorm:"type:text"` // JSON-encoded string array
	IsAvailable   bool    `json:"isAvailable" gorm:"default:true"`
}

func (Property) TableName() string {
	return "properties"
}

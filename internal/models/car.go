package models

import (
	"gorm.io/gorm"
)

// Car is read-only from the booking core's point of view. IsAvailable is a
// coarse owner toggle, independent of the date-range overlap check.
type Car struct {
	gorm.Model
	OwnerID     uint    `json:"owner" gorm:"not null;index"`
	Brand       string  `json:"brand" gorm:"not null"`
	ModelName   string  `json:"model" gorm:"column:model;not null"`
	Location    string  `json:"location" gorm:"not null;index"`
	PricePerDay float64 `json:"pricePerDay" gorm:"not null"`
	IsAvailable bool    `json:"isAvailable" gorm:"not null;default:true"`
}

// TableName specifies the table name
func (Car) TableName() string {
	return "cars"
}

func (c Car) DisplayName() string {
	return c.Brand + " " + c.ModelName
}

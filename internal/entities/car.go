package entities

import "time"

const (
	CarStatusActive = "active"

	// DefaultCarUnit is used when the car description carries no "- UNIT" suffix.
	DefaultCarUnit = "GERAL"
)

// Car is a collection vehicle, unique per (name, unit).
type Car struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_car_name_unit" json:"name"`
	Unit      string    `gorm:"size:100;not null;uniqueIndex:idx_car_name_unit" json:"unit"`
	Status    string    `gorm:"size:20;default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Car) TableName() string {
	return "cars"
}

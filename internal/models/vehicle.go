package models

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle types accepted in a garage.
const (
	VehicleTypeCar        = "car"
	VehicleTypeMotorcycle = "motorcycle"
)

// Vehicle is a member's car or motorcycle. Only the owner may change or delete it.
type Vehicle struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Make          string    `gorm:"size:64;not null" json:"make"`
	Model         string    `gorm:"size:64;not null" json:"model"`
	Year          int       `gorm:"not null" json:"year"`
	Type          string    `gorm:"size:16;not null" json:"type"`
	Color         string    `gorm:"size:32" json:"color"`
	Description   string    `gorm:"type:text" json:"description"`
	Modifications string    `gorm:"type:text" json:"modifications"`
	Images        []string  `gorm:"serializer:json;type:text" json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (v *Vehicle) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	if v.Images == nil {
		v.Images = []string{}
	}
	return nil
}

// Summary returns the vehicle snapshot embedded in feed items.
func (v *Vehicle) Summary() *VehicleSummary {
	return &VehicleSummary{
		ID:    v.ID,
		Make:  v.Make,
		Model: v.Model,
		Year:  v.Year,
		Type:  v.Type,
		Color: v.Color,
	}
}

// VehicleSummary is the denormalized vehicle tag shown on a post.
type VehicleSummary struct {
	ID    string `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

// CatalogVehicle is one row of the seeded specification catalog.
type CatalogVehicle struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id" yaml:"-"`
	Make       string `gorm:"size:64;not null;uniqueIndex:idx_catalog_make_model_year" json:"make" yaml:"make"`
	Model      string `gorm:"size:64;not null;uniqueIndex:idx_catalog_make_model_year" json:"model" yaml:"model"`
	Year       int    `gorm:"not null;uniqueIndex:idx_catalog_make_model_year" json:"year" yaml:"year"`
	Type       string `gorm:"size:16;not null;index" json:"type" yaml:"type"`
	BodyStyle  string `gorm:"size:32" json:"body_style" yaml:"body_style"`
	Engine     string `gorm:"size:64" json:"engine" yaml:"engine"`
	Horsepower int    `json:"horsepower" yaml:"horsepower"`
	Drivetrain string `gorm:"size:16" json:"drivetrain" yaml:"drivetrain"`
}

func (v *CatalogVehicle) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

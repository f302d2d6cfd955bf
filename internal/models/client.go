package models

import "time"

// Client entity
type Client struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:255;not null;index" json:"name"`
	TaxID         string `gorm:"size:64" json:"tax_id"` // NIF/CIF
	Address       string `json:"address"`
	Phone         string `gorm:"size:64" json:"phone"`
	Email         string `gorm:"size:255" json:"email"`
	ContactPerson string `gorm:"size:128" json:"contact_person"`
	// Default discount percent pre-filled on new quote lines for this client.
	DefaultDiscount float64   `gorm:"not null;default:0" json:"default_discount"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

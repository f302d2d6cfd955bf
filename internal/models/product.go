package models

import (
	"time"

	"gorm.io/gorm"
)

// Catalog domain models
type ProductCategory struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Code      string `gorm:"size:32;uniqueIndex" json:"code"` // ex: RED, OBRA
	Name      string `gorm:"size:128;not null;unique" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Ref        string          `gorm:"size:64;not null;uniqueIndex" json:"ref"`
	CategoryID uint            `json:"category_id"`
	Category   ProductCategory `gorm:"foreignKey:CategoryID" json:"-"`
	ShortDesc  string          `gorm:"size:255;not null" json:"short_desc"`
	LongDesc   string          `json:"long_desc"`
	Unit       string          `gorm:"size:32;not null" json:"unit"` // ud, m, h...
	Cost       float64         `gorm:"not null;default:0" json:"cost"`
	// Margin is stored as a fraction (0.15 for 15%); inputs are normalized
	// through pricing.NormalizeMargin before they land here.
	Margin     float64 `gorm:"not null;default:0" json:"margin"`
	SalePrice  float64 `gorm:"not null;default:0" json:"sale_price"`
	FixedPrice bool    `gorm:"not null;default:false" json:"fixed_price"`
	// VAT rate as a whole-number percent (21 for 21%), matching quote lines.
	VAT       float64        `gorm:"not null;default:0" json:"vat"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"updated_at"`
}

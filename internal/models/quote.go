package models

import "time"

// Quote / estimate models. Header totals are persisted snapshots of the
// pricing engine output so an issued quote keeps its historical figures even
// if catalog prices move later.
type Quote struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Number    string `gorm:"size:64;not null;uniqueIndex" json:"number"`
	ClientID  uint   `gorm:"not null" json:"client_id"`
	Client    Client `gorm:"foreignKey:ClientID" json:"-"`
	Date      time.Time `gorm:"not null" json:"date"`
	ValidDays int       `gorm:"not null;default:30" json:"valid_days"`
	Status    string    `gorm:"size:32;not null;default:'draft'" json:"status"` // draft, sent, accepted, rejected
	VATMode   string    `gorm:"size:32;not null;default:'line'" json:"vat_mode"`
	// Header-level overrides, whole-number percents.
	GlobalVAT      float64     `gorm:"not null;default:0" json:"global_vat"`
	GlobalDiscount float64     `gorm:"not null;default:0" json:"global_discount"`
	Notes          string      `json:"notes"`
	Subtotal       float64     `gorm:"not null;default:0" json:"subtotal"`
	VATTotal       float64     `gorm:"not null;default:0" json:"vat_total"`
	Total          float64     `gorm:"not null;default:0" json:"total"`
	Lines          []QuoteLine `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt      time.Time   `json:"-"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type QuoteLine struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	QuoteID   uint `gorm:"not null;index" json:"quote_id"`
	ProductID uint `gorm:"index" json:"product_id"` // 0 for free-form lines

	// Snapshot fields preserve what was quoted regardless of later catalog edits.
	RefSnapshot       string  `gorm:"size:64;not null" json:"ref"`
	DescSnapshot      string  `gorm:"not null" json:"desc"`
	UnitSnapshot      string  `gorm:"size:32;not null" json:"unit"`
	Qty               float64 `gorm:"not null;default:1" json:"qty"`
	UnitPriceSnapshot float64 `gorm:"not null;default:0" json:"unit_price"`
	Discount          float64 `gorm:"not null;default:0" json:"discount"` // percent
	VAT               float64 `gorm:"not null;default:0" json:"vat"`      // percent
	LineSubtotal      float64 `gorm:"not null;default:0" json:"line_subtotal"`
	LineTotal         float64 `gorm:"not null;default:0" json:"line_total"`
}

package models

import (
	"github.com/google/uuid"
)

// CartLine persists one resolved line of a CartRecord. ItemID is unique
// within a cart.
type CartLine struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	ItemID         string    `gorm:"column:item_id;size:64;not null"`
	Name           string    `gorm:"column:name;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	LineTotalCents int       `gorm:"column:line_total_cents;not null"`
	ImageURL       string    `gorm:"column:image_url"`
	DietaryTags    string    `gorm:"column:dietary_tags"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord is the server-side cart a token resolves to. IdentityKey is set
// once an authenticated merge claims the cart; at most one record exists per
// identity key.
type CartRecord struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Token         string     `gorm:"column:token;size:64;not null;uniqueIndex"`
	IdentityKey   *string    `gorm:"column:identity_key;size:128;uniqueIndex"`
	SubtotalCents int        `gorm:"column:subtotal_cents;not null;default:0"`
	TaxCents      int        `gorm:"column:tax_cents;not null;default:0"`
	TotalCents    int        `gorm:"column:total_cents;not null;default:0"`
	Lines         []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

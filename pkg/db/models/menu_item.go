package models

import "time"

// MenuItem is the authoritative price/stock record a merge consults.
// StockQty is the remaining sellable quantity; MaxPerOrder of zero means no
// per-order cap.
type MenuItem struct {
	ID          string    `gorm:"column:id;size:64;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	PriceCents  int       `gorm:"column:price_cents;not null"`
	Available   bool      `gorm:"column:available;not null;default:true"`
	StockQty    int       `gorm:"column:stock_qty;not null;default:0"`
	MaxPerOrder int       `gorm:"column:max_per_order;not null;default:0"`
	ImageURL    string    `gorm:"column:image_url"`
	DietaryTags string    `gorm:"column:dietary_tags"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

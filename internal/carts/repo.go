package carts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbos-labs/rbos-backend/pkg/db/models"
)

// Repository persists cart records and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByToken(ctx context.Context, token string) (*models.CartRecord, error)
	FindByIdentity(ctx context.Context, identityKey string) (*models.CartRecord, error)
	Create(ctx context.Context, record *models.CartRecord) error
	Update(ctx context.Context, record *models.CartRecord) error
	ReplaceLines(ctx context.Context, cartID uuid.UUID, lines []models.CartLine) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	conn *gorm.DB
}

// NewRepository builds a cart repository over the shared connection.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{conn: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{conn: tx}
}

func (r *repository) FindByToken(ctx context.Context, token string) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.conn.WithContext(ctx).
		Preload("Lines").
		Where("token = ?", token).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByIdentity(ctx context.Context, identityKey string) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.conn.WithContext(ctx).
		Preload("Lines").
		Where("identity_key = ?", identityKey).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Create(ctx context.Context, record *models.CartRecord) error {
	return r.conn.WithContext(ctx).Create(record).Error
}

func (r *repository) Update(ctx context.Context, record *models.CartRecord) error {
	return r.conn.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"token":          record.Token,
			"identity_key":   record.IdentityKey,
			"subtotal_cents": record.SubtotalCents,
			"tax_cents":      record.TaxCents,
			"total_cents":    record.TotalCents,
		}).Error
}

func (r *repository) ReplaceLines(ctx context.Context, cartID uuid.UUID, lines []models.CartLine) error {
	tx := r.conn.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].CartID = cartID
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
	}
	return tx.Create(&lines).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn.WithContext(ctx).
		Select("Lines").
		Delete(&models.CartRecord{ID: id}).Error
}

package menu

import (
	"context"

	"gorm.io/gorm"

	"github.com/rbos-labs/rbos-backend/pkg/db/models"
)

// Repository exposes the read surface the cart merge needs plus the upsert
// used by dev seeding.
type Repository interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]models.MenuItem, error)
	List(ctx context.Context) ([]models.MenuItem, error)
	Upsert(ctx context.Context, item *models.MenuItem) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	conn *gorm.DB
}

// NewRepository builds a menu repository over the shared connection.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{conn: conn}
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) (map[string]models.MenuItem, error) {
	out := make(map[string]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.MenuItem
	if err := r.conn.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

func (r *repository) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.conn.WithContext(ctx).Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Upsert(ctx context.Context, item *models.MenuItem) error {
	return r.conn.WithContext(ctx).Save(item).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.conn.WithContext(ctx).Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

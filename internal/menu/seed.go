package menu

import (
	"context"

	"github.com/rbos-labs/rbos-backend/pkg/config"
	"github.com/rbos-labs/rbos-backend/pkg/db/models"
	"github.com/rbos-labs/rbos-backend/pkg/logger"
)

var devMenu = []models.MenuItem{
	{ID: "soda", Name: "Soda", PriceCents: 250, Available: true, StockQty: 200, DietaryTags: "vegan"},
	{ID: "salad", Name: "House Salad", PriceCents: 899, Available: true, StockQty: 40, DietaryTags: "vegetarian,gluten-free"},
	{ID: "pizza", Name: "Margherita Pizza", PriceCents: 1450, Available: true, StockQty: 25, MaxPerOrder: 5, DietaryTags: "vegetarian"},
	{ID: "burger", Name: "Smash Burger", PriceCents: 1275, Available: true, StockQty: 60, MaxPerOrder: 10},
	{ID: "tiramisu", Name: "Tiramisu", PriceCents: 750, Available: false, StockQty: 0},
}

// MaybeSeedDev inserts the sample menu when running in dev with seeding
// enabled and the table is empty.
func MaybeSeedDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, repo Repository) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.SeedMenu {
		return nil
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := range devMenu {
		item := devMenu[i]
		if err := repo.Upsert(ctx, &item); err != nil {
			return err
		}
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "items", len(devMenu)), "seeded dev menu")
	}
	return nil
}

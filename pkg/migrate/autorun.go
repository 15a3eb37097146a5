package migrate

import (
	"context"
	"fmt"

	"github.com/rbos-labs/rbos-backend/pkg/config"
	"github.com/rbos-labs/rbos-backend/pkg/db"
	"github.com/rbos-labs/rbos-backend/pkg/db/models"
	"github.com/rbos-labs/rbos-backend/pkg/logger"
)

// MaybeRunDev migrates the schema automatically when the app is running in
// dev mode and the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "running schema automigration (dev auto-run)")

	if err := client.DB().WithContext(ctx).AutoMigrate(
		&models.MenuItem{},
		&models.CartRecord{},
		&models.CartLine{},
	); err != nil {
		return fmt.Errorf("running automigration: %w", err)
	}

	logg.Info(ctx, "schema automigration completed")
	return nil
}

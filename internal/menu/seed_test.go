package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbos-labs/rbos-backend/pkg/config"
	"github.com/rbos-labs/rbos-backend/pkg/db/models"
)

type seedStubRepo struct {
	Repository
	count    int64
	upserted []string
}

func (r *seedStubRepo) Count(ctx context.Context) (int64, error) {
	return r.count, nil
}

func (r *seedStubRepo) Upsert(ctx context.Context, item *models.MenuItem) error {
	r.upserted = append(r.upserted, item.ID)
	return nil
}

func seedConfig(env string, seed bool) *config.Config {
	return &config.Config{
		App:          config.AppConfig{Env: env},
		FeatureFlags: config.FeatureFlagsConfig{SeedMenu: seed},
	}
}

func TestMaybeSeedDevSeedsEmptyMenu(t *testing.T) {
	repo := &seedStubRepo{}
	require.NoError(t, MaybeSeedDev(context.Background(), seedConfig(config.AppEnvDev, true), nil, repo))
	assert.Len(t, repo.upserted, len(devMenu))
	assert.Contains(t, repo.upserted, "soda")
}

func TestMaybeSeedDevSkipsNonEmptyMenu(t *testing.T) {
	repo := &seedStubRepo{count: 3}
	require.NoError(t, MaybeSeedDev(context.Background(), seedConfig(config.AppEnvDev, true), nil, repo))
	assert.Empty(t, repo.upserted)
}

func TestMaybeSeedDevSkipsOutsideDev(t *testing.T) {
	repo := &seedStubRepo{}
	require.NoError(t, MaybeSeedDev(context.Background(), seedConfig(config.AppEnvProd, true), nil, repo))
	assert.Empty(t, repo.upserted)

	repo = &seedStubRepo{}
	require.NoError(t, MaybeSeedDev(context.Background(), seedConfig(config.AppEnvDev, false), nil, repo))
	assert.Empty(t, repo.upserted)
}

package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		DBDriver:          "sqlite",
		SQLitePath:        filepath.Join(t.TempDir(), "foodgram.db"),
		DBMaxOpenConns:    1,
		DBMaxIdleConns:    1,
		DBConnMaxLifetime: time.Minute,
	}
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, sqliteConfig(t))
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Migrate(db), "migrating twice must be a no-op")

	for _, model := range database.Models() {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasTable(&models.RecipeTag{}))

	require.NoError(t, database.HealthCheck(ctx, db))
	require.NoError(t, database.Close(db))
	assert.Error(t, database.HealthCheck(ctx, db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DBDriver = "oracle"

	_, err := database.Open(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrateNil(t *testing.T) {
	assert.Error(t, database.Migrate(nil))
}

func TestPostgresSchema(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	ctx := context.Background()
	catalog := service.NewCatalogService(db)

	created, err := catalog.EnsureIngredient(ctx, &models.Ingredient{Name: "flour", Unit: "g"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = catalog.EnsureIngredient(ctx, &models.Ingredient{Name: "flour", Unit: "g"})
	require.NoError(t, err)
	assert.False(t, created)

	found, err := catalog.ListIngredients(ctx, "FL")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "flour", found[0].Name)

	require.NoError(t, database.HealthCheck(ctx, db))
}

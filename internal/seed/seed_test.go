package seed_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/seed"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestDefaultFixtures(t *testing.T) {
	ingredients, err := seed.DefaultIngredients()
	require.NoError(t, err)
	assert.NotEmpty(t, ingredients)
	for _, f := range ingredients {
		assert.NotEmpty(t, f.Name)
		assert.NotEmpty(t, f.MeasurementUnit)
	}

	tags, err := seed.DefaultTags()
	require.NoError(t, err)
	assert.NotEmpty(t, tags)
}

func TestLoadIngredientsRejectsGarbage(t *testing.T) {
	_, err := seed.LoadIngredients(strings.NewReader(`{"name": "not a list"}`))
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	seeder := seed.New(service.NewCatalogService(db), service.NewAuthService(db, "seed-secret", time.Hour), nil)
	ctx := context.Background()

	ingredients, err := seed.DefaultIngredients()
	require.NoError(t, err)
	tags, err := seed.DefaultTags()
	require.NoError(t, err)

	counts, err := seeder.Ingredients(ctx, ingredients)
	require.NoError(t, err)
	assert.Equal(t, seed.Counts{Created: len(ingredients)}, counts)

	counts, err = seeder.Ingredients(ctx, ingredients)
	require.NoError(t, err)
	assert.Equal(t, seed.Counts{Skipped: len(ingredients)}, counts)

	counts, err = seeder.Tags(ctx, tags)
	require.NoError(t, err)
	assert.Equal(t, len(tags), counts.Created)
	counts, err = seeder.Tags(ctx, tags)
	require.NoError(t, err)
	assert.Equal(t, len(tags), counts.Skipped)

	counts, err = seeder.Users(ctx, seed.DemoUsers, "demo-password")
	require.NoError(t, err)
	assert.Equal(t, len(seed.DemoUsers), counts.Created)
	counts, err = seeder.Users(ctx, seed.DemoUsers, "demo-password")
	require.NoError(t, err)
	assert.Equal(t, len(seed.DemoUsers), counts.Skipped)

	var n int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&n).Error)
	assert.Equal(t, int64(len(ingredients)), n)
}

func TestSeedTagsRejectsInvalidColor(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	seeder := seed.New(service.NewCatalogService(db), nil, nil)

	_, err := seeder.Tags(context.Background(), []seed.TagFixture{{Name: "Odd", Color: "blue", Slug: "odd"}})
	assert.ErrorIs(t, err, service.ErrInvalidTag)
}

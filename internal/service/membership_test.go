package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecipe(t *testing.T, f *fixture, author *models.User, name string) *models.Recipe {
	t.Helper()
	tag := testhelpers.CreateTestTag(t, f.db, "Tag "+name, "tag-"+uuid.NewString()[:8])
	ingredient := testhelpers.CreateTestIngredient(t, f.db, "Ingredient "+name, "g")
	return testhelpers.CreateTestRecipe(t, f.db, author, name, []*models.Tag{tag}, []types.IngredientAmount{
		{IngredientID: ingredient.ID, Amount: 1},
	})
}

func TestMembershipAddRemove(t *testing.T) {
	for _, kind := range []service.SetKind{service.SetFavorites, service.SetShoppingList} {
		t.Run(kind.String(), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			user := testhelpers.CreateTestUser(t, f.db, "member")
			recipe := seedRecipe(t, f, user, "Pancakes")

			summary, err := f.membership.Add(ctx, kind, user.ID, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, summary.ID)
			assert.Equal(t, "Pancakes", summary.Name)
			assert.Equal(t, recipe.Image, summary.Image)
			assert.Equal(t, recipe.CookingTime, summary.CookingTime)

			_, err = f.membership.Add(ctx, kind, user.ID, recipe.ID)
			assert.ErrorIs(t, err, service.ErrAlreadyInSet)

			count, err := f.membership.Count(ctx, kind, user.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			require.NoError(t, f.membership.Remove(ctx, kind, user.ID, recipe.ID))

			err = f.membership.Remove(ctx, kind, user.ID, recipe.ID)
			assert.ErrorIs(t, err, service.ErrNotInSet)
		})
	}
}

func TestMembershipSetsAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, f.db, "member")
	recipe := seedRecipe(t, f, user, "Stew")

	_, err := f.membership.Add(ctx, service.SetFavorites, user.ID, recipe.ID)
	require.NoError(t, err)
	_, err = f.membership.Add(ctx, service.SetShoppingList, user.ID, recipe.ID)
	require.NoError(t, err, "favorites must not block the shopping list")

	err = f.membership.Remove(ctx, service.SetFavorites, user.ID, recipe.ID)
	require.NoError(t, err)

	inCart, err := f.membership.Contains(ctx, service.SetShoppingList, user.ID, ids(recipe.ID))
	require.NoError(t, err)
	assert.True(t, inCart[recipe.ID])
}

func TestMembershipRemoveWithoutAdd(t *testing.T) {
	f := newFixture(t)
	user := testhelpers.CreateTestUser(t, f.db, "member")
	recipe := seedRecipe(t, f, user, "Salad")

	err := f.membership.Remove(context.Background(), service.SetFavorites, user.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotInSet)
}

func TestMembershipUnknownRecipe(t *testing.T) {
	f := newFixture(t)
	user := testhelpers.CreateTestUser(t, f.db, "member")

	_, err := f.membership.Add(context.Background(), service.SetFavorites, user.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)

	err = f.membership.Remove(context.Background(), service.SetShoppingList, user.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}

func TestMembershipUnknownSet(t *testing.T) {
	f := newFixture(t)
	user := testhelpers.CreateTestUser(t, f.db, "member")
	recipe := seedRecipe(t, f, user, "Toast")

	_, err := f.membership.Add(context.Background(), service.SetKind(99), user.ID, recipe.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrAlreadyInSet)
}

func TestMembershipConcurrentAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, f.db, "racer")
	recipe := seedRecipe(t, f, user, "Race")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.membership.Add(ctx, service.SetFavorites, user.ID, recipe.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, service.ErrAlreadyInSet):
			duplicates++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, duplicates)

	var rows int64
	require.NoError(t, f.db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestMembershipContains(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, f.db, "member")
	first := seedRecipe(t, f, user, "First")
	second := seedRecipe(t, f, user, "Second")

	_, err := f.membership.Add(ctx, service.SetFavorites, user.ID, second.ID)
	require.NoError(t, err)

	got, err := f.membership.Contains(ctx, service.SetFavorites, user.ID, ids(first.ID, second.ID))
	require.NoError(t, err)
	assert.False(t, got[first.ID])
	assert.True(t, got[second.ID])

	empty, err := f.membership.Contains(ctx, service.SetFavorites, user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

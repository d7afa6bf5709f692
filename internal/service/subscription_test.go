package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectFollowing(t *testing.T, f *fixture, userID uuid.UUID, opts service.FollowingOptions) []*types.FollowedAuthor {
	t.Helper()
	var out []*types.FollowedAuthor
	for author, err := range f.subs.ListFollowing(context.Background(), userID, opts) {
		require.NoError(t, err)
		out = append(out, author)
	}
	return out
}

func usernames(authors []*types.FollowedAuthor) []string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Username
	}
	return names
}

func TestFollowRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testhelpers.CreateTestUser(t, f.db, "alice")
	bob := testhelpers.CreateTestUser(t, f.db, "bob")

	_, err := f.subs.Follow(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, service.ErrSelfFollow)

	err = f.subs.Unfollow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrNotFollowing)

	followed, err := f.subs.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, followed.ID)
	assert.True(t, followed.IsSubscribed)

	_, err = f.subs.Follow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyFollowing)

	_, err = f.subs.Follow(ctx, bob.ID, alice.ID)
	require.NoError(t, err, "mutual follows are allowed")

	following, err := f.subs.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	require.NoError(t, f.subs.Unfollow(ctx, alice.ID, bob.ID))
	err = f.subs.Unfollow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrNotFollowing)

	following, err = f.subs.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestFollowUnknownAuthor(t *testing.T) {
	f := newFixture(t)
	alice := testhelpers.CreateTestUser(t, f.db, "alice")

	_, err := f.subs.Follow(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	err = f.subs.Unfollow(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestListFollowing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := testhelpers.CreateTestUser(t, f.db, "reader")
	tag := testhelpers.CreateTestTag(t, f.db, "Dinner", "dinner")
	salt := testhelpers.CreateTestIngredient(t, f.db, "Salt", "g")

	var authors []*models.User
	for i := 0; i < 5; i++ {
		author := testhelpers.CreateTestUser(t, f.db, fmt.Sprintf("author%d", i))
		for j := 0; j <= i; j++ {
			testhelpers.CreateTestRecipe(t, f.db, author, fmt.Sprintf("Recipe %d-%d", i, j), []*models.Tag{tag},
				[]types.IngredientAmount{{IngredientID: salt.ID, Amount: 1}})
		}
		authors = append(authors, author)
	}
	for _, author := range authors {
		_, err := f.subs.Follow(ctx, reader.ID, author.ID)
		require.NoError(t, err)
	}
	testhelpers.CreateTestUser(t, f.db, "stranger")

	all := collectFollowing(t, f, reader.ID, service.FollowingOptions{BatchSize: 2, RecipesLimit: 2})
	require.Len(t, all, 5)
	assert.Equal(t, []string{"author0", "author1", "author2", "author3", "author4"}, usernames(all))
	for i, author := range all {
		assert.Equal(t, int64(i+1), author.RecipesCount)
		assert.Len(t, author.Recipes, min(i+1, 2))
		assert.True(t, author.IsSubscribed)
	}

	unlimited := collectFollowing(t, f, reader.ID, service.FollowingOptions{})
	require.Len(t, unlimited, 5)
	assert.Len(t, unlimited[4].Recipes, 5)

	window := collectFollowing(t, f, reader.ID, service.FollowingOptions{BatchSize: 2, Offset: 1, Limit: 3})
	assert.Equal(t, []string{"author1", "author2", "author3"}, usernames(window))

	count, err := f.subs.CountFollowing(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestListFollowingIsRestartableAndStoppable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := testhelpers.CreateTestUser(t, f.db, "reader")
	for i := 0; i < 3; i++ {
		author := testhelpers.CreateTestUser(t, f.db, fmt.Sprintf("writer%d", i))
		_, err := f.subs.Follow(ctx, reader.ID, author.ID)
		require.NoError(t, err)
	}

	seq := f.subs.ListFollowing(ctx, reader.ID, service.FollowingOptions{BatchSize: 1})

	var first []string
	for author, err := range seq {
		require.NoError(t, err)
		first = append(first, author.Username)
		if len(first) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"writer0", "writer1"}, first)

	var second []string
	for author, err := range seq {
		require.NoError(t, err)
		second = append(second, author.Username)
	}
	assert.Equal(t, []string{"writer0", "writer1", "writer2"}, second)
}

func TestListFollowingEmpty(t *testing.T) {
	f := newFixture(t)
	loner := testhelpers.CreateTestUser(t, f.db, "loner")

	assert.Empty(t, collectFollowing(t, f, loner.ID, service.FollowingOptions{}))
}

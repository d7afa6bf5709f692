package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	known map[uuid.UUID]struct{}
	err   error
}

func newFakeCatalog(known ...uuid.UUID) *fakeCatalog {
	c := &fakeCatalog{known: map[uuid.UUID]struct{}{}}
	for _, id := range known {
		c.known[id] = struct{}{}
	}
	return c
}

func (c *fakeCatalog) lookup(ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		if _, ok := c.known[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (c *fakeCatalog) ExistingIngredientIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return c.lookup(ids)
}

func (c *fakeCatalog) ExistingTagIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return c.lookup(ids)
}

var (
	ingredientOne = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	ingredientTwo = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	unknownID     = uuid.MustParse("00000000-0000-0000-0000-0000000000ff")
)

func TestValidateIngredients(t *testing.T) {
	catalog := newFakeCatalog(ingredientOne, ingredientTwo)
	ctx := context.Background()

	tests := []struct {
		name    string
		pairs   []types.IngredientAmount
		wantErr error
	}{
		{
			name:  "valid",
			pairs: []types.IngredientAmount{{IngredientID: ingredientOne, Amount: 5}, {IngredientID: ingredientTwo, Amount: 1}},
		},
		{
			name:    "empty",
			pairs:   []types.IngredientAmount{},
			wantErr: service.ErrEmptyIngredientList,
		},
		{
			name:    "nil",
			pairs:   nil,
			wantErr: service.ErrEmptyIngredientList,
		},
		{
			name:    "duplicate",
			pairs:   []types.IngredientAmount{{IngredientID: ingredientOne, Amount: 5}, {IngredientID: ingredientOne, Amount: 3}},
			wantErr: service.ErrDuplicateIngredient,
		},
		{
			name:    "zero amount",
			pairs:   []types.IngredientAmount{{IngredientID: ingredientOne, Amount: 0}},
			wantErr: service.ErrNonPositiveQuantity,
		},
		{
			name:    "negative amount",
			pairs:   []types.IngredientAmount{{IngredientID: ingredientTwo, Amount: -4}},
			wantErr: service.ErrNonPositiveQuantity,
		},
		{
			name:    "unknown ingredient",
			pairs:   []types.IngredientAmount{{IngredientID: unknownID, Amount: 1}},
			wantErr: service.ErrUnknownIngredient,
		},
		{
			name:    "unknown wins over duplicate",
			pairs:   []types.IngredientAmount{{IngredientID: unknownID, Amount: 1}, {IngredientID: ingredientOne, Amount: 1}, {IngredientID: ingredientOne, Amount: 1}},
			wantErr: service.ErrUnknownIngredient,
		},
		{
			name:    "duplicate wins over non-positive",
			pairs:   []types.IngredientAmount{{IngredientID: ingredientOne, Amount: 0}, {IngredientID: ingredientOne, Amount: 2}},
			wantErr: service.ErrDuplicateIngredient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ValidateIngredients(ctx, catalog, tt.pairs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pairs, got)
		})
	}
}

func TestValidateIngredientsCatalogFailure(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("connection refused")}

	_, err := service.ValidateIngredients(context.Background(), catalog, []types.IngredientAmount{{IngredientID: ingredientOne, Amount: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NotErrorIs(t, err, service.ErrUnknownIngredient)
}

func TestValidateTags(t *testing.T) {
	catalog := newFakeCatalog(ingredientOne, ingredientTwo)
	ctx := context.Background()

	got, err := service.ValidateTags(ctx, catalog, ids(ingredientTwo, ingredientOne))
	require.NoError(t, err)
	assert.Equal(t, ids(ingredientTwo, ingredientOne), got)

	_, err = service.ValidateTags(ctx, catalog, nil)
	assert.ErrorIs(t, err, service.ErrEmptyTagList)

	_, err = service.ValidateTags(ctx, catalog, ids(ingredientOne, ingredientOne))
	assert.ErrorIs(t, err, service.ErrDuplicateTag)

	_, err = service.ValidateTags(ctx, catalog, ids(ingredientOne, unknownID))
	assert.ErrorIs(t, err, service.ErrUnknownTag)
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"chef", "chef.john", "a+b@c-d_e", strings.Repeat("x", 150)}
	for _, name := range valid {
		assert.NoError(t, service.ValidateUsername(name), name)
	}

	invalid := []string{"", "me", "Me", "ME", "with space", "semi;colon", "slash/", strings.Repeat("x", 151)}
	for _, name := range invalid {
		assert.ErrorIs(t, service.ValidateUsername(name), service.ErrInvalidUsername, name)
	}
}

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var (
	_ service.IRecipeService       = (*MockRecipeService)(nil)
	_ service.IShoppingListService = (*MockShoppingListService)(nil)
)

// MockRecipeService is a mock implementation of the RecipeService interface
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, userID, recipeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) Get(ctx context.Context, viewerID *uuid.UUID, recipeID uuid.UUID) (*types.RecipeResponse, error) {
	args := m.Called(ctx, viewerID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) List(ctx context.Context, viewerID *uuid.UUID, filter types.RecipeFilter) (*types.Page[types.RecipeResponse], error) {
	args := m.Called(ctx, viewerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Page[types.RecipeResponse]), args.Error(1)
}

// MockShoppingListService is a mock implementation of the ShoppingListService interface
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) BuildExport(ctx context.Context, userID uuid.UUID) (*types.TextExport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TextExport), args.Error(1)
}

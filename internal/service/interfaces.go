package service

import (
	"context"
	"iter"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for user reads
type IUserService interface {
	Get(ctx context.Context, viewerID *uuid.UUID, id uuid.UUID) (*types.UserResponse, error)
	List(ctx context.Context, viewerID *uuid.UUID, page, limit int) (*types.Page[types.UserResponse], error)
}

// ICatalogService defines the interface for tag and ingredient reads
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeResponse, error)
	Update(ctx context.Context, userID, recipeID uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error)
	Delete(ctx context.Context, userID, recipeID uuid.UUID) error
	Get(ctx context.Context, viewerID *uuid.UUID, recipeID uuid.UUID) (*types.RecipeResponse, error)
	List(ctx context.Context, viewerID *uuid.UUID, filter types.RecipeFilter) (*types.Page[types.RecipeResponse], error)
}

// IMembershipService defines the interface for favorites and shopping-list sets
type IMembershipService interface {
	Add(ctx context.Context, kind SetKind, userID, recipeID uuid.UUID) (*types.RecipeSummary, error)
	Remove(ctx context.Context, kind SetKind, userID, recipeID uuid.UUID) error
}

// ISubscriptionService defines the interface for the follow graph
type ISubscriptionService interface {
	Follow(ctx context.Context, followerID, authorID uuid.UUID) (*types.FollowedAuthor, error)
	Unfollow(ctx context.Context, followerID, authorID uuid.UUID) error
	ListFollowing(ctx context.Context, userID uuid.UUID, opts FollowingOptions) iter.Seq2[*types.FollowedAuthor, error]
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)
}

// IShoppingListService defines the interface for the shopping-list export
type IShoppingListService interface {
	BuildExport(ctx context.Context, userID uuid.UUID) (*types.TextExport, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IMembershipService   = (*MembershipService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
)

package service

import (
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	DefaultPageLimit = 6
	MaxPageLimit     = 100
)

// NormalizePage clamps page and limit to usable values and returns the
// matching row offset.
func NormalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, (page - 1) * limit
}

func toUserResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func toRecipeSummary(r *models.Recipe) types.RecipeSummary {
	return types.RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// recipeViewerState carries the per-viewer flags of a recipe read.
type recipeViewerState struct {
	favorited        bool
	inShoppingCart   bool
	authorSubscribed bool
}

func toRecipeResponse(r *models.Recipe, state recipeViewerState) types.RecipeResponse {
	resp := types.RecipeResponse{
		ID:               r.ID,
		Tags:             make([]types.TagResponse, 0, len(r.Tags)),
		Ingredients:      make([]types.RecipeIngredientResponse, 0, len(r.Ingredients)),
		IsFavorited:      state.favorited,
		IsInShoppingCart: state.inShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		CreatedAt:        r.CreatedAt,
	}
	if r.Author != nil {
		resp.Author = toUserResponse(r.Author, state.authorSubscribed)
	}
	for _, tag := range r.Tags {
		resp.Tags = append(resp.Tags, types.TagResponse{
			ID:    tag.ID,
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}
	for _, ri := range r.Ingredients {
		item := types.RecipeIngredientResponse{ID: ri.IngredientID, Amount: ri.Amount}
		if ri.Ingredient != nil {
			item.Name = ri.Ingredient.Name
			item.MeasurementUnit = ri.Ingredient.Unit
		}
		resp.Ingredients = append(resp.Ingredients, item)
	}
	return resp
}

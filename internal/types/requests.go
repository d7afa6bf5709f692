package types

import "github.com/google/uuid"

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

// LoginRequest represents the request body for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents the request body for changing the current user's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=150"`
}

// IngredientAmount is one (ingredient, amount) pair submitted with a recipe.
type IngredientAmount struct {
	IngredientID uuid.UUID `json:"id"`
	Amount       int       `json:"amount"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
// Image is a base64 data URI.
type CreateRecipeRequest struct {
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	Image       string             `json:"image"`
	CookingTime int                `json:"cooking_time"`
	Tags        []uuid.UUID        `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Nil fields are left unchanged; a present but empty list is rejected.
type UpdateRecipeRequest struct {
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	Image       *string            `json:"image"`
	CookingTime *int               `json:"cooking_time"`
	Tags        []uuid.UUID        `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// RecipeFilter narrows a recipe listing. The membership flags only apply
// when the viewer is authenticated.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	Page             int
	Limit            int
}

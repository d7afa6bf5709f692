package service

import "errors"

// Validation and state-conflict errors returned by the services. Callers
// match them with errors.Is; most are wrapped with extra context.
var (
	ErrEmptyIngredientList = errors.New("recipe must contain at least one ingredient")
	ErrUnknownIngredient   = errors.New("ingredient does not exist")
	ErrDuplicateIngredient = errors.New("ingredients must not repeat")
	ErrNonPositiveQuantity = errors.New("ingredient amount must be greater than zero")
	ErrEmptyTagList        = errors.New("recipe must have at least one tag")
	ErrDuplicateTag        = errors.New("tags must not repeat")
	ErrUnknownTag          = errors.New("tag does not exist")
	ErrInvalidRecipe       = errors.New("invalid recipe")
	ErrInvalidImage        = errors.New("invalid image")
	ErrInvalidTag          = errors.New("invalid tag")

	ErrSelfFollow       = errors.New("cannot subscribe to yourself")
	ErrAlreadyFollowing = errors.New("already subscribed to this author")
	ErrNotFollowing     = errors.New("not subscribed to this author")

	ErrAlreadyInSet      = errors.New("recipe is already in the list")
	ErrNotInSet          = errors.New("recipe is not in the list")
	ErrEmptyShoppingList = errors.New("shopping list is empty")

	ErrInvalidUsername    = errors.New("invalid username")
	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotRecipeAuthor    = errors.New("only the author can modify this recipe")
	ErrIngredientInUse    = errors.New("ingredient is used by existing recipes")

	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
)

package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every user created by CreateTestUser.
const TestPassword = "password123"

// CreateTestUser inserts a user with the given username and TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateTestTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: "#E26C2D", Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, Unit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// CreateTestRecipe inserts a recipe with its tag links and association rows
// directly, bypassing validation.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, ingredients []types.IngredientAmount) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix everything and cook.",
		Image:       "/media/recipes/" + uuid.NewString() + ".png",
		CookingTime: 15,
	}
	require.NoError(t, db.Omit("Tags", "Ingredients", "Author").Create(recipe).Error)

	for _, tag := range tags {
		require.NoError(t, db.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error)
	}
	for i, pair := range ingredients {
		require.NoError(t, db.Create(&models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: pair.IngredientID,
			Amount:       pair.Amount,
			Position:     i,
		}).Error)
	}
	return recipe
}

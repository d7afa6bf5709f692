package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrEmptyIngredientList, http.StatusBadRequest, "empty_ingredient_list"},
	{service.ErrUnknownIngredient, http.StatusBadRequest, "unknown_ingredient"},
	{service.ErrDuplicateIngredient, http.StatusBadRequest, "duplicate_ingredient"},
	{service.ErrNonPositiveQuantity, http.StatusBadRequest, "non_positive_quantity"},
	{service.ErrEmptyTagList, http.StatusBadRequest, "empty_tag_list"},
	{service.ErrDuplicateTag, http.StatusBadRequest, "duplicate_tag"},
	{service.ErrUnknownTag, http.StatusBadRequest, "unknown_tag"},
	{service.ErrInvalidRecipe, http.StatusBadRequest, "invalid_recipe"},
	{service.ErrInvalidImage, http.StatusBadRequest, "invalid_image"},
	{service.ErrInvalidTag, http.StatusBadRequest, "invalid_tag"},
	{service.ErrSelfFollow, http.StatusBadRequest, "self_follow"},
	{service.ErrAlreadyFollowing, http.StatusBadRequest, "already_following"},
	{service.ErrNotFollowing, http.StatusBadRequest, "not_following"},
	{service.ErrAlreadyInSet, http.StatusBadRequest, "already_in_set"},
	{service.ErrNotInSet, http.StatusBadRequest, "not_in_set"},
	{service.ErrEmptyShoppingList, http.StatusBadRequest, "empty_shopping_list"},
	{service.ErrInvalidUsername, http.StatusBadRequest, "invalid_username"},
	{service.ErrUserExists, http.StatusConflict, "user_exists"},
	{service.ErrIngredientInUse, http.StatusConflict, "ingredient_in_use"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{service.ErrNotRecipeAuthor, http.StatusForbidden, "not_recipe_author"},
	{service.ErrRecipeNotFound, http.StatusNotFound, "recipe_not_found"},
	{service.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{service.ErrTagNotFound, http.StatusNotFound, "tag_not_found"},
	{service.ErrIngredientNotFound, http.StatusNotFound, "ingredient_not_found"},
}

// respondError writes the JSON error for err. Unknown errors are logged and
// reported as a bare 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, middleware.ErrorResponse{Error: err.Error(), Code: m.code})
			return
		}
	}

	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{
		Error: "internal server error",
		Code:  "internal_error",
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: message, Code: "invalid_request"})
}

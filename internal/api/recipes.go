package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ListRecipes supports ?author=, repeated ?tags=<slug>, ?is_favorited=1,
// ?is_in_shopping_cart=1, ?page= and ?limit=.
func (h *Handler) ListRecipes(c *gin.Context) {
	var filter types.RecipeFilter
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid author")
			return
		}
		filter.AuthorID = &authorID
	}
	filter.TagSlugs = c.QueryArray("tags")
	filter.IsFavorited = queryBool(c, "is_favorited")
	filter.IsInShoppingCart = queryBool(c, "is_in_shopping_cart")

	var ok bool
	if filter.Page, ok = queryInt(c, "page"); !ok {
		return
	}
	if filter.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}

	recipes, err := h.services.Recipes.List(c.Request.Context(), middleware.ViewerID(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.services.Recipes.Get(c.Request.Context(), middleware.ViewerID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *Handler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	recipe, err := h.services.Recipes.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *Handler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	recipe, err := h.services.Recipes.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *Handler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.services.Recipes.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addToSet(kind service.SetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}

		summary, err := h.services.Membership.Add(c.Request.Context(), kind, userID, id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, summary)
	}
}

func (h *Handler) removeFromSet(kind service.SetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}

		if err := h.services.Membership.Remove(c.Request.Context(), kind, userID, id); err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated shopping list as a text attachment.
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	export, err := h.services.ShoppingList.BuildExport(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	c.Data(http.StatusOK, export.ContentType+"; charset=utf-8", export.Body)
}

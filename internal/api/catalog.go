package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IngredientResponse is the catalog view of an ingredient
type IngredientResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.services.Catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]types.TagResponse, len(tags))
	for i := range tags {
		out[i] = tagResponse(&tags[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tag, err := h.services.Catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tagResponse(tag))
}

// ListIngredients returns the catalog, narrowed by ?name= prefix.
func (h *Handler) ListIngredients(c *gin.Context) {
	ingredients, err := h.services.Catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]IngredientResponse, len(ingredients))
	for i := range ingredients {
		out[i] = ingredientResponse(&ingredients[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ingredient, err := h.services.Catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ingredientResponse(ingredient))
}

func tagResponse(t *models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientResponse(i *models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID.String(), Name: i.Name, MeasurementUnit: i.Unit}
}

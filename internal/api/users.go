package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func (h *Handler) ListUsers(c *gin.Context) {
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	users, err := h.services.Users.List(c.Request.Context(), middleware.ViewerID(c), page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.services.Users.Get(c.Request.Context(), middleware.ViewerID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) CurrentUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.services.Users.Get(c.Request.Context(), &userID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListSubscriptions pages through the authors the caller follows.
// recipes_limit caps the recipes embedded per author; 0 or absent means all.
func (h *Handler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	recipesLimit, ok := queryInt(c, "recipes_limit")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	total, err := h.services.Subscriptions.CountFollowing(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	page, limit, offset := service.NormalizePage(page, limit)
	results := make([]types.FollowedAuthor, 0, limit)
	opts := service.FollowingOptions{
		BatchSize:    limit,
		RecipesLimit: recipesLimit,
		Offset:       offset,
		Limit:        limit,
	}
	for author, err := range h.services.Subscriptions.ListFollowing(ctx, userID, opts) {
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		results = append(results, *author)
	}

	c.JSON(http.StatusOK, types.Page[types.FollowedAuthor]{
		Count:   total,
		Page:    page,
		Limit:   limit,
		Results: results,
	})
}

func (h *Handler) Subscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c)
	if !ok {
		return
	}

	author, err := h.services.Subscriptions.Follow(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.services.Subscriptions.Unfollow(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

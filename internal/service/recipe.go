package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeService owns recipes together with their tag links and ingredient
// association rows.
type RecipeService struct {
	db         *gorm.DB
	catalog    *CatalogService
	membership *MembershipService
	images     ImageStore
	metrics    *Metrics
	logger     *zap.Logger
}

func NewRecipeService(db *gorm.DB, membership *MembershipService, images ImageStore, metrics *Metrics, logger *zap.Logger) *RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeService{
		db:         db,
		catalog:    NewCatalogService(db),
		membership: membership,
		images:     images,
		metrics:    metrics,
		logger:     logger,
	}
}

// Create validates and stores a new recipe authored by authorID.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeResponse, error) {
	if err := validateRecipeName(req.Name); err != nil {
		return nil, err
	}
	if err := validateRecipeText(req.Text); err != nil {
		return nil, err
	}
	if err := validateCookingTime(req.CookingTime); err != nil {
		return nil, err
	}
	tagIDs, err := ValidateTags(ctx, s.catalog, req.Tags)
	if err != nil {
		return nil, err
	}
	pairs, err := ValidateIngredients(ctx, s.catalog, req.Ingredients)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Image) == "" {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidImage)
	}

	imageURL, err := storeRecipeImage(ctx, s.images, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       imageURL,
		CookingTime: req.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		if err := insertRecipeTags(tx, recipe.ID, tagIDs); err != nil {
			return err
		}
		return insertRecipeIngredients(tx, recipe.ID, pairs)
	})
	if err != nil {
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	s.metrics.recipeCreated()
	s.logger.Info("recipe created",
		zap.String("recipe_id", recipe.ID.String()),
		zap.String("author_id", authorID.String()))

	return s.Get(ctx, &authorID, recipe.ID)
}

// Update applies a partial update. Only the author may update a recipe;
// tags and ingredients, when present, replace the previous sets wholesale.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error) {
	recipe, err := s.loadOwned(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if err := validateRecipeName(*req.Name); err != nil {
			return nil, err
		}
		updates["name"] = *req.Name
	}
	if req.Text != nil {
		if err := validateRecipeText(*req.Text); err != nil {
			return nil, err
		}
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		if err := validateCookingTime(*req.CookingTime); err != nil {
			return nil, err
		}
		updates["cooking_time"] = *req.CookingTime
	}

	var tagIDs []uuid.UUID
	if req.Tags != nil {
		if tagIDs, err = ValidateTags(ctx, s.catalog, req.Tags); err != nil {
			return nil, err
		}
	}
	var pairs []types.IngredientAmount
	if req.Ingredients != nil {
		if pairs, err = ValidateIngredients(ctx, s.catalog, req.Ingredients); err != nil {
			return nil, err
		}
	}

	var newImage string
	if req.Image != nil {
		if newImage, err = storeRecipeImage(ctx, s.images, *req.Image); err != nil {
			return nil, err
		}
		updates["image"] = newImage
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update recipe: %w", err)
			}
		}
		if tagIDs != nil {
			if err := replaceRecipeTags(tx, recipeID, tagIDs); err != nil {
				return err
			}
		}
		if pairs != nil {
			if err := replaceRecipeIngredients(tx, recipeID, pairs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if newImage != "" {
			s.discardImage(ctx, newImage)
		}
		return nil, err
	}
	if newImage != "" {
		s.discardImage(ctx, recipe.Image)
	}

	return s.Get(ctx, &userID, recipeID)
}

// ReplaceIngredients swaps the recipe's association rows for pairs in a
// single transaction.
func (s *RecipeService) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, pairs []types.IngredientAmount) error {
	pairs, err := ValidateIngredients(ctx, s.catalog, pairs)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipe(tx, recipeID); err != nil {
			return err
		}
		return replaceRecipeIngredients(tx, recipeID, pairs)
	})
}

// ReplaceTags swaps the recipe's tag links for tagIDs in a single transaction.
func (s *RecipeService) ReplaceTags(ctx context.Context, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	tagIDs, err := ValidateTags(ctx, s.catalog, tagIDs)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipe(tx, recipeID); err != nil {
			return err
		}
		return replaceRecipeTags(tx, recipeID, tagIDs)
	})
}

// Delete removes a recipe with its associations, tag links and every
// favorite and shopping-list row pointing at it.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	recipe, err := s.loadOwned(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dependents := []interface{}{
			&models.RecipeIngredient{},
			&models.RecipeTag{},
			&models.Favorite{},
			&models.ShoppingListEntry{},
		}
		for _, model := range dependents {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete recipe dependents: %w", err)
			}
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, recipe.Image)
	s.logger.Info("recipe deleted", zap.String("recipe_id", recipeID.String()))
	return nil
}

// Get returns a recipe as seen by viewerID, which may be nil for anonymous reads.
func (s *RecipeService) Get(ctx context.Context, viewerID *uuid.UUID, recipeID uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := withRecipeDetails(s.db.WithContext(ctx)).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	responses, err := s.present(ctx, viewerID, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// List returns a page of recipes, newest first. The favorite and shopping
// cart filters are ignored for anonymous viewers.
func (s *RecipeService) List(ctx context.Context, viewerID *uuid.UUID, filter types.RecipeFilter) (*types.Page[types.RecipeResponse], error) {
	page, limit, offset := NormalizePage(filter.Page, filter.Limit)

	countQuery, err := s.filtered(ctx, viewerID, filter)
	if err != nil {
		return nil, err
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	findQuery, err := s.filtered(ctx, viewerID, filter)
	if err != nil {
		return nil, err
	}
	var recipes []models.Recipe
	err = withRecipeDetails(findQuery).
		Order("recipes.created_at DESC").
		Order("recipes.id").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	results, err := s.present(ctx, viewerID, recipes)
	if err != nil {
		return nil, err
	}
	return &types.Page[types.RecipeResponse]{
		Count:   total,
		Page:    page,
		Limit:   limit,
		Results: results,
	}, nil
}

func (s *RecipeService) filtered(ctx context.Context, viewerID *uuid.UUID, filter types.RecipeFilter) (*gorm.DB, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if viewerID != nil {
		sets := []struct {
			enabled bool
			kind    SetKind
		}{
			{filter.IsFavorited, SetFavorites},
			{filter.IsInShoppingCart, SetShoppingList},
		}
		for _, set := range sets {
			if !set.enabled {
				continue
			}
			members, err := memberSubquery(s.db, set.kind, *viewerID)
			if err != nil {
				return nil, err
			}
			query = query.Where("recipes.id IN (?)", members)
		}
	}
	return query, nil
}

// present converts recipes to responses annotated for the viewer.
func (s *RecipeService) present(ctx context.Context, viewerID *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	var (
		favorites = map[uuid.UUID]bool{}
		cart      = map[uuid.UUID]bool{}
		followed  = map[uuid.UUID]bool{}
	)
	if viewerID != nil && len(recipes) > 0 {
		ids := make([]uuid.UUID, len(recipes))
		authorIDs := make([]uuid.UUID, len(recipes))
		for i := range recipes {
			ids[i] = recipes[i].ID
			authorIDs[i] = recipes[i].AuthorID
		}

		var err error
		if favorites, err = s.membership.Contains(ctx, SetFavorites, *viewerID, ids); err != nil {
			return nil, err
		}
		if cart, err = s.membership.Contains(ctx, SetShoppingList, *viewerID, ids); err != nil {
			return nil, err
		}
		if followed, err = followedAmong(ctx, s.db, *viewerID, authorIDs); err != nil {
			return nil, err
		}
	}

	responses := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		responses = append(responses, toRecipeResponse(r, recipeViewerState{
			favorited:        favorites[r.ID],
			inShoppingCart:   cart[r.ID],
			authorSubscribed: followed[r.AuthorID],
		}))
	}
	return responses, nil
}

func (s *RecipeService) loadOwned(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe.AuthorID != userID {
		return nil, ErrNotRecipeAuthor
	}
	return &recipe, nil
}

func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if url == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete recipe image", zap.String("image", url), zap.Error(err))
	}
}

func withRecipeDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position")
		}).
		Preload("Ingredients.Ingredient")
}

func ensureRecipe(tx *gorm.DB, recipeID uuid.UUID) error {
	var n int64
	if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to get recipe: %w", err)
	}
	if n == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func insertRecipeTags(tx *gorm.DB, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	links := make([]models.RecipeTag, len(tagIDs))
	for i, id := range tagIDs {
		links[i] = models.RecipeTag{RecipeID: recipeID, TagID: id}
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link tags: %w", err)
	}
	return nil
}

func insertRecipeIngredients(tx *gorm.DB, recipeID uuid.UUID, pairs []types.IngredientAmount) error {
	rows := make([]models.RecipeIngredient, len(pairs))
	for i, p := range pairs {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: p.IngredientID,
			Amount:       p.Amount,
			Position:     i,
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to store recipe ingredients: %w", err)
	}
	return nil
}

func replaceRecipeTags(tx *gorm.DB, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return fmt.Errorf("failed to unlink tags: %w", err)
	}
	return insertRecipeTags(tx, recipeID, tagIDs)
}

func replaceRecipeIngredients(tx *gorm.DB, recipeID uuid.UUID, pairs []types.IngredientAmount) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to remove recipe ingredients: %w", err)
	}
	return insertRecipeIngredients(tx, recipeID, pairs)
}

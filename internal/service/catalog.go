package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService serves the tag and ingredient reference data.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// EnsureTag inserts a tag unless one with the same slug already exists.
// It reports whether a row was created.
func (s *CatalogService) EnsureTag(ctx context.Context, tag *models.Tag) (bool, error) {
	if err := validateTag(tag.Name, tag.Color, tag.Slug); err != nil {
		return false, err
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(tag)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create tag %q: %w", tag.Slug, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListIngredients returns the catalog ordered by name. A non-empty prefix
// restricts it to names starting with that prefix, ignoring case.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name").Order("unit")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ingredient, nil
}

// EnsureIngredient inserts an ingredient unless the same (name, unit)
// pair already exists. It reports whether a row was created.
func (s *CatalogService) EnsureIngredient(ctx context.Context, ingredient *models.Ingredient) (bool, error) {
	if strings.TrimSpace(ingredient.Name) == "" || strings.TrimSpace(ingredient.Unit) == "" {
		return false, fmt.Errorf("ingredient name and unit are required")
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}, {Name: "unit"}}, DoNothing: true}).
		Create(ingredient)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create ingredient %q: %w", ingredient.Name, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteIngredient removes an ingredient that no recipe references.
func (s *CatalogService) DeleteIngredient(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIngredientNotFound
			}
			return fmt.Errorf("failed to get ingredient: %w", err)
		}

		var refs int64
		if err := tx.Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count ingredient references: %w", err)
		}
		if refs > 0 {
			return ErrIngredientInUse
		}

		if err := tx.Delete(&ingredient).Error; err != nil {
			return fmt.Errorf("failed to delete ingredient: %w", err)
		}
		return nil
	})
}

func (s *CatalogService) ExistingIngredientIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return existingIDs(ctx, s.db, &models.Ingredient{}, ids)
}

func (s *CatalogService) ExistingTagIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return existingIDs(ctx, s.db, &models.Tag{}, ids)
}

func existingIDs(ctx context.Context, db *gorm.DB, model interface{}, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	found := make(map[uuid.UUID]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var rows []uuid.UUID
	if err := db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &rows).Error; err != nil {
		return nil, err
	}
	for _, id := range rows {
		found[id] = struct{}{}
	}
	return found, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

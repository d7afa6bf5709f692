package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetKind selects which per-user recipe set a membership operation targets.
type SetKind int

const (
	SetFavorites SetKind = iota + 1
	SetShoppingList
)

func (k SetKind) String() string {
	switch k {
	case SetFavorites:
		return "favorites"
	case SetShoppingList:
		return "shopping_list"
	default:
		return fmt.Sprintf("set(%d)", int(k))
	}
}

// newRow returns a fresh row of the table backing the set.
func (k SetKind) newRow(userID, recipeID uuid.UUID) (interface{}, error) {
	switch k {
	case SetFavorites:
		return &models.Favorite{UserID: userID, RecipeID: recipeID}, nil
	case SetShoppingList:
		return &models.ShoppingListEntry{UserID: userID, RecipeID: recipeID}, nil
	default:
		return nil, fmt.Errorf("unknown recipe set %d", int(k))
	}
}

func (k SetKind) model() (interface{}, error) {
	return k.newRow(uuid.Nil, uuid.Nil)
}

// MembershipService manages the favorites and shopping-list sets. Both sets
// share one contract; uniqueness of (user, recipe) is enforced by the
// table's unique index.
type MembershipService struct {
	db      *gorm.DB
	metrics *Metrics
	logger  *zap.Logger
}

func NewMembershipService(db *gorm.DB, metrics *Metrics, logger *zap.Logger) *MembershipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembershipService{db: db, metrics: metrics, logger: logger}
}

// Add puts a recipe into the user's set and returns its summary. A pair
// that is already present, including one inserted concurrently, yields
// ErrAlreadyInSet.
func (s *MembershipService) Add(ctx context.Context, kind SetKind, userID, recipeID uuid.UUID) (*types.RecipeSummary, error) {
	row, err := kind.newRow(userID, recipeID)
	if err != nil {
		return nil, err
	}

	var recipe models.Recipe
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("failed to get recipe: %w", err)
		}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if result.Error != nil {
			return fmt.Errorf("failed to add recipe to %s: %w", kind, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyInSet
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.membershipChanged(kind, "add")
	s.logger.Debug("recipe added to set",
		zap.Stringer("set", kind),
		zap.String("user_id", userID.String()),
		zap.String("recipe_id", recipeID.String()))

	summary := toRecipeSummary(&recipe)
	return &summary, nil
}

// Remove takes a recipe out of the user's set.
func (s *MembershipService) Remove(ctx context.Context, kind SetKind, userID, recipeID uuid.UUID) error {
	model, err := kind.model()
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	var recipes int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&recipes).Error; err != nil {
		return fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipes == 0 {
		return ErrRecipeNotFound
	}

	result := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to remove recipe from %s: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotInSet
	}

	s.metrics.membershipChanged(kind, "remove")
	return nil
}

// Contains reports which of recipeIDs are in the user's set.
func (s *MembershipService) Contains(ctx context.Context, kind SetKind, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	model, err := kind.model()
	if err != nil {
		return nil, err
	}

	found := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return found, nil
	}

	var ids []uuid.UUID
	err = s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", kind, err)
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// Count returns the number of recipes in the user's set.
func (s *MembershipService) Count(ctx context.Context, kind SetKind, userID uuid.UUID) (int64, error) {
	model, err := kind.model()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return n, nil
}

// memberSubquery selects the recipe ids in the user's set, for use in an
// IN filter.
func memberSubquery(db *gorm.DB, kind SetKind, userID uuid.UUID) (*gorm.DB, error) {
	model, err := kind.model()
	if err != nil {
		return nil, err
	}
	return db.Model(model).Select("recipe_id").Where("user_id = ?", userID), nil
}

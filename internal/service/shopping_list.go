package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IngredientLine is one association row of a shopping-list recipe.
type IngredientLine struct {
	Name   string
	Unit   string
	Amount int64
}

// IngredientTotal is the summed amount of one (name, unit) group.
type IngredientTotal struct {
	Name  string
	Unit  string
	Total int64
}

type ingredientKey struct {
	name string
	unit string
}

// AggregateIngredients groups lines by exact (name, unit) and sums their
// amounts. Groups keep the order in which their key was first seen.
func AggregateIngredients(lines []IngredientLine) []IngredientTotal {
	index := make(map[ingredientKey]int, len(lines))
	totals := make([]IngredientTotal, 0, len(lines))
	for _, line := range lines {
		key := ingredientKey{name: line.Name, unit: line.Unit}
		if i, ok := index[key]; ok {
			totals[i].Total += line.Amount
			continue
		}
		index[key] = len(totals)
		totals = append(totals, IngredientTotal{Name: line.Name, Unit: line.Unit, Total: line.Amount})
	}
	return totals
}

// RenderShoppingList writes one "<name> - <total> <unit>" line per group.
func RenderShoppingList(totals []IngredientTotal) []byte {
	var buf bytes.Buffer
	for _, t := range totals {
		buf.WriteString(t.Name)
		buf.WriteString(" - ")
		buf.WriteString(strconv.FormatInt(t.Total, 10))
		buf.WriteByte(' ')
		buf.WriteString(t.Unit)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ShoppingListFilename is the suggested download name for a user's list.
func ShoppingListFilename(username string) string {
	return username + "_shoppinglist.txt"
}

// ShoppingListService builds the downloadable shopping list.
type ShoppingListService struct {
	db      *gorm.DB
	metrics *Metrics
	logger  *zap.Logger
}

func NewShoppingListService(db *gorm.DB, metrics *Metrics, logger *zap.Logger) *ShoppingListService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShoppingListService{db: db, metrics: metrics, logger: logger}
}

// Lines returns the ingredient rows of every recipe in the user's shopping
// list, ordered by when the recipe was added and then by the position of
// the ingredient inside the recipe.
func (s *ShoppingListService) Lines(ctx context.Context, userID uuid.UUID) ([]IngredientLine, error) {
	var lines []IngredientLine
	err := s.db.WithContext(ctx).
		Table("shopping_list_entries AS e").
		Select("i.name AS name, i.unit AS unit, ri.amount AS amount").
		Joins("JOIN recipe_ingredients AS ri ON ri.recipe_id = e.recipe_id").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Where("e.user_id = ?", userID).
		Order("e.created_at").
		Order("e.recipe_id").
		Order("ri.position").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read shopping list: %w", err)
	}
	return lines, nil
}

// BuildExport aggregates the user's shopping list into a text payload.
// An empty list yields ErrEmptyShoppingList.
func (s *ShoppingListService) BuildExport(ctx context.Context, userID uuid.UUID) (*types.TextExport, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	lines, err := s.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyShoppingList
	}

	totals := AggregateIngredients(lines)
	s.metrics.shoppingListExported()
	s.logger.Debug("shopping list exported",
		zap.String("user_id", userID.String()),
		zap.Int("rows", len(lines)),
		zap.Int("groups", len(totals)))

	return &types.TextExport{
		Filename:    ShoppingListFilename(user.Username),
		ContentType: "text/plain",
		Body:        RenderShoppingList(totals),
	}, nil
}

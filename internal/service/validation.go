package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IngredientCatalog resolves ingredient identities.
type IngredientCatalog interface {
	ExistingIngredientIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// TagCatalog resolves tag identities.
type TagCatalog interface {
	ExistingTagIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

const (
	maxRecipeNameLength = 100
	maxUsernameLength   = 150
	maxTagNameLength    = 100
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	colorPattern    = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ValidateIngredients checks a submitted ingredient list and returns it
// unchanged when it is acceptable. The checks run in a fixed order: empty
// list, unknown ingredient, duplicate ingredient, non-positive amount.
func ValidateIngredients(ctx context.Context, catalog IngredientCatalog, pairs []types.IngredientAmount) ([]types.IngredientAmount, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyIngredientList
	}

	ids := make([]uuid.UUID, 0, len(pairs))
	for _, p := range pairs {
		ids = append(ids, p.IngredientID)
	}
	known, err := catalog.ExistingIngredientIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ingredients: %w", err)
	}
	for _, p := range pairs {
		if _, ok := known[p.IngredientID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownIngredient, p.IngredientID)
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(pairs))
	for _, p := range pairs {
		if _, dup := seen[p.IngredientID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIngredient, p.IngredientID)
		}
		seen[p.IngredientID] = struct{}{}
	}

	for _, p := range pairs {
		if p.Amount <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrNonPositiveQuantity, p.IngredientID)
		}
	}

	return pairs, nil
}

// ValidateTags checks a submitted tag list: empty, duplicate, then unknown.
func ValidateTags(ctx context.Context, catalog TagCatalog, tagIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(tagIDs) == 0 {
		return nil, ErrEmptyTagList
	}

	seen := make(map[uuid.UUID]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, id)
		}
		seen[id] = struct{}{}
	}

	known, err := catalog.ExistingTagIDs(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	for _, id := range tagIDs {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTag, id)
		}
	}

	return tagIDs, nil
}

// ValidateUsername rejects the reserved name "me" and anything outside
// letters, digits and @/./+/-/_.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidUsername)
	case strings.EqualFold(username, "me"):
		return fmt.Errorf("%w: %q is reserved", ErrInvalidUsername, username)
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return fmt.Errorf("%w: must be at most %d characters", ErrInvalidUsername, maxUsernameLength)
	case !usernamePattern.MatchString(username):
		return fmt.Errorf("%w: only letters, digits and @/./+/-/_ are allowed", ErrInvalidUsername)
	}
	return nil
}

func validateRecipeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecipe)
	}
	if utf8.RuneCountInString(name) > maxRecipeNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidRecipe, maxRecipeNameLength)
	}
	return nil
}

func validateRecipeText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidRecipe)
	}
	return nil
}

func validateCookingTime(minutes int) error {
	if minutes < 1 {
		return fmt.Errorf("%w: cooking time must be at least 1 minute", ErrInvalidRecipe)
	}
	return nil
}

func validateTag(name, color, slug string) error {
	switch {
	case strings.TrimSpace(name) == "" || utf8.RuneCountInString(name) > maxTagNameLength:
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidTag, maxTagNameLength)
	case !colorPattern.MatchString(color):
		return fmt.Errorf("%w: color %q is not a hex color", ErrInvalidTag, color)
	case !slugPattern.MatchString(slug):
		return fmt.Errorf("%w: slug %q is not a valid slug", ErrInvalidTag, slug)
	}
	return nil
}

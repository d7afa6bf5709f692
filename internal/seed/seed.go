// Package seed loads reference data and demo accounts into a fresh database.
// Every step is idempotent, so running it twice creates nothing new.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

//go:embed data/ingredients.json
var defaultIngredients []byte

//go:embed data/tags.json
var defaultTags []byte

type IngredientFixture struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type TagFixture struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type UserFixture struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
}

// DemoUsers are created by the seed command when asked for demo accounts.
var DemoUsers = []UserFixture{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
}

// Catalog is the part of the catalog service the seeder writes through.
type Catalog interface {
	EnsureIngredient(ctx context.Context, ingredient *models.Ingredient) (bool, error)
	EnsureTag(ctx context.Context, tag *models.Tag) (bool, error)
}

// Registrar creates user accounts.
type Registrar interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
}

// Counts reports how many fixtures were inserted and how many already existed.
type Counts struct {
	Created int
	Skipped int
}

type Seeder struct {
	catalog Catalog
	users   Registrar
	logger  *zap.Logger
}

func New(catalog Catalog, users Registrar, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{catalog: catalog, users: users, logger: logger}
}

func LoadIngredients(r io.Reader) ([]IngredientFixture, error) {
	var fixtures []IngredientFixture
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	return fixtures, nil
}

func LoadTags(r io.Reader) ([]TagFixture, error) {
	var fixtures []TagFixture
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return fixtures, nil
}

// DefaultIngredients returns the ingredient catalog bundled with the binary.
func DefaultIngredients() ([]IngredientFixture, error) {
	return LoadIngredients(bytes.NewReader(defaultIngredients))
}

// DefaultTags returns the tag set bundled with the binary.
func DefaultTags() ([]TagFixture, error) {
	return LoadTags(bytes.NewReader(defaultTags))
}

func (s *Seeder) Ingredients(ctx context.Context, fixtures []IngredientFixture) (Counts, error) {
	var counts Counts
	for _, f := range fixtures {
		created, err := s.catalog.EnsureIngredient(ctx, &models.Ingredient{Name: f.Name, Unit: f.MeasurementUnit})
		if err != nil {
			return counts, err
		}
		counts.record(created)
	}
	s.logger.Info("ingredients seeded", zap.Int("created", counts.Created), zap.Int("skipped", counts.Skipped))
	return counts, nil
}

func (s *Seeder) Tags(ctx context.Context, fixtures []TagFixture) (Counts, error) {
	var counts Counts
	for _, f := range fixtures {
		created, err := s.catalog.EnsureTag(ctx, &models.Tag{Name: f.Name, Color: f.Color, Slug: f.Slug})
		if err != nil {
			return counts, err
		}
		counts.record(created)
	}
	s.logger.Info("tags seeded", zap.Int("created", counts.Created), zap.Int("skipped", counts.Skipped))
	return counts, nil
}

// Users registers each fixture with the shared password. Accounts that
// already exist are skipped.
func (s *Seeder) Users(ctx context.Context, fixtures []UserFixture, password string) (Counts, error) {
	var counts Counts
	for _, f := range fixtures {
		_, err := s.users.Register(ctx, &types.RegisterRequest{
			Email:     f.Email,
			Username:  f.Username,
			FirstName: f.FirstName,
			LastName:  f.LastName,
			Password:  password,
		})
		switch {
		case errors.Is(err, service.ErrUserExists):
			counts.Skipped++
		case err != nil:
			return counts, fmt.Errorf("failed to seed user %s: %w", f.Username, err)
		default:
			counts.Created++
		}
	}
	s.logger.Info("users seeded", zap.Int("created", counts.Created), zap.Int("skipped", counts.Skipped))
	return counts, nil
}

func (c *Counts) record(created bool) {
	if created {
		c.Created++
	} else {
		c.Skipped++
	}
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get returns a user; IsSubscribed reflects whether viewerID follows them.
func (s *UserService) Get(ctx context.Context, viewerID *uuid.UUID, id uuid.UUID) (*types.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	users, err := s.present(ctx, viewerID, []models.User{user})
	if err != nil {
		return nil, err
	}
	return &users[0], nil
}

// List returns a page of users ordered by username.
func (s *UserService) List(ctx context.Context, viewerID *uuid.UUID, page, limit int) (*types.Page[types.UserResponse], error) {
	page, limit, offset := NormalizePage(page, limit)
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := db.Order("username").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	results, err := s.present(ctx, viewerID, users)
	if err != nil {
		return nil, err
	}
	return &types.Page[types.UserResponse]{Count: total, Page: page, Limit: limit, Results: results}, nil
}

func (s *UserService) present(ctx context.Context, viewerID *uuid.UUID, users []models.User) ([]types.UserResponse, error) {
	followed := map[uuid.UUID]bool{}
	if viewerID != nil && len(users) > 0 {
		ids := make([]uuid.UUID, len(users))
		for i := range users {
			ids[i] = users[i].ID
		}
		var err error
		if followed, err = followedAmong(ctx, s.db, *viewerID, ids); err != nil {
			return nil, err
		}
	}

	results := make([]types.UserResponse, 0, len(users))
	for i := range users {
		results = append(results, toUserResponse(&users[i], followed[users[i].ID]))
	}
	return results, nil
}

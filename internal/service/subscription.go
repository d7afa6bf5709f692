package service

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultFollowingBatchSize = 50

// FollowingOptions controls ListFollowing.
type FollowingOptions struct {
	// BatchSize is the number of authors fetched per query.
	BatchSize int
	// RecipesLimit caps the recipes attached to each author; 0 attaches all.
	RecipesLimit int
	// Offset skips that many authors; Limit stops after that many (0 means no limit).
	Offset int
	Limit  int
}

// SubscriptionService maintains the follower -> author graph.
type SubscriptionService struct {
	db      *gorm.DB
	metrics *Metrics
	logger  *zap.Logger
}

func NewSubscriptionService(db *gorm.DB, metrics *Metrics, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{db: db, metrics: metrics, logger: logger}
}

// Follow creates the edge follower -> author and returns the followed author
// with all of their recipes.
func (s *SubscriptionService) Follow(ctx context.Context, followerID, authorID uuid.UUID) (*types.FollowedAuthor, error) {
	if followerID == authorID {
		return nil, ErrSelfFollow
	}

	var author models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&author, "id = ?", authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get author: %w", err)
		}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Subscription{UserID: followerID, AuthorID: authorID})
		if result.Error != nil {
			return fmt.Errorf("failed to create subscription: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyFollowing
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.subscriptionChanged("follow")
	s.logger.Debug("subscription created",
		zap.String("user_id", followerID.String()),
		zap.String("author_id", authorID.String()))

	annotated, err := s.annotate(ctx, []models.User{author}, 0)
	if err != nil {
		return nil, err
	}
	return annotated[0], nil
}

// Unfollow deletes the edge follower -> author.
func (s *SubscriptionService) Unfollow(ctx context.Context, followerID, authorID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var authors int64
	if err := db.Model(&models.User{}).Where("id = ?", authorID).Count(&authors).Error; err != nil {
		return fmt.Errorf("failed to get author: %w", err)
	}
	if authors == 0 {
		return ErrUserNotFound
	}

	result := db.Where("user_id = ? AND author_id = ?", followerID, authorID).Delete(&models.Subscription{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFollowing
	}

	s.metrics.subscriptionChanged("unfollow")
	return nil
}

// ListFollowing yields the authors userID follows, ordered by username,
// each with their recipe count and newest recipes. Authors are fetched in
// batches as the caller ranges; every range starts a fresh read.
func (s *SubscriptionService) ListFollowing(ctx context.Context, userID uuid.UUID, opts FollowingOptions) iter.Seq2[*types.FollowedAuthor, error] {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultFollowingBatchSize
	}

	return func(yield func(*types.FollowedAuthor, error) bool) {
		offset := opts.Offset
		remaining := opts.Limit

		for {
			size := batchSize
			if opts.Limit > 0 && remaining < size {
				size = remaining
			}
			if size <= 0 {
				return
			}

			var authors []models.User
			err := s.db.WithContext(ctx).
				Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
				Where("subscriptions.user_id = ?", userID).
				Order("users.username").
				Offset(offset).
				Limit(size).
				Find(&authors).Error
			if err != nil {
				yield(nil, fmt.Errorf("failed to list subscriptions: %w", err))
				return
			}
			if len(authors) == 0 {
				return
			}

			annotated, err := s.annotate(ctx, authors, opts.RecipesLimit)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, author := range annotated {
				if !yield(author, nil) {
					return
				}
			}

			if len(authors) < size {
				return
			}
			offset += len(authors)
			remaining -= len(authors)
		}
	}
}

// CountFollowing returns the number of authors userID follows.
func (s *SubscriptionService) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return n, nil
}

// IsFollowing reports whether the edge follower -> author exists.
func (s *SubscriptionService) IsFollowing(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	followed, err := followedAmong(ctx, s.db, followerID, []uuid.UUID{authorID})
	if err != nil {
		return false, err
	}
	return followed[authorID], nil
}

func (s *SubscriptionService) annotate(ctx context.Context, authors []models.User, recipesLimit int) ([]*types.FollowedAuthor, error) {
	db := s.db.WithContext(ctx)

	ids := make([]uuid.UUID, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}

	var counts []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	err := db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	totals := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		totals[c.AuthorID] = c.Total
	}

	result := make([]*types.FollowedAuthor, 0, len(authors))
	for i := range authors {
		author := &authors[i]

		query := db.Where("author_id = ?", author.ID).Order("created_at DESC").Order("id")
		if recipesLimit > 0 {
			query = query.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := query.Find(&recipes).Error; err != nil {
			return nil, fmt.Errorf("failed to list recipes of %s: %w", author.Username, err)
		}

		summaries := make([]types.RecipeSummary, 0, len(recipes))
		for j := range recipes {
			summaries = append(summaries, toRecipeSummary(&recipes[j]))
		}
		result = append(result, &types.FollowedAuthor{
			UserResponse: toUserResponse(author, true),
			Recipes:      summaries,
			RecipesCount: totals[author.ID],
		})
	}
	return result, nil
}

// followedAmong reports which of authorIDs the follower is subscribed to.
func followedAmong(ctx context.Context, db *gorm.DB, followerID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	followed := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return followed, nil
	}
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", followerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read subscriptions: %w", err)
	}
	for _, id := range ids {
		followed[id] = true
	}
	return followed, nil
}

package services

import (
	"context"
	"fmt"

	"yatube/internal/models"

	"go.uber.org/zap"
)

// FollowService maintains the follow graph. Callers are expected to have
// authenticated user already; the route layer turns guests away.
type FollowService struct {
	repo   Repository
	logger *zap.Logger
}

func NewFollowService(repo Repository, logger *zap.Logger) *FollowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowService{repo: repo, logger: logger}
}

// Follow subscribes user to author. Following yourself is silently ignored
// and following twice leaves a single edge.
func (s *FollowService) Follow(ctx context.Context, user, author *models.User) error {
	if user == nil {
		return ErrUnauthorized
	}
	if user.ID == author.ID {
		s.logger.Debug("ignoring self follow", zap.Uint("user_id", user.ID))
		return nil
	}

	if err := s.repo.CreateFollow(ctx, user.ID, author.ID); err != nil {
		return fmt.Errorf("follow %d->%d: %w", user.ID, author.ID, err)
	}
	s.logger.Info("followed", zap.Uint("user_id", user.ID), zap.Uint("author_id", author.ID))
	return nil
}

// Unfollow removes exactly the (user, author) edge. A missing edge is not
// an error.
func (s *FollowService) Unfollow(ctx context.Context, user, author *models.User) error {
	if user == nil {
		return ErrUnauthorized
	}

	if err := s.repo.DeleteFollow(ctx, user.ID, author.ID); err != nil {
		return fmt.Errorf("unfollow %d->%d: %w", user.ID, author.ID, err)
	}
	s.logger.Info("unfollowed", zap.Uint("user_id", user.ID), zap.Uint("author_id", author.ID))
	return nil
}

// IsFollowing reports whether the edge (user, author) exists. Guests follow
// nobody.
func (s *FollowService) IsFollowing(ctx context.Context, user, author *models.User) (bool, error) {
	if user == nil || author == nil {
		return false, nil
	}
	return s.repo.FollowExists(ctx, user.ID, author.ID)
}

// FollowByUsername resolves the author and follows them.
func (s *FollowService) FollowByUsername(ctx context.Context, user *models.User, username string) (*models.User, error) {
	author, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return author, s.Follow(ctx, user, author)
}

// UnfollowByUsername resolves the author and unfollows them.
func (s *FollowService) UnfollowByUsername(ctx context.Context, user *models.User, username string) (*models.User, error) {
	author, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return author, s.Unfollow(ctx, user, author)
}

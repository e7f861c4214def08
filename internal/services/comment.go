package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yatube/internal/models"

	"go.uber.org/zap"
)

type commentForm struct {
	Text string `form:"text" validate:"required,max=5000"`
}

// CommentService attaches comments to posts.
type CommentService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewCommentService(repo Repository, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{repo: repo, logger: logger, now: utcNow}
}

// AddComment stores a comment written by requester under the post.
// Guests get ErrUnauthorized, an unknown post ErrNotFound, blank text a
// ValidationError; in all three cases nothing is written.
func (s *CommentService) AddComment(ctx context.Context, requester *models.User, postID uint, text string) (*models.Comment, error) {
	if requester == nil {
		return nil, ErrUnauthorized
	}

	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	form := commentForm{Text: strings.TrimSpace(text)}
	if err := validateStruct(form); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: requester.ID,
		Author:   *requester,
		Text:     form.Text,
		Created:  s.now(),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment on post %d: %w", post.ID, err)
	}

	s.logger.Info("comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("post_id", post.ID),
		zap.Uint("author_id", requester.ID),
	)
	return comment, nil
}

// List returns the comments of a post, oldest first.
func (s *CommentService) List(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.repo.ListComments(ctx, postID)
}

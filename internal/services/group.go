package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"yatube/internal/models"

	"go.uber.org/zap"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type GroupInput struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=50"`
	Description string `form:"description"`
}

// GroupService manages communities. Groups are created by operators, not
// from the public site.
type GroupService struct {
	repo   GroupRepository
	logger *zap.Logger
}

func NewGroupService(repo GroupRepository, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, logger: logger}
}

func (s *GroupService) Create(ctx context.Context, in GroupInput) (*models.Group, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !slugPattern.MatchString(in.Slug) {
		return nil, fieldError("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}

	if _, err := s.repo.GetGroupBySlug(ctx, in.Slug); err == nil {
		return nil, fieldError("slug", "Group with this slug already exists.")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup group %q: %w", in.Slug, err)
	}

	g := &models.Group{Title: in.Title, Slug: in.Slug, Description: in.Description}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("create group %q: %w", in.Slug, err)
	}
	s.logger.Info("group created", zap.Uint("group_id", g.ID), zap.String("slug", g.Slug))
	return g, nil
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return s.repo.ListGroups(ctx)
}

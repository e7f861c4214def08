package services

import (
	"context"
	"fmt"

	"yatube/internal/models"
	"yatube/internal/paginator"

	"go.uber.org/zap"
)

// PostPage is one page of a feed.
type PostPage = paginator.Page[models.Post]

type GroupFeed struct {
	Group models.Group
	Page  PostPage
}

type ProfileFeed struct {
	Author         models.User
	Following      bool
	FollowerCount  int64
	FollowingCount int64
	Page           PostPage
}

// FeedService assembles the four post feeds: everything, one group, one
// author, and the authors a user follows.
type FeedService struct {
	repo   Repository
	logger *zap.Logger
}

func NewFeedService(repo Repository, logger *zap.Logger) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedService{repo: repo, logger: logger}
}

// Global 首页 - all posts, newest first.
func (s *FeedService) Global(ctx context.Context, page string) (PostPage, error) {
	return s.list(ctx, PostFilter{}, page)
}

// Group returns the posts of the group with the given slug.
func (s *FeedService) Group(ctx context.Context, slug, page string) (*GroupFeed, error) {
	group, err := s.repo.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	posts, err := s.list(ctx, PostFilter{GroupID: &group.ID}, page)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: *group, Page: posts}, nil
}

// Profile returns the posts of one author. viewer may be nil for guests.
func (s *FeedService) Profile(ctx context.Context, username string, viewer *models.User, page string) (*ProfileFeed, error) {
	author, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.list(ctx, PostFilter{AuthorID: &author.ID}, page)
	if err != nil {
		return nil, err
	}

	feed := &ProfileFeed{Author: *author, Page: posts}

	if viewer != nil && viewer.ID != author.ID {
		feed.Following, err = s.repo.FollowExists(ctx, viewer.ID, author.ID)
		if err != nil {
			return nil, fmt.Errorf("check follow %d->%d: %w", viewer.ID, author.ID, err)
		}
	}

	if feed.FollowerCount, err = s.repo.CountFollowers(ctx, author.ID); err != nil {
		return nil, fmt.Errorf("count followers of %d: %w", author.ID, err)
	}
	if feed.FollowingCount, err = s.repo.CountFollowing(ctx, author.ID); err != nil {
		return nil, fmt.Errorf("count following of %d: %w", author.ID, err)
	}
	return feed, nil
}

// Follow returns the posts of every author the viewer follows. The set of
// followed authors is resolved first and the posts are filtered by it.
func (s *FeedService) Follow(ctx context.Context, viewer *models.User, page string) (PostPage, error) {
	if viewer == nil {
		return PostPage{}, ErrUnauthorized
	}

	authorIDs, err := s.repo.FollowedAuthorIDs(ctx, viewer.ID)
	if err != nil {
		return PostPage{}, fmt.Errorf("followed authors of %d: %w", viewer.ID, err)
	}
	if len(authorIDs) == 0 {
		return paginator.Window[models.Post](0, paginator.PageSize, page), nil
	}

	return s.list(ctx, PostFilter{AuthorIDs: authorIDs}, page)
}

func (s *FeedService) list(ctx context.Context, f PostFilter, page string) (PostPage, error) {
	total, err := s.repo.CountPosts(ctx, f)
	if err != nil {
		return PostPage{}, fmt.Errorf("count posts: %w", err)
	}

	window := paginator.Window[models.Post](total, paginator.PageSize, page)
	if total == 0 {
		return window, nil
	}

	posts, err := s.repo.ListPosts(ctx, f, window.Size, window.Offset())
	if err != nil {
		return PostPage{}, fmt.Errorf("list posts: %w", err)
	}
	s.fillCommentCounts(ctx, posts)

	window.Items = posts
	return window, nil
}

// fillCommentCounts 批量填充评论数，失败时只记录日志
func (s *FeedService) fillCommentCounts(ctx context.Context, posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	counts, err := s.repo.CountComments(ctx, ids)
	if err != nil {
		s.logger.Warn("comment counts unavailable", zap.Error(err))
		return
	}
	for i := range posts {
		posts[i].CommentCount = counts[posts[i].ID]
	}
}

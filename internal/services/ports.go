package services

import (
	"context"

	"yatube/internal/models"
)

// PostFilter narrows the post listing used by every feed.
// A nil AuthorIDs means "any author"; an empty, non-nil slice matches nothing.
type PostFilter struct {
	GroupID   *uint
	AuthorID  *uint
	AuthorIDs []uint
}

// PostRepository 文章存储 - listings are ordered by pub_date DESC, id DESC
// and come back with Author and Group populated.
type PostRepository interface {
	CountPosts(ctx context.Context, f PostFilter) (int64, error)
	ListPosts(ctx context.Context, f PostFilter, limit, offset int) ([]models.Post, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	CreatePost(ctx context.Context, p *models.Post) error
	UpdatePost(ctx context.Context, p *models.Post) error
}

type GroupRepository interface {
	GetGroup(ctx context.Context, id uint) (*models.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, g *models.Group) error
}

type UserRepository interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

// FollowRepository stores directed (user, author) edges.
// CreateFollow must be idempotent: an existing edge is not an error.
type FollowRepository interface {
	CreateFollow(ctx context.Context, userID, authorID uint) error
	DeleteFollow(ctx context.Context, userID, authorID uint) error
	FollowExists(ctx context.Context, userID, authorID uint) (bool, error)
	FollowedAuthorIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	// ListComments returns the comments of a post oldest first, Author populated.
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	CountComments(ctx context.Context, postIDs []uint) (map[uint]int, error)
}

// Repository is everything the services need from the store.
type Repository interface {
	PostRepository
	GroupRepository
	UserRepository
	FollowRepository
	CommentRepository
}

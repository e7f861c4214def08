package db

import (
	"context"
	"errors"
	"fmt"

	"yatube/internal/models"
	"yatube/internal/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements services.Repository on top of gorm.
type Store struct {
	db *gorm.DB
}

var _ services.Repository = (*Store)(nil)

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

// notFound maps gorm's missing-record error onto the service sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}

// ---- users ----

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// ---- groups ----

func (s *Store) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).Order("title ASC").Find(&groups).Error
	return groups, err
}

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	return s.db.WithContext(ctx).Create(g).Error
}

// ---- posts ----

func (s *Store) filter(ctx context.Context, f services.PostFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Post{})
	if f.GroupID != nil {
		q = q.Where("group_id = ?", *f.GroupID)
	}
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.AuthorIDs != nil {
		if len(f.AuthorIDs) == 0 {
			q = q.Where("1 = 0")
		} else {
			q = q.Where("author_id IN ?", f.AuthorIDs)
		}
	}
	return q
}

func (s *Store) CountPosts(ctx context.Context, f services.PostFilter) (int64, error) {
	var total int64
	err := s.filter(ctx, f).Count(&total).Error
	return total, err
}

func (s *Store) ListPosts(ctx context.Context, f services.PostFilter, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := s.filter(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// UpdatePost writes the editable columns only.
func (s *Store) UpdatePost(ctx context.Context, p *models.Post) error {
	return s.db.WithContext(ctx).Model(&models.Post{ID: p.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     p.Text,
			"group_id": p.GroupID,
			"image":    p.Image,
		}).Error
}

// ---- follows ----

func (s *Store) CreateFollow(ctx context.Context, userID, authorID uint) error {
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	return s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error
}

func (s *Store) DeleteFollow(ctx context.Context, userID, authorID uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{}).Error
}

func (s *Store) FollowExists(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) FollowedAuthorIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Order("author_id").
		Pluck("author_id", &ids).Error
	return ids, err
}

func (s *Store) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (s *Store) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ---- comments ----

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (s *Store) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// CountComments 批量统计评论数
func (s *Store) CountComments(ctx context.Context, postIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID uint
		Count  int
	}
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	for _, r := range rows {
		counts[r.PostID] = r.Count
	}
	return counts, nil
}

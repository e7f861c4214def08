package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"yatube/internal/models"
	"yatube/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

// imageDir is the storage prefix for post images.
const imageDir = "posts"

// Upload is an image file attached to a post form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// PostInput is the create/edit form of a post.
type PostInput struct {
	Text    string `form:"text" validate:"required"`
	GroupID *uint  `form:"group"`
	Image   *Upload
}

// PostService handles authoring: create, edit, read.
type PostService struct {
	repo    Repository
	storage storage.Storage
	logger  *zap.Logger
	now     func() time.Time
}

func NewPostService(repo Repository, store storage.Storage, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{repo: repo, storage: store, logger: logger, now: utcNow}
}

// Get returns a post with Author and Group populated.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	return s.repo.GetPost(ctx, id)
}

// Groups lists the groups a post can be filed under.
func (s *PostService) Groups(ctx context.Context) ([]models.Group, error) {
	return s.repo.ListGroups(ctx)
}

// AuthorPostCount is the number of posts written by the author.
func (s *PostService) AuthorPostCount(ctx context.Context, authorID uint) (int64, error) {
	return s.repo.CountPosts(ctx, PostFilter{AuthorID: &authorID})
}

// Create publishes a new post by author.
func (s *PostService) Create(ctx context.Context, author *models.User, in PostInput) (*models.Post, error) {
	if author == nil {
		return nil, ErrUnauthorized
	}

	group, err := s.clean(ctx, &in)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     in.Text,
		PubDate:  s.now(),
		AuthorID: author.ID,
		Author:   *author,
		GroupID:  in.GroupID,
		Group:    group,
	}
	if in.Image != nil {
		if post.Image, err = s.saveImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		s.discardImage(ctx, post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info("post created",
		zap.Uint("post_id", post.ID),
		zap.Uint("author_id", author.ID),
		zap.String("image", post.Image),
	)
	return post, nil
}

// Authorize loads the post and checks that editor may change it. Handlers
// call it before reading the form so a refused or missing post never
// reports form errors.
func (s *PostService) Authorize(ctx context.Context, editor *models.User, postID uint) (Decision, *models.Post, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return Decision{}, nil, err
	}

	if d := CanEdit(editor, post); !d.Allowed() {
		s.logger.Info("edit refused",
			zap.Uint("post_id", post.ID),
			zap.Uint("author_id", post.AuthorID),
		)
		return d, post, nil
	}
	return Allow(), post, nil
}

// Update edits a post. Anyone but the author gets a redirect decision and
// the post is left untouched. The image only changes when a new file comes
// with the form.
func (s *PostService) Update(ctx context.Context, editor *models.User, postID uint, in PostInput) (Decision, *models.Post, error) {
	d, post, err := s.Authorize(ctx, editor, postID)
	if err != nil || !d.Allowed() {
		return d, post, err
	}

	group, err := s.clean(ctx, &in)
	if err != nil {
		return Allow(), post, err
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	post.Group = group
	var replaced string
	if in.Image != nil {
		image, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return Allow(), post, err
		}
		replaced, post.Image = post.Image, image
	}

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		if in.Image != nil {
			s.discardImage(ctx, post.Image)
			post.Image = replaced
		}
		return Allow(), post, fmt.Errorf("update post %d: %w", post.ID, err)
	}
	return Allow(), post, nil
}

// clean trims and validates the form, resolving the selected group.
func (s *PostService) clean(ctx context.Context, in *PostInput) (*models.Group, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if in.GroupID == nil {
		return nil, nil
	}
	group, err := s.repo.GetGroup(ctx, *in.GroupID)
	if errors.Is(err, ErrNotFound) {
		return nil, fieldError("group", "Select a valid choice.")
	}
	if err != nil {
		return nil, fmt.Errorf("load group %d: %w", *in.GroupID, err)
	}
	return group, nil
}

// saveImage checks that the upload really is an image and writes it under
// posts/. It returns the stored path.
func (s *PostService) saveImage(ctx context.Context, up *Upload) (string, error) {
	name := path.Base(strings.ReplaceAll(up.Filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "", fieldError("image", "No file was submitted.")
	}

	// 按内容识别类型，不依赖扩展名和客户端声明
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", fieldError("image", "The submitted file is empty.")
	}

	mtype := mimetype.Detect(head)
	if !isImage(mtype) {
		return "", fieldError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	body := io.MultiReader(bytes.NewReader(head), up.Body)
	stored, err := s.storage.Save(ctx, path.Join(imageDir, name), body, mtype.String())
	if err != nil {
		return "", fmt.Errorf("store image %s: %w", name, err)
	}
	return stored, nil
}

func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

// discardImage removes a stored image whose post never made it to the
// database.
func (s *PostService) discardImage(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.storage.Delete(context.WithoutCancel(ctx), name); err != nil {
		s.logger.Warn("orphan image left in storage",
			zap.String("image", name),
			zap.Error(err),
		)
	}
}

package services_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yatube/internal/db"
	"yatube/internal/models"
	"yatube/internal/services"
	"yatube/internal/storage"
	"yatube/internal/urls"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallGIF is a 1x1 gif.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x21, 0xf9, 0x04,
	0x01, 0x0a, 0x00, 0x01, 0x00, 0x2c, 0x00, 0x00,
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x4c, 0x01, 0x00, 0x3b,
}

func newPostService(t *testing.T) (*services.PostService, *db.Store, string) {
	t.Helper()
	root := t.TempDir()
	store := newStore(t)
	return services.NewPostService(store, storage.NewLocalStorage(root, "/media/"), nil), store, root
}

func TestCreatePostWithImage(t *testing.T) {
	ctx := context.Background()
	posts, store, root := newPostService(t)
	author := createUser(t, store, "leo")
	group := createGroup(t, store, "cats")

	post, err := posts.Create(ctx, author, services.PostInput{
		Text:    "  a cat  ",
		GroupID: &group.ID,
		Image:   &services.Upload{Filename: "small.gif", Body: bytes.NewReader(smallGIF)},
	})
	require.NoError(t, err)
	assert.Equal(t, "a cat", post.Text)
	assert.Equal(t, "posts/small.gif", post.Image)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.False(t, post.PubDate.IsZero())

	data, err := os.ReadFile(filepath.Join(root, "posts", "small.gif"))
	require.NoError(t, err)
	assert.Equal(t, smallGIF, data)

	stored, err := posts.Get(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Group)
	assert.Equal(t, "cats", stored.Group.Slug)
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	posts, store, _ := newPostService(t)
	author := createUser(t, store, "leo")
	missing := uint(999)

	tests := []struct {
		name  string
		in    services.PostInput
		field string
	}{
		{"blank text", services.PostInput{Text: "  "}, "text"},
		{"unknown group", services.PostInput{Text: "hi", GroupID: &missing}, "group"},
		{"not an image", services.PostInput{Text: "hi", Image: &services.Upload{
			Filename: "notes.gif", Body: strings.NewReader("just some text"),
		}}, "image"},
		{"empty file", services.PostInput{Text: "hi", Image: &services.Upload{
			Filename: "empty.gif", Body: strings.NewReader(""),
		}}, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := posts.Create(ctx, author, tt.in)
			ve, ok := services.IsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	count, err := store.CountPosts(ctx, services.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = posts.Create(ctx, nil, services.PostInput{Text: "hi"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	ctx := context.Background()
	posts, store, _ := newPostService(t)
	author := createUser(t, store, "leo")
	stranger := createUser(t, store, "max")

	post, err := posts.Create(ctx, author, services.PostInput{Text: "original"})
	require.NoError(t, err)

	d, _, err := posts.Update(ctx, stranger, post.ID, services.PostInput{Text: "hacked"})
	require.NoError(t, err)
	assert.False(t, d.Allowed())
	assert.Equal(t, urls.PostDetail(post.ID), d.Redirect())

	d, _, err = posts.Update(ctx, nil, post.ID, services.PostInput{Text: "hacked"})
	require.NoError(t, err)
	assert.False(t, d.Allowed())

	unchanged, err := posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", unchanged.Text)

	d, updated, err := posts.Update(ctx, author, post.ID, services.PostInput{Text: "edited"})
	require.NoError(t, err)
	assert.True(t, d.Allowed())
	assert.Equal(t, "edited", updated.Text)
	assert.Equal(t, post.PubDate, updated.PubDate)

	_, _, err = posts.Update(ctx, author, 12345, services.PostInput{Text: "x"})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateKeepsImageWithoutNewUpload(t *testing.T) {
	ctx := context.Background()
	posts, store, _ := newPostService(t)
	author := createUser(t, store, "leo")

	post, err := posts.Create(ctx, author, services.PostInput{
		Text:  "with image",
		Image: &services.Upload{Filename: "small.gif", Body: bytes.NewReader(smallGIF)},
	})
	require.NoError(t, err)

	_, updated, err := posts.Update(ctx, author, post.ID, services.PostInput{Text: "still with image"})
	require.NoError(t, err)
	assert.Equal(t, "posts/small.gif", updated.Image)
}

// recordingStorage remembers the content type of each saved file.
type recordingStorage struct {
	storage.Storage
	types map[string]string
}

func (r *recordingStorage) Save(ctx context.Context, name string, body io.Reader, contentType string) (string, error) {
	stored, err := r.Storage.Save(ctx, name, body, contentType)
	if err == nil {
		r.types[stored] = contentType
	}
	return stored, err
}

func TestCreatePostDetectsImageByContent(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := newStore(t)
	rec := &recordingStorage{Storage: storage.NewLocalStorage(root, "/media/"), types: map[string]string{}}
	posts := services.NewPostService(store, rec, nil)
	author := createUser(t, store, "leo")

	post, err := posts.Create(ctx, author, services.PostInput{
		Text:  "gif in disguise",
		Image: &services.Upload{Filename: "notes.txt", Body: bytes.NewReader(smallGIF)},
	})
	require.NoError(t, err)
	assert.Equal(t, "posts/notes.txt", post.Image)
	assert.Equal(t, "image/gif", rec.types[post.Image])

	// the sniffed head and the rest of the body both reach storage
	big := append(append([]byte{}, smallGIF...), bytes.Repeat([]byte{0}, 8192)...)
	post, err = posts.Create(ctx, author, services.PostInput{
		Text:  "large",
		Image: &services.Upload{Filename: "large.gif", Body: bytes.NewReader(big)},
	})
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(post.Image)))
	require.NoError(t, err)
	assert.Equal(t, big, data)
}

var errInsert = errors.New("insert failed")

// failingRepo accepts reads but refuses to write posts.
type failingRepo struct {
	services.Repository
}

func (failingRepo) CreatePost(context.Context, *models.Post) error { return errInsert }
func (failingRepo) UpdatePost(context.Context, *models.Post) error { return errInsert }

func TestCreatePostRemovesImageWhenInsertFails(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := newStore(t)
	posts := services.NewPostService(failingRepo{store}, storage.NewLocalStorage(root, "/media/"), nil)
	author := createUser(t, store, "leo")

	_, err := posts.Create(ctx, author, services.PostInput{
		Text:  "lost",
		Image: &services.Upload{Filename: "small.gif", Body: bytes.NewReader(smallGIF)},
	})
	require.ErrorIs(t, err, errInsert)

	entries, err := os.ReadDir(filepath.Join(root, "posts"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdatePostRemovesNewImageWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := newStore(t)
	media := storage.NewLocalStorage(root, "/media/")
	author := createUser(t, store, "leo")

	post, err := services.NewPostService(store, media, nil).Create(ctx, author, services.PostInput{
		Text:  "first",
		Image: &services.Upload{Filename: "first.gif", Body: bytes.NewReader(smallGIF)},
	})
	require.NoError(t, err)

	broken := services.NewPostService(failingRepo{store}, media, nil)
	_, updated, err := broken.Update(ctx, author, post.ID, services.PostInput{
		Text:  "second",
		Image: &services.Upload{Filename: "second.gif", Body: bytes.NewReader(smallGIF)},
	})
	require.ErrorIs(t, err, errInsert)
	assert.Equal(t, "posts/first.gif", updated.Image)

	entries, err := os.ReadDir(filepath.Join(root, "posts"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "first.gif", entries[0].Name())
}

func TestAuthorizeEdit(t *testing.T) {
	ctx := context.Background()
	posts, store, _ := newPostService(t)
	author := createUser(t, store, "leo")
	stranger := createUser(t, store, "max")

	post, err := posts.Create(ctx, author, services.PostInput{Text: "mine"})
	require.NoError(t, err)

	d, got, err := posts.Authorize(ctx, author, post.ID)
	require.NoError(t, err)
	assert.True(t, d.Allowed())
	assert.Equal(t, post.ID, got.ID)

	d, _, err = posts.Authorize(ctx, stranger, post.ID)
	require.NoError(t, err)
	assert.False(t, d.Allowed())
	assert.Equal(t, urls.PostDetail(post.ID), d.Redirect())

	_, _, err = posts.Authorize(ctx, author, 9999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

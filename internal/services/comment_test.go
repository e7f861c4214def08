package services_test

import (
	"context"
	"testing"

	"yatube/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	author := createUser(t, store, "leo")
	reader := createUser(t, store, "ann")
	post := createPosts(t, store, author, nil, 1)[0]
	comments := services.NewCommentService(store, nil)

	c, err := comments.AddComment(ctx, reader, post.ID, "  nice post  ")
	require.NoError(t, err)
	assert.Equal(t, "nice post", c.Text)
	assert.Equal(t, reader.ID, c.AuthorID)
	assert.Equal(t, post.ID, c.PostID)
	assert.False(t, c.Created.IsZero())

	list, err := comments.List(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ann", list[0].Author.Username)
}

func TestAddCommentRejected(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	author := createUser(t, store, "leo")
	post := createPosts(t, store, author, nil, 1)[0]
	comments := services.NewCommentService(store, nil)

	_, err := comments.AddComment(ctx, nil, post.ID, "hello")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = comments.AddComment(ctx, author, post.ID+100, "hello")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = comments.AddComment(ctx, author, post.ID, "   ")
	ve, ok := services.IsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, ve.Fields, "text")

	list, err := comments.List(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

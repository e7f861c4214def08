package services_test

import (
	"context"
	"testing"

	"yatube/internal/db/dbtest"
	"yatube/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowIdempotent(t *testing.T) {
	ctx := context.Background()
	store, conn := dbtest.New(t)
	u := createUser(t, store, "u")
	a := createUser(t, store, "a")
	follows := services.NewFollowService(store, nil)

	require.NoError(t, follows.Follow(ctx, u, a))
	require.NoError(t, follows.Follow(ctx, u, a))
	assert.Equal(t, 1, dbtest.FollowCount(t, conn))

	ok, err := follows.IsFollowing(ctx, u, a)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = follows.IsFollowing(ctx, a, u)
	require.NoError(t, err)
	assert.False(t, ok, "edges are directed")
}

func TestFollowSelfIsNoop(t *testing.T) {
	ctx := context.Background()
	store, conn := dbtest.New(t)
	u := createUser(t, store, "u")
	follows := services.NewFollowService(store, nil)

	require.NoError(t, follows.Follow(ctx, u, u))
	assert.Zero(t, dbtest.FollowCount(t, conn))
}

func TestUnfollowRemovesOnlyThatEdge(t *testing.T) {
	ctx := context.Background()
	store, conn := dbtest.New(t)
	u := createUser(t, store, "u")
	a := createUser(t, store, "a")
	b := createUser(t, store, "b")
	follows := services.NewFollowService(store, nil)

	require.NoError(t, follows.Follow(ctx, u, a))
	require.NoError(t, follows.Follow(ctx, u, b))
	require.NoError(t, follows.Follow(ctx, a, u))

	require.NoError(t, follows.Unfollow(ctx, u, a))
	assert.Equal(t, 2, dbtest.FollowCount(t, conn))

	ok, _ := follows.IsFollowing(ctx, u, b)
	assert.True(t, ok)
	ok, _ = follows.IsFollowing(ctx, a, u)
	assert.True(t, ok)

	// unfollowing someone not followed changes nothing
	require.NoError(t, follows.Unfollow(ctx, u, a))
	assert.Equal(t, 2, dbtest.FollowCount(t, conn))
}

func TestFollowByUsername(t *testing.T) {
	ctx := context.Background()
	store, conn := dbtest.New(t)
	u := createUser(t, store, "u")
	createUser(t, store, "leo")
	follows := services.NewFollowService(store, nil)

	author, err := follows.FollowByUsername(ctx, u, "leo")
	require.NoError(t, err)
	assert.Equal(t, "leo", author.Username)
	assert.Equal(t, 1, dbtest.FollowCount(t, conn))

	_, err = follows.UnfollowByUsername(ctx, u, "leo")
	require.NoError(t, err)
	assert.Zero(t, dbtest.FollowCount(t, conn))

	_, err = follows.FollowByUsername(ctx, u, "ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = follows.FollowByUsername(ctx, nil, "leo")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

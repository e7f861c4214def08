package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"yatube/internal/db"
	"yatube/internal/db/dbtest"
	"yatube/internal/models"
	"yatube/internal/services"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *db.Store {
	t.Helper()
	store, _ := dbtest.New(t)
	return store
}

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func createUser(t *testing.T, s services.Repository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createGroup(t *testing.T, s services.Repository, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(t, s.CreateGroup(context.Background(), g))
	return g
}

// createPosts writes n posts by author, one minute apart, the last one newest.
func createPosts(t *testing.T, s services.Repository, author *models.User, group *models.Group, n int) []*models.Post {
	t.Helper()
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		p := &models.Post{
			Text:     fmt.Sprintf("post %d by %s", i, author.Username),
			AuthorID: author.ID,
			PubDate:  epoch.Add(time.Duration(i) * time.Minute),
		}
		if group != nil {
			p.GroupID = &group.ID
		}
		require.NoError(t, s.CreatePost(context.Background(), p))
		posts = append(posts, p)
	}
	return posts
}

package db

import (
	"context"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:                 mockDB,
		DriverName:           "postgres",
		PreferSimpleProtocol: true,
	})
	conn, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	return NewStore(conn), mock
}

func TestGetGroupBySlugNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "groups" WHERE slug = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug", "description"}))

	_, err := store.GetGroupBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "is_staff", "created_at"}).
			AddRow(3, "leo", "hash", false, time.Now()))

	user, err := store.GetUserByUsername(context.Background(), "leo")
	require.NoError(t, err)
	assert.EqualValues(t, 3, user.ID)
	assert.Equal(t, "leo", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFollowIgnoresConflict(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "follows" .* ON CONFLICT DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	require.NoError(t, store.CreateFollow(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFollowTargetsOneEdge(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "follows" WHERE user_id = \$1 AND author_id = \$2`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteFollow(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowedAuthorIDs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT "author_id" FROM "follows" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(2).AddRow(5))

	ids, err := store.FollowedAuthorIDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 5}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountPostsEmptyAuthorSet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE 1 = 0`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	total, err := store.CountPosts(context.Background(), services.PostFilter{AuthorIDs: []uint{}})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPostsPreloadsAuthorAndGroup(t *testing.T) {
	store, mock := newMockStore(t)
	mock.MatchExpectationsInOrder(false)
	now := time.Now()
	groupID := uint(4)

	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE author_id IN \(\$1,\$2\) ORDER BY pub_date DESC, id DESC LIMIT \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "pub_date", "author_id", "group_id", "image"}).
			AddRow(9, "newest", now, 2, groupID, "posts/small.gif").
			AddRow(8, "older", now.Add(-time.Hour), 5, groupID, ""))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" IN`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(2, "leo").AddRow(5, "max"))
	mock.ExpectQuery(`SELECT \* FROM "groups" WHERE "groups"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug"}).AddRow(groupID, "Cats", "cats"))

	posts, err := store.ListPosts(context.Background(), services.PostFilter{AuthorIDs: []uint{2, 5}}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "leo", posts[0].Author.Username)
	assert.Equal(t, "max", posts[1].Author.Username)
	require.NotNil(t, posts[0].Group)
	assert.Equal(t, "cats", posts[0].Group.Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountComments(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT post_id, count\(\*\) as count FROM "comments" WHERE post_id IN`).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "count"}).AddRow(1, 3).AddRow(2, 1))

	counts, err := store.CountComments(context.Background(), []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{1: 3, 2: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())

	empty, err := store.CountComments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCreateCommentSkipsAssociations(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "comments" \("post_id","author_id","text","created"\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	c := &models.Comment{
		PostID:   1,
		AuthorID: 2,
		Author:   models.User{ID: 2, Username: "leo"},
		Text:     "hi",
		Created:  time.Now(),
	}
	require.NoError(t, store.CreateComment(context.Background(), c))
	assert.EqualValues(t, 11, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"yatube/internal/db"
	"yatube/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New returns a store on a fresh in-memory sqlite database, closed when
// the test ends. The raw connection is handed back for setup and checks
// the store does not offer.
func New(t testing.TB) (*db.Store, *gorm.DB) {
	t.Helper()

	conn, err := db.OpenMemory(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db.NewStore(conn), conn
}

// FollowCount is the total number of follow edges.
func FollowCount(t testing.TB, conn *gorm.DB) int {
	t.Helper()

	var n int64
	require.NoError(t, conn.Model(&models.Follow{}).Count(&n).Error)
	return int(n)
}

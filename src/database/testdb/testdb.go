// Package testdb provides throwaway databases for package tests.
package testdb

import (
	"fmt"
	"testing"

	"stockbot/src/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New returns an isolated in-memory database with the full schema, closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

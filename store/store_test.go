package store

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"gembot/database"
)

const testDailyLimit = 10

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	return New(db, testDailyLimit), db
}

package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luxdecor-shop/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

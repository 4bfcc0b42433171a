// Package databasetest opens a migrated PostgreSQL schema for tests that need
// real constraints. Tests are skipped unless TEST_DATABASE_DSN is set.
package databasetest

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/database"
	"gorm.io/gorm"
)

// Open returns a connection whose search_path is a freshly created schema
// named after the calling package. The schema is dropped when the test ends.
func Open(t testing.TB, schema string) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	schema = "salonbook_test_" + schema

	admin, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, stmt := range []string{
		fmt.Sprintf(`DROP SCHEMA IF EXISTS %q CASCADE`, schema),
		fmt.Sprintf(`CREATE SCHEMA %q`, schema),
	} {
		if err := admin.Exec(stmt).Error; err != nil {
			t.Fatalf("reset schema: %v", err)
		}
	}

	db, err := database.Open(withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("open schema: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		admin.Exec(fmt.Sprintf(`DROP SCHEMA IF EXISTS %q CASCADE`, schema))
		if sqlDB, err := admin.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func withSearchPath(dsn, schema string) string {
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&search_path=" + schema
	}
	return dsn + "?search_path=" + schema
}

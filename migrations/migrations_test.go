package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrationsCreatesTables(t *testing.T) {
	db := openTestDB(t)

	if err := RunMigrations(db, Options{}); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	tables := []string{"profiles", "approvals", "roles", "events", "announcements", "gallery_images", "activities", "backend_snapshots"}
	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("Error checking table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 2; i++ {
		if err := RunMigrations(db, Options{SeedTestData: true}); err != nil {
			t.Fatalf("RunMigrations run %d failed: %v", i+1, err)
		}
	}

	var applied int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied); err != nil {
		t.Fatalf("Error counting migrations: %v", err)
	}
	if applied != 3 {
		t.Errorf("Expected 3 applied migrations, got %d", applied)
	}

	var profiles int
	if err := db.QueryRow("SELECT COUNT(*) FROM profiles").Scan(&profiles); err != nil {
		t.Fatalf("Error counting profiles: %v", err)
	}
	if profiles != 4 {
		t.Errorf("Expected 4 seeded profiles, got %d", profiles)
	}
}

package migrations

import (
	"database/sql"
	"fmt"
)

// CreateBaseSchema creates the member and content tables. Timestamps are
// stored as unix nanoseconds.
func CreateBaseSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			principal TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			graduation_year INTEGER NOT NULL,
			department TEXT NOT NULL,
			current_city TEXT NOT NULL,
			current_country TEXT NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			contact_info TEXT,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_profiles_year ON profiles(graduation_year);
		CREATE INDEX IF NOT EXISTS idx_profiles_department ON profiles(department);

		CREATE TABLE IF NOT EXISTS approvals (
			principal TEXT PRIMARY KEY,
			status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS roles (
			principal TEXT PRIMARY KEY,
			role TEXT NOT NULL CHECK (role IN ('admin', 'user', 'guest'))
		);

		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL,
			starts_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS announcements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS gallery_images (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			photos TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create base schema: %w", err)
	}
	return nil
}

package migrations

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

// SeedTestData seeds sample members and content for development and PR
// environments. Callers decide whether it runs; it never runs in production.
func SeedTestData(db *sql.DB) error {
	log.Println("Seeding test data for development/PR environment...")

	// Start a transaction for all operations
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()

	// Clear existing data (make sure this is only done in dev)
	tables := []string{"profiles", "approvals", "roles", "events", "announcements", "gallery_images", "activities", "backend_snapshots"}
	for _, table := range tables {
		_, err = tx.Exec("DELETE FROM " + table)
		if err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	// 1. Members with their approval state and role
	sampleMembers := []struct {
		principal  string
		name       string
		year       int
		department string
		city       string
		country    string
		status     string
		role       string
	}{
		{"dev-admin", "Dev Admin", 2005, "Computer Science", "Lisbon", "Portugal", "approved", "admin"},
		{"dev-member-1", "Ana Souza", 2012, "Physics", "Porto", "Portugal", "approved", "user"},
		{"dev-member-2", "Kofi Mensah", 2018, "Civil Engineering", "Accra", "Ghana", "approved", "user"},
		{"dev-member-3", "Mei Tanaka", 2021, "Biology", "Osaka", "Japan", "pending", "user"},
	}

	for _, m := range sampleMembers {
		_, err = tx.Exec(`
			INSERT INTO profiles (principal, full_name, graduation_year, department, current_city, current_country, bio, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, '', ?)
		`, m.principal, m.name, m.year, m.department, m.city, m.country, now.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert profile %s: %w", m.principal, err)
		}

		_, err = tx.Exec("INSERT INTO approvals (principal, status, updated_at) VALUES (?, ?, ?)",
			m.principal, m.status, now.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert approval %s: %w", m.principal, err)
		}

		_, err = tx.Exec("INSERT INTO roles (principal, role) VALUES (?, ?)", m.principal, m.role)
		if err != nil {
			return fmt.Errorf("failed to insert role %s: %w", m.principal, err)
		}
	}

	// 2. One past and one upcoming event
	sampleEvents := []struct {
		title    string
		location string
		startsAt time.Time
	}{
		{"Homecoming Dinner", "Main Hall", now.AddDate(0, -2, 0)},
		{"Annual Reunion", "Campus Green", now.AddDate(0, 1, 0)},
	}

	for _, e := range sampleEvents {
		_, err = tx.Exec("INSERT INTO events (title, description, location, starts_at) VALUES (?, '', ?, ?)",
			e.title, e.location, e.startsAt.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert event %s: %w", e.title, err)
		}
	}

	// 3. A welcome announcement
	_, err = tx.Exec("INSERT INTO announcements (title, content, created_at) VALUES (?, ?, ?)",
		"Welcome", "The **alumni directory** is now open to approved members.", now.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}

	// Commit the transaction
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Test data seeded successfully")
	return nil
}

package migrations

import (
	"database/sql"
	"fmt"
)

// AddBackendSnapshots creates the snapshot log
func AddBackendSnapshots(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS backend_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			captured_at INTEGER NOT NULL,
			total_alumni_profiles INTEGER NOT NULL,
			total_events INTEGER NOT NULL,
			total_announcements INTEGER NOT NULL,
			total_gallery_images INTEGER NOT NULL,
			total_activities INTEGER NOT NULL,
			total_approved_users INTEGER NOT NULL,
			total_pending_users INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create backend_snapshots table: %w", err)
	}
	return nil
}

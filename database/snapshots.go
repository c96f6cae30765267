package database

import (
	"context"
	"fmt"

	"alumnihub/models"
)

const snapshotColumns = `total_alumni_profiles, total_events, total_announcements, total_gallery_images,
	total_activities, total_approved_users, total_pending_users`

// GetBackendStatus counts live records
func (c *caller) GetBackendStatus(ctx context.Context) (models.BackendStatus, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return models.BackendStatus{}, err
	}
	return c.status(ctx)
}

func (c *caller) status(ctx context.Context) (models.BackendStatus, error) {
	var st models.BackendStatus
	err := c.db().QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM announcements),
			(SELECT COUNT(*) FROM gallery_images),
			(SELECT COUNT(*) FROM activities),
			(SELECT COUNT(*) FROM approvals WHERE status = 'approved'),
			(SELECT COUNT(*) FROM approvals WHERE status = 'pending')
	`).Scan(&st.TotalAlumniProfiles, &st.TotalEvents, &st.TotalAnnouncements, &st.TotalGalleryImages,
		&st.TotalActivities, &st.TotalApprovedUsers, &st.TotalPendingUsers)
	if err != nil {
		return st, fmt.Errorf("failed to count records: %w", err)
	}
	return st, nil
}

func (c *caller) ListBackendSnapshots(ctx context.Context) ([]models.BackendSnapshot, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return nil, err
	}
	rows, err := c.db().QueryContext(ctx,
		"SELECT id, captured_at, "+snapshotColumns+" FROM backend_snapshots ORDER BY captured_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.BackendSnapshot
	for rows.Next() {
		var (
			s        models.BackendSnapshot
			captured int64
		)
		err := rows.Scan(&s.ID, &captured, &s.TotalAlumniProfiles, &s.TotalEvents, &s.TotalAnnouncements,
			&s.TotalGalleryImages, &s.TotalActivities, &s.TotalApprovedUsers, &s.TotalPendingUsers)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.CapturedAt = fromNanos(captured)
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateBackendSnapshot stores the current counters and returns the new id
func (c *caller) CreateBackendSnapshot(ctx context.Context) (int64, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return 0, err
	}
	st, err := c.status(ctx)
	if err != nil {
		return 0, err
	}
	res, err := c.db().ExecContext(ctx,
		"INSERT INTO backend_snapshots (captured_at, "+snapshotColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		c.now().UnixNano(), st.TotalAlumniProfiles, st.TotalEvents, st.TotalAnnouncements,
		st.TotalGalleryImages, st.TotalActivities, st.TotalApprovedUsers, st.TotalPendingUsers)
	if err != nil {
		return 0, fmt.Errorf("failed to create snapshot: %w", err)
	}
	return res.LastInsertId()
}

// DeleteBackendSnapshot reports whether a snapshot was removed
func (c *caller) DeleteBackendSnapshot(ctx context.Context, id int64) (bool, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return false, err
	}
	res, err := c.db().ExecContext(ctx, "DELETE FROM backend_snapshots WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *caller) ClearAllBackendSnapshots(ctx context.Context) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	if _, err := c.db().ExecContext(ctx, "DELETE FROM backend_snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"encoding/json"
	"fmt"

	"alumnihub/models"
)

// GetEvents lists events; past selects events before now, or from now on,
// and nil selects all
func (c *caller) GetEvents(ctx context.Context, past *bool) ([]models.Event, error) {
	q := "SELECT id, title, description, location, starts_at FROM events"
	var args []any
	if past != nil {
		if *past {
			q += " WHERE starts_at < ?"
		} else {
			q += " WHERE starts_at >= ?"
		}
		args = append(args, c.now().UnixNano())
	}
	q += " ORDER BY starts_at"

	rows, err := c.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		var (
			e      models.Event
			starts int64
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &starts); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.StartsAt = fromNanos(starts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (c *caller) CreateEvent(ctx context.Context, event models.EditableEvent) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	_, err := c.db().ExecContext(ctx,
		"INSERT INTO events (title, description, location, starts_at) VALUES (?, ?, ?, ?)",
		event.Title, event.Description, event.Location, event.StartsAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (c *caller) UpdateEvent(ctx context.Context, id int64, event models.EditableEvent) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	res, err := c.db().ExecContext(ctx,
		"UPDATE events SET title = ?, description = ?, location = ?, starts_at = ? WHERE id = ?",
		event.Title, event.Description, event.Location, event.StartsAt.UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return affected(res)
}

func (c *caller) DeleteEvent(ctx context.Context, id int64) error {
	return c.deleteByID(ctx, "events", id)
}

func (c *caller) deleteByID(ctx context.Context, table string, id int64) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	res, err := c.db().ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return affected(res)
}

func (c *caller) GetAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	return c.queryAnnouncements(ctx, "SELECT id, title, content, created_at FROM announcements ORDER BY created_at DESC")
}

// GetAnnouncementsByYearRange filters by creation year, bounds inclusive
func (c *caller) GetAnnouncementsByYearRange(ctx context.Context, startYear, endYear *int) ([]models.Announcement, error) {
	q := "SELECT id, title, content, created_at FROM announcements WHERE 1 = 1"
	var args []any
	if startYear != nil {
		q += " AND CAST(strftime('%Y', created_at / 1000000000, 'unixepoch') AS INTEGER) >= ?"
		args = append(args, *startYear)
	}
	if endYear != nil {
		q += " AND CAST(strftime('%Y', created_at / 1000000000, 'unixepoch') AS INTEGER) <= ?"
		args = append(args, *endYear)
	}
	q += " ORDER BY created_at DESC"
	return c.queryAnnouncements(ctx, q, args...)
}

func (c *caller) queryAnnouncements(ctx context.Context, q string, args ...any) ([]models.Announcement, error) {
	rows, err := c.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcements: %w", err)
	}
	defer rows.Close()

	var out []models.Announcement
	for rows.Next() {
		var (
			a       models.Announcement
			created int64
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		a.CreatedAt = fromNanos(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (c *caller) CreateAnnouncement(ctx context.Context, announcement models.EditableAnnouncement) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	_, err := c.db().ExecContext(ctx,
		"INSERT INTO announcements (title, content, created_at) VALUES (?, ?, ?)",
		announcement.Title, announcement.Content, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

func (c *caller) DeleteAnnouncement(ctx context.Context, id int64) error {
	return c.deleteByID(ctx, "announcements", id)
}

func (c *caller) GetGalleryImages(ctx context.Context) ([]models.GalleryImage, error) {
	rows, err := c.db().QueryContext(ctx,
		"SELECT id, title, description, image_url, created_at FROM gallery_images ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query gallery images: %w", err)
	}
	defer rows.Close()

	var out []models.GalleryImage
	for rows.Next() {
		var (
			img     models.GalleryImage
			created int64
		)
		if err := rows.Scan(&img.ID, &img.Title, &img.Description, &img.ImageURL, &created); err != nil {
			return nil, fmt.Errorf("failed to scan gallery image: %w", err)
		}
		img.CreatedAt = fromNanos(created)
		out = append(out, img)
	}
	return out, rows.Err()
}

func (c *caller) CreateGalleryImage(ctx context.Context, image models.EditableGalleryImage) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	_, err := c.db().ExecContext(ctx,
		"INSERT INTO gallery_images (title, description, image_url, created_at) VALUES (?, ?, ?, ?)",
		image.Title, image.Description, image.ImageURL, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create gallery image: %w", err)
	}
	return nil
}

func (c *caller) UpdateGalleryImage(ctx context.Context, id int64, image models.EditableGalleryImage) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	res, err := c.db().ExecContext(ctx,
		"UPDATE gallery_images SET title = ?, description = ?, image_url = ? WHERE id = ?",
		image.Title, image.Description, image.ImageURL, id)
	if err != nil {
		return fmt.Errorf("failed to update gallery image: %w", err)
	}
	return affected(res)
}

func (c *caller) DeleteGalleryImage(ctx context.Context, id int64) error {
	return c.deleteByID(ctx, "gallery_images", id)
}

func (c *caller) GetActivities(ctx context.Context) ([]models.Activity, error) {
	rows, err := c.db().QueryContext(ctx,
		"SELECT id, title, description, photos, created_at FROM activities ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var (
			a       models.Activity
			photos  string
			created int64
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &photos, &created); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if err := json.Unmarshal([]byte(photos), &a.Photos); err != nil {
			return nil, fmt.Errorf("failed to decode photos of activity %d: %w", a.ID, err)
		}
		a.CreatedAt = fromNanos(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (c *caller) CreateActivity(ctx context.Context, activity models.EditableActivity) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	photos, err := encodePhotos(activity.Photos)
	if err != nil {
		return err
	}
	_, err = c.db().ExecContext(ctx,
		"INSERT INTO activities (title, description, photos, created_at) VALUES (?, ?, ?, ?)",
		activity.Title, activity.Description, photos, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (c *caller) UpdateActivity(ctx context.Context, id int64, activity models.EditableActivity) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	photos, err := encodePhotos(activity.Photos)
	if err != nil {
		return err
	}
	res, err := c.db().ExecContext(ctx,
		"UPDATE activities SET title = ?, description = ?, photos = ? WHERE id = ?",
		activity.Title, activity.Description, photos, id)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return affected(res)
}

func (c *caller) DeleteActivity(ctx context.Context, id int64) error {
	return c.deleteByID(ctx, "activities", id)
}

func encodePhotos(photos []string) (string, error) {
	if photos == nil {
		photos = []string{}
	}
	b, err := json.Marshal(photos)
	if err != nil {
		return "", fmt.Errorf("failed to encode photos: %w", err)
	}
	return string(b), nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"alumnihub/models"
)

const profileColumns = "principal, full_name, graduation_year, department, current_city, current_country, bio, contact_info"

type rowScanner interface {
	Scan(dest ...any) error
}

func (c *caller) scanProfile(row rowScanner) (models.AlumniProfile, error) {
	var (
		p       models.AlumniProfile
		contact sql.NullString
	)
	err := row.Scan(&p.Principal, &p.FullName, &p.GraduationYear, &p.Department,
		&p.CurrentCity, &p.CurrentCountry, &p.Bio, &contact)
	if err != nil {
		return p, err
	}
	if contact.Valid {
		plain, err := c.store.cipher.Decrypt(contact.String)
		if err != nil {
			log.Printf("Error decrypting contact info for %s: %v", p.Principal, err)
		} else {
			p.ContactInfo = models.Some(plain)
		}
	}
	return p, nil
}

func (c *caller) GetCallerUserProfile(ctx context.Context) (*models.AlumniProfile, error) {
	if c.principal == "" {
		return nil, nil
	}
	return c.GetUserProfile(ctx, c.principal)
}

func (c *caller) GetUserProfile(ctx context.Context, principal string) (*models.AlumniProfile, error) {
	row := c.db().QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE principal = ?", principal)
	p, err := c.scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}

// SaveCallerUserProfile upserts the caller's profile; contact info is
// encrypted and a missing value clears the column
func (c *caller) SaveCallerUserProfile(ctx context.Context, profile models.AlumniProfile) error {
	if err := c.requireCaller(); err != nil {
		return err
	}

	var contact sql.NullString
	if v, ok := profile.ContactInfo.Get(); ok {
		sealed, err := c.store.cipher.Encrypt(v)
		if err != nil {
			return fmt.Errorf("failed to encrypt contact info: %w", err)
		}
		contact = sql.NullString{String: sealed, Valid: true}
	}

	_, err := c.db().ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(principal) DO UPDATE SET
			full_name = excluded.full_name,
			graduation_year = excluded.graduation_year,
			department = excluded.department,
			current_city = excluded.current_city,
			current_country = excluded.current_country,
			bio = excluded.bio,
			contact_info = excluded.contact_info,
			updated_at = excluded.updated_at
	`, c.principal, profile.FullName, profile.GraduationYear, profile.Department,
		profile.CurrentCity, profile.CurrentCountry, profile.Bio, contact, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// SearchAlumniProfiles filters by year and department when given, ordered by name
func (c *caller) SearchAlumniProfiles(ctx context.Context, year *int, department *string) ([]models.AlumniProfile, error) {
	var (
		where []string
		args  []any
	)
	if year != nil {
		where = append(where, "graduation_year = ?")
		args = append(args, *year)
	}
	if department != nil {
		where = append(where, "department = ?")
		args = append(args, *department)
	}
	q := "SELECT " + profileColumns + " FROM profiles"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY full_name"

	rows, err := c.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer rows.Close()

	var out []models.AlumniProfile
	for rows.Next() {
		p, err := c.scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (c *caller) GetGraduationYears(ctx context.Context) ([]int, error) {
	rows, err := c.db().QueryContext(ctx, "SELECT DISTINCT graduation_year FROM profiles ORDER BY graduation_year DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query graduation years: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func (c *caller) GetDepartments(ctx context.Context) ([]string, error) {
	rows, err := c.db().QueryContext(ctx, "SELECT DISTINCT department FROM profiles ORDER BY department")
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

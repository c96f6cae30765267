package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"alumnihub/models"
	"alumnihub/remote"
	"alumnihub/security"
	"alumnihub/services"
)

// Store is the sqlite-backed data service. Each Dial returns a handle that
// acts as one caller and enforces that caller's role on writes.
type Store struct {
	db          *sql.DB
	cipher      *security.Cipher
	superAdmins map[string]bool
	now         func() time.Time
}

// NewStore wraps an open, migrated database. superAdmins are treated as
// admins regardless of the roles table.
func NewStore(db *sql.DB, cipher *security.Cipher, superAdmins []string) *Store {
	admins := make(map[string]bool, len(superAdmins))
	for _, p := range superAdmins {
		admins[p] = true
	}
	return &Store{db: db, cipher: cipher, superAdmins: admins, now: time.Now}
}

// Dial checks the database is reachable and returns a handle for principal.
// The empty principal is an anonymous guest.
func (s *Store) Dial(ctx context.Context, principal string) (remote.Service, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return &caller{store: s, principal: principal}, nil
}

// caller implements remote.Service for one principal
type caller struct {
	store     *Store
	principal string
}

var _ remote.Service = (*caller)(nil)

func (c *caller) Principal() string {
	return c.principal
}

func (c *caller) db() *sql.DB {
	return c.store.db
}

func (c *caller) now() time.Time {
	return c.store.now()
}

// roleOf returns a principal's role; registered principals default to user
func (c *caller) roleOf(ctx context.Context, principal string) (models.UserRole, error) {
	if principal == "" {
		return models.RoleGuest, nil
	}
	if c.store.superAdmins[principal] {
		return models.RoleAdmin, nil
	}
	var role string
	err := c.db().QueryRowContext(ctx, "SELECT role FROM roles WHERE principal = ?", principal).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoleUser, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query role: %w", err)
	}
	return models.ParseUserRole(role)
}

func (c *caller) requireCaller() error {
	if c.principal == "" {
		return remote.ErrUnauthorized
	}
	return nil
}

func (c *caller) requireAdmin(ctx context.Context) error {
	role, err := c.roleOf(ctx, c.principal)
	if err != nil {
		return err
	}
	if !services.IsRoleAtLeast(role, models.RoleAdmin) {
		return remote.ErrUnauthorized
	}
	return nil
}

func (c *caller) IsCallerAdmin(ctx context.Context) (bool, error) {
	role, err := c.roleOf(ctx, c.principal)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}

func (c *caller) GetCallerApprovalStatus(ctx context.Context) (models.Optional[models.ApprovalStatus], error) {
	if c.principal == "" {
		return models.None[models.ApprovalStatus](), nil
	}
	return c.approvalOf(ctx, c.principal)
}

func (c *caller) approvalOf(ctx context.Context, principal string) (models.Optional[models.ApprovalStatus], error) {
	var status string
	err := c.db().QueryRowContext(ctx, "SELECT status FROM approvals WHERE principal = ?", principal).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.None[models.ApprovalStatus](), nil
	}
	if err != nil {
		return models.None[models.ApprovalStatus](), fmt.Errorf("failed to query approval: %w", err)
	}
	return models.Some(models.ApprovalStatus(status)), nil
}

// IsCallerApproved is true for approved members and for admins
func (c *caller) IsCallerApproved(ctx context.Context) (bool, error) {
	if c.principal == "" {
		return false, nil
	}
	admin, err := c.IsCallerAdmin(ctx)
	if err != nil || admin {
		return admin, err
	}
	status, err := c.approvalOf(ctx, c.principal)
	if err != nil {
		return false, err
	}
	v, ok := status.Get()
	return ok && v == models.ApprovalApproved, nil
}

// RequestApproval files a pending request. Re-requesting while pending or
// approved changes nothing; a rejected member goes back to pending.
func (c *caller) RequestApproval(ctx context.Context) error {
	if err := c.requireCaller(); err != nil {
		return err
	}
	_, err := c.db().ExecContext(ctx, `
		INSERT INTO approvals (principal, status, updated_at) VALUES (?, 'pending', ?)
		ON CONFLICT(principal) DO UPDATE SET
			status = 'pending',
			updated_at = excluded.updated_at
		WHERE approvals.status = 'rejected'
	`, c.principal, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to request approval: %w", err)
	}
	return nil
}

func (c *caller) ListApprovals(ctx context.Context) ([]models.UserApprovalInfo, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return nil, err
	}
	rows, err := c.db().QueryContext(ctx, "SELECT principal, status, updated_at FROM approvals ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query approvals: %w", err)
	}
	defer rows.Close()

	var out []models.UserApprovalInfo
	for rows.Next() {
		var (
			info    models.UserApprovalInfo
			status  string
			updated int64
		)
		if err := rows.Scan(&info.Principal, &status, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		info.Status = models.ApprovalStatus(status)
		info.UpdatedAt = fromNanos(updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

func (c *caller) ListApprovalsWithProfiles(ctx context.Context) ([]models.ApprovalWithProfile, error) {
	approvals, err := c.ListApprovals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ApprovalWithProfile, 0, len(approvals))
	for _, a := range approvals {
		profile, err := c.GetUserProfile(ctx, a.Principal)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ApprovalWithProfile{UserApprovalInfo: a, Profile: profile})
	}
	return out, nil
}

func (c *caller) SetApproval(ctx context.Context, principal string, status models.ApprovalStatus) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	_, err := c.db().ExecContext(ctx, `
		INSERT INTO approvals (principal, status, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(principal) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`, principal, string(status), c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to set approval: %w", err)
	}
	return nil
}

func (c *caller) AssignCallerUserRole(ctx context.Context, principal string, role models.UserRole) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	_, err := c.db().ExecContext(ctx, `
		INSERT INTO roles (principal, role) VALUES (?, ?)
		ON CONFLICT(principal) DO UPDATE SET role = excluded.role
	`, principal, string(role))
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// affected maps a zero-row update or delete to ErrNotFound
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return remote.ErrNotFound
	}
	return nil
}

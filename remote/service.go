// Package remote is the typed contract of the member data service and the
// lazily-connected, session-scoped handle used to reach it.
package remote

import (
	"context"
	"errors"

	"alumnihub/models"
)

var (
	// ErrUnauthorized is returned when the caller lacks the role or approval for an operation
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when the addressed record does not exist
	ErrNotFound = errors.New("not found")
	// ErrNotReady is returned when the handle has not finished connecting
	ErrNotReady = errors.New("backend handle not ready")
	// ErrConnectTimeout is returned when the handle did not connect in time
	ErrConnectTimeout = errors.New("backend connection timeout, please check your connection and try again")
)

// AccessService answers questions about the caller's own standing
type AccessService interface {
	IsCallerApproved(ctx context.Context) (bool, error)
	IsCallerAdmin(ctx context.Context) (bool, error)
	// GetCallerApprovalStatus is None when the caller never asked for approval
	GetCallerApprovalStatus(ctx context.Context) (models.Optional[models.ApprovalStatus], error)
	// RequestApproval is idempotent; re-requesting while pending is harmless
	RequestApproval(ctx context.Context) error
}

// ProfileService covers member profiles and the directory
type ProfileService interface {
	GetCallerUserProfile(ctx context.Context) (*models.AlumniProfile, error)
	SaveCallerUserProfile(ctx context.Context, profile models.AlumniProfile) error
	GetUserProfile(ctx context.Context, principal string) (*models.AlumniProfile, error)
	SearchAlumniProfiles(ctx context.Context, year *int, department *string) ([]models.AlumniProfile, error)
	GetGraduationYears(ctx context.Context) ([]int, error)
	GetDepartments(ctx context.Context) ([]string, error)
}

// ContentService covers events, announcements, gallery images and activities
type ContentService interface {
	GetEvents(ctx context.Context, past *bool) ([]models.Event, error)
	CreateEvent(ctx context.Context, event models.EditableEvent) error
	UpdateEvent(ctx context.Context, id int64, event models.EditableEvent) error
	DeleteEvent(ctx context.Context, id int64) error

	GetAnnouncements(ctx context.Context) ([]models.Announcement, error)
	GetAnnouncementsByYearRange(ctx context.Context, startYear, endYear *int) ([]models.Announcement, error)
	CreateAnnouncement(ctx context.Context, announcement models.EditableAnnouncement) error
	DeleteAnnouncement(ctx context.Context, id int64) error

	GetGalleryImages(ctx context.Context) ([]models.GalleryImage, error)
	CreateGalleryImage(ctx context.Context, image models.EditableGalleryImage) error
	UpdateGalleryImage(ctx context.Context, id int64, image models.EditableGalleryImage) error
	DeleteGalleryImage(ctx context.Context, id int64) error

	GetActivities(ctx context.Context) ([]models.Activity, error)
	CreateActivity(ctx context.Context, activity models.EditableActivity) error
	UpdateActivity(ctx context.Context, id int64, activity models.EditableActivity) error
	DeleteActivity(ctx context.Context, id int64) error
}

// AdminService covers the approval registry, roles and the snapshot log
type AdminService interface {
	ListApprovals(ctx context.Context) ([]models.UserApprovalInfo, error)
	ListApprovalsWithProfiles(ctx context.Context) ([]models.ApprovalWithProfile, error)
	SetApproval(ctx context.Context, principal string, status models.ApprovalStatus) error
	AssignCallerUserRole(ctx context.Context, principal string, role models.UserRole) error

	GetBackendStatus(ctx context.Context) (models.BackendStatus, error)
	ListBackendSnapshots(ctx context.Context) ([]models.BackendSnapshot, error)
	CreateBackendSnapshot(ctx context.Context) (int64, error)
	DeleteBackendSnapshot(ctx context.Context, id int64) (bool, error)
	ClearAllBackendSnapshots(ctx context.Context) error
}

// Service is a handle to the data service acting as one caller principal
type Service interface {
	Principal() string
	AccessService
	ProfileService
	ContentService
	AdminService
}

// Dialer constructs a Service for the given principal; an empty principal is
// the anonymous caller
type Dialer func(ctx context.Context, principal string) (Service, error)

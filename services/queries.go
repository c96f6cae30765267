package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"alumnihub/models"
	"alumnihub/query"
	"alumnihub/remote"
)

// Retry policy for the admin backend page reads
const (
	adminReadRetry      = 2
	adminReadRetryDelay = time.Second
)

// Queries exposes every data-service operation through the cache. Reads are
// keyed by operation and parameters; writes invalidate the operations listed
// in Invalidations.
type Queries struct {
	cache *query.Client
}

// NewQueries wraps a cache client
func NewQueries(cache *query.Client) *Queries {
	return &Queries{cache: cache}
}

// Cache returns the underlying cache client
func (q *Queries) Cache() *query.Client {
	return q.cache
}

// CallerApprovedQuery is the approval check for the binding's principal
func CallerApprovedQuery(b *remote.Binding) query.Query {
	return query.Query{
		Key: query.NewKey(OpIsCallerApproved).Scoped(b.Principal()),
		Fn: func(ctx context.Context) (any, error) {
			svc, err := b.Service()
			if err != nil {
				return nil, err
			}
			return svc.IsCallerApproved(ctx)
		},
	}
}

// CallerApprovalQuery is the caller's own approval entry
func CallerApprovalQuery(b *remote.Binding) query.Query {
	return query.Query{
		Key: query.NewKey(OpCallerApproval).Scoped(b.Principal()),
		Fn: func(ctx context.Context) (any, error) {
			svc, err := b.Service()
			if err != nil {
				return nil, err
			}
			return svc.GetCallerApprovalStatus(ctx)
		},
	}
}

// CallerAdminQuery is the admin-role check for the binding's principal
func CallerAdminQuery(b *remote.Binding) query.Query {
	return query.Query{
		Key: query.NewKey(OpIsAdmin).Scoped(b.Principal()),
		Fn: func(ctx context.Context) (any, error) {
			svc, err := b.Service()
			if err != nil {
				return nil, err
			}
			return svc.IsCallerAdmin(ctx)
		},
	}
}

// service waits for the binding to be usable
func service(ctx context.Context, b *remote.Binding) (remote.Service, error) {
	svc, err := b.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, connectivity(err)
	}
	return svc, nil
}

func get[T any](ctx context.Context, q *Queries, b *remote.Binding, key query.Key, fn func(ctx context.Context, svc remote.Service) (T, error)) (T, error) {
	var zero T
	svc, err := service(ctx, b)
	if err != nil {
		return zero, err
	}
	v, err := query.Get[T](ctx, q.cache, query.Query{
		Key: key,
		Fn: func(ctx context.Context) (any, error) {
			return fn(ctx, svc)
		},
	})
	return v, queryError(key.Op, err)
}

func getWithRetry[T any](ctx context.Context, q *Queries, b *remote.Binding, key query.Key, fn func(ctx context.Context, svc remote.Service) (T, error)) (T, error) {
	var zero T
	svc, err := service(ctx, b)
	if err != nil {
		return zero, err
	}
	v, err := query.Get[T](ctx, q.cache, query.Query{
		Key:        key,
		Retry:      adminReadRetry,
		RetryDelay: adminReadRetryDelay,
		Fn: func(ctx context.Context) (any, error) {
			return fn(ctx, svc)
		},
	})
	return v, queryError(key.Op, err)
}

// mutate runs a write and invalidates its blast radius on success
func (q *Queries) mutate(ctx context.Context, b *remote.Binding, m Mutation, fn func(ctx context.Context, svc remote.Service) error) error {
	svc, err := service(ctx, b)
	if err != nil {
		return err
	}
	if err := fn(ctx, svc); err != nil {
		return queryError(string(m), err)
	}
	q.cache.Invalidate(Invalidations[m]...)
	return nil
}

// CallerUserProfile returns the caller's profile, nil when none is saved
func (q *Queries) CallerUserProfile(ctx context.Context, b *remote.Binding) (*models.AlumniProfile, error) {
	key := query.NewKey(OpCurrentUserProfile).Scoped(b.Principal())
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) (*models.AlumniProfile, error) {
		return svc.GetCallerUserProfile(ctx)
	})
}

// SaveCallerUserProfile validates and stores the caller's profile
func (q *Queries) SaveCallerUserProfile(ctx context.Context, b *remote.Binding, profile models.AlumniProfile) error {
	profile.Normalize()
	if err := validation(profile.Validate(time.Now())); err != nil {
		return err
	}
	return q.mutate(ctx, b, MutationSaveCallerUserProfile, func(ctx context.Context, svc remote.Service) error {
		return svc.SaveCallerUserProfile(ctx, profile)
	})
}

// UserProfile returns another member's profile, nil when absent
func (q *Queries) UserProfile(ctx context.Context, b *remote.Binding, principal string) (*models.AlumniProfile, error) {
	key := query.NewKey(OpUserProfile, principal)
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) (*models.AlumniProfile, error) {
		return svc.GetUserProfile(ctx, principal)
	})
}

// SearchAlumniProfiles filters the directory by optional year and department
func (q *Queries) SearchAlumniProfiles(ctx context.Context, b *remote.Binding, year *int, department *string) ([]models.AlumniProfile, error) {
	key := query.NewKey(OpAlumniProfiles, year, department)
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) ([]models.AlumniProfile, error) {
		return svc.SearchAlumniProfiles(ctx, year, department)
	})
}

// GraduationYears returns distinct graduation years, newest first
func (q *Queries) GraduationYears(ctx context.Context, b *remote.Binding) ([]int, error) {
	key := query.NewKey(OpGraduationYears)
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) ([]int, error) {
		years, err := svc.GetGraduationYears(ctx)
		if err != nil {
			return nil, err
		}
		sort.Sort(sort.Reverse(sort.IntSlice(years)))
		return years, nil
	})
}

// Departments returns distinct departments in alphabetical order
func (q *Queries) Departments(ctx context.Context, b *remote.Binding) ([]string, error) {
	key := query.NewKey(OpDepartments)
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) ([]string, error) {
		depts, err := svc.GetDepartments(ctx)
		if err != nil {
			return nil, err
		}
		sort.Strings(depts)
		return depts, nil
	})
}

// Events lists events, past or upcoming or all when past is nil, soonest first
func (q *Queries) Events(ctx context.Context, b *remote.Binding, past *bool) ([]models.Event, error) {
	key := query.NewKey(OpEvents, past)
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) ([]models.Event, error) {
		events, err := svc.GetEvents(ctx, past)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].StartsAt.Before(events[j].StartsAt)
		})
		return events, nil
	})
}

// CreateEvent adds an event
func (q *Queries) CreateEvent(ctx context.Context, b *remote.Binding, event models.EditableEvent) error {
	if err := validation(event.Validate()); err != nil {
		return err
	}
	return q.mutate(ctx, b, MutationCreateEvent, func(ctx context.Context, svc remote.Service) error {
		return svc.CreateEvent(ctx, event)
	})
}

// UpdateEvent replaces an event
func (q *Queries) UpdateEvent(ctx context.Context, b *remote.Binding, id int64, event models.EditableEvent) error {
	if err := validation(event.Validate()); err != nil {
		return err
	}
	return q.mutate(ctx, b, MutationUpdateEvent, func(ctx context.Context, svc remote.Service) error {
		return svc.UpdateEvent(ctx, id, event)
	})
}

// DeleteEvent removes an event
func (q *Queries) DeleteEvent(ctx context.Context, b *remote.Binding, id int64) error {
	return q.mutate(ctx, b, MutationDeleteEvent, func(ctx context.Context, svc remote.Service) error {
		return svc.DeleteEvent(ctx, id)
	})
}

// Announcements lists announcements newest first with rendered content.
// Either year bound may be nil.
func (q *Queries) Announcements(ctx context.Context, b *remote.Binding, startYear, endYear *int) ([]models.Announcement, error) {
	key := query.NewKey(OpAnnouncements, startYear, endYear)
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) ([]models.Announcement, error) {
		var (
			list []models.Announcement
			err  error
		)
		if startYear == nil && endYear == nil {
			list, err = svc.GetAnnouncements(ctx)
		} else {
			list, err = svc.GetAnnouncementsByYearRange(ctx, startYear, endYear)
		}
		if err != nil {
			return nil, err
		}
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
		for i := range list {
			html, err := RenderMarkdown(list[i].Content)
			if err != nil {
				log.Printf("Error rendering announcement %d: %v", list[i].ID, err)
				continue
			}
			list[i].ContentHTML = html
		}
		return list, nil
	})
}

// CreateAnnouncement publishes an announcement
func (q *Queries) CreateAnnouncement(ctx context.Context, b *remote.Binding, a models.EditableAnnouncement) error {
	if err := validation(a.Validate()); err != nil {
		return err
	}
	return q.mutate(ctx, b, MutationCreateAnnouncement, func(ctx context.Context, svc remote.Service) error {
		return svc.CreateAnnouncement(ctx, a)
	})
}

// DeleteAnnouncement removes an announcement
func (q *Queries) DeleteAnnouncement(ctx context.Context, b *remote.Binding, id int64) error {
	return q.mutate(ctx, b, MutationDeleteAnnouncement, func(ctx context.Context, svc remote.Service) error {
		return svc.DeleteAnnouncement(ctx, id)
	})
}

// GalleryImages lists the gallery
func (q *Queries) GalleryImages(ctx context.Context, b *remote.Binding) ([]models.GalleryImage, error) {
	key := query.NewKey(OpGalleryImages)
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) ([]models.GalleryImage, error) {
		return svc.GetGalleryImages(ctx)
	})
}

// CreateGalleryImage adds a gallery image
func (q *Queries) CreateGalleryImage(ctx context.Context, b *remote.Binding, img models.EditableGalleryImage) error {
	if err := validation(img.Validate()); err != nil {
		return err
	}
	return q.mutate(ctx, b, MutationCreateGalleryImage, func(ctx context.Context, svc remote.Service) error {
		return svc.CreateGalleryImage(ctx, img)
	})
}

// UpdateGalleryImage replaces a gallery image
func (q *Queries) UpdateGalleryImage(ctx context.Context, b *remote.Binding, id int64, img models.EditableGalleryImage) error {
	if err := validation(img.Validate()); err != nil {
		return err
	}
	return q.mutate(ctx, b, MutationUpdateGalleryImage, func(ctx context.Context, svc remote.Service) error {
		return svc.UpdateGalleryImage(ctx, id, img)
	})
}

// DeleteGalleryImage removes a gallery image
func (q *Queries) DeleteGalleryImage(ctx context.Context, b *remote.Binding, id int64) error {
	return q.mutate(ctx, b, MutationDeleteGalleryImage, func(ctx context.Context, svc remote.Service) error {
		return svc.DeleteGalleryImage(ctx, id)
	})
}

// Activities lists activities
func (q *Queries) Activities(ctx context.Context, b *remote.Binding) ([]models.Activity, error) {
	key := query.NewKey(OpActivities)
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) ([]models.Activity, error) {
		return svc.GetActivities(ctx)
	})
}

// CreateActivity adds an activity
func (q *Queries) CreateActivity(ctx context.Context, b *remote.Binding, a models.EditableActivity) error {
	if err := validation(a.Validate()); err != nil {
		return err
	}
	return q.mutate(ctx, b, MutationCreateActivity, func(ctx context.Context, svc remote.Service) error {
		return svc.CreateActivity(ctx, a)
	})
}

// UpdateActivity replaces an activity
func (q *Queries) UpdateActivity(ctx context.Context, b *remote.Binding, id int64, a models.EditableActivity) error {
	if err := validation(a.Validate()); err != nil {
		return err
	}
	return q.mutate(ctx, b, MutationUpdateActivity, func(ctx context.Context, svc remote.Service) error {
		return svc.UpdateActivity(ctx, id, a)
	})
}

// DeleteActivity removes an activity
func (q *Queries) DeleteActivity(ctx context.Context, b *remote.Binding, id int64) error {
	return q.mutate(ctx, b, MutationDeleteActivity, func(ctx context.Context, svc remote.Service) error {
		return svc.DeleteActivity(ctx, id)
	})
}

// RequestApproval asks an administrator to approve the caller
func (q *Queries) RequestApproval(ctx context.Context, b *remote.Binding) error {
	return q.mutate(ctx, b, MutationRequestApproval, func(ctx context.Context, svc remote.Service) error {
		return svc.RequestApproval(ctx)
	})
}

// Approvals lists every approval entry joined with its profile
func (q *Queries) Approvals(ctx context.Context, b *remote.Binding) ([]models.ApprovalWithProfile, error) {
	key := query.NewKey(OpApprovals).Scoped(b.Principal())
	return get(ctx, q, b, key, func(ctx context.Context, svc remote.Service) ([]models.ApprovalWithProfile, error) {
		return svc.ListApprovalsWithProfiles(ctx)
	})
}

// SetApproval changes a member's approval status
func (q *Queries) SetApproval(ctx context.Context, b *remote.Binding, principal string, status models.ApprovalStatus) error {
	return q.mutate(ctx, b, MutationSetApproval, func(ctx context.Context, svc remote.Service) error {
		return svc.SetApproval(ctx, principal, status)
	})
}

// AssignRole changes a member's role
func (q *Queries) AssignRole(ctx context.Context, b *remote.Binding, principal string, role models.UserRole) error {
	return q.mutate(ctx, b, MutationAssignRole, func(ctx context.Context, svc remote.Service) error {
		return svc.AssignCallerUserRole(ctx, principal, role)
	})
}

// BackendStatus returns the live counters
func (q *Queries) BackendStatus(ctx context.Context, b *remote.Binding) (models.BackendStatus, error) {
	key := query.NewKey(OpBackendStatus).Scoped(b.Principal())
	return getWithRetry(ctx, q, b, key, func(ctx context.Context, svc remote.Service) (models.BackendStatus, error) {
		return svc.GetBackendStatus(ctx)
	})
}

// BackendSnapshots lists the snapshot log
func (q *Queries) BackendSnapshots(ctx context.Context, b *remote.Binding) ([]models.BackendSnapshot, error) {
	key := query.NewKey(OpBackendSnapshots).Scoped(b.Principal())
	return getWithRetry(ctx, q, b, key, func(ctx context.Context, svc remote.Service) ([]models.BackendSnapshot, error) {
		return svc.ListBackendSnapshots(ctx)
	})
}

// CreateSnapshot captures the current counters into the log
func (q *Queries) CreateSnapshot(ctx context.Context, b *remote.Binding) (int64, error) {
	var id int64
	err := q.mutate(ctx, b, MutationCreateSnapshot, func(ctx context.Context, svc remote.Service) error {
		var err error
		id, err = svc.CreateBackendSnapshot(ctx)
		return err
	})
	return id, err
}

// DeleteSnapshot removes one snapshot; a missing id is an error
func (q *Queries) DeleteSnapshot(ctx context.Context, b *remote.Binding, id int64) error {
	return q.mutate(ctx, b, MutationDeleteSnapshot, func(ctx context.Context, svc remote.Service) error {
		ok, err := svc.DeleteBackendSnapshot(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return remote.ErrNotFound
		}
		return nil
	})
}

// ClearSnapshots empties the snapshot log
func (q *Queries) ClearSnapshots(ctx context.Context, b *remote.Binding) error {
	return q.mutate(ctx, b, MutationClearSnapshots, func(ctx context.Context, svc remote.Service) error {
		return svc.ClearAllBackendSnapshots(ctx)
	})
}

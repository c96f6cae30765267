// Package remotetest provides an in-memory data service for tests.
package remotetest

import (
	"context"
	"sync"

	"alumnihub/models"
	"alumnihub/remote"
)

// Fake is a scriptable remote.Service. Hooks left nil fall back to the
// in-memory state; call counts are recorded per operation name.
type Fake struct {
	mu sync.Mutex

	Caller   string
	Approved bool
	Admin    bool
	Profile  *models.AlumniProfile
	Profiles []models.AlumniProfile
	Events   []models.Event
	News     []models.Announcement
	Images   []models.GalleryImage
	Acts     []models.Activity
	Approval []models.UserApprovalInfo
	Status   models.BackendStatus
	Snaps    []models.BackendSnapshot

	IsCallerApprovedFn func(ctx context.Context) (bool, error)
	IsCallerAdminFn    func(ctx context.Context) (bool, error)
	RequestApprovalFn  func(ctx context.Context) error

	calls map[string]int
}

var _ remote.Service = (*Fake)(nil)

// NewFake returns a fake acting as principal
func NewFake(principal string) *Fake {
	return &Fake{Caller: principal, calls: make(map[string]int)}
}

// Dialer returns a remote.Dialer that always hands out f
func (f *Fake) Dialer() remote.Dialer {
	return func(ctx context.Context, principal string) (remote.Service, error) {
		f.record("dial")
		return f, nil
	}
}

// Calls returns how many times op was invoked
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Fake) record(op string) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
	f.mu.Unlock()
}

func (f *Fake) Principal() string { return f.Caller }

func (f *Fake) IsCallerApproved(ctx context.Context) (bool, error) {
	f.record("isCallerApproved")
	if f.IsCallerApprovedFn != nil {
		return f.IsCallerApprovedFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Approved || f.Admin, nil
}

func (f *Fake) IsCallerAdmin(ctx context.Context) (bool, error) {
	f.record("isCallerAdmin")
	if f.IsCallerAdminFn != nil {
		return f.IsCallerAdminFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Admin, nil
}

func (f *Fake) GetCallerApprovalStatus(ctx context.Context) (models.Optional[models.ApprovalStatus], error) {
	f.record("getCallerApprovalStatus")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.Approval {
		if a.Principal == f.Caller {
			return models.Some(a.Status), nil
		}
	}
	return models.None[models.ApprovalStatus](), nil
}

// RequestApproval files a pending entry for the caller unless one is
// already pending or approved
func (f *Fake) RequestApproval(ctx context.Context) error {
	f.record("requestApproval")
	if f.RequestApprovalFn != nil {
		return f.RequestApprovalFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Approval {
		if f.Approval[i].Principal == f.Caller {
			if f.Approval[i].Status == models.ApprovalRejected {
				f.Approval[i].Status = models.ApprovalPending
			}
			return nil
		}
	}
	f.Approval = append(f.Approval, models.UserApprovalInfo{Principal: f.Caller, Status: models.ApprovalPending})
	return nil
}

func (f *Fake) GetCallerUserProfile(ctx context.Context) (*models.AlumniProfile, error) {
	f.record("getCallerUserProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Profile, nil
}

func (f *Fake) SaveCallerUserProfile(ctx context.Context, profile models.AlumniProfile) error {
	f.record("saveCallerUserProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	profile.Principal = f.Caller
	f.Profile = &profile
	return nil
}

func (f *Fake) GetUserProfile(ctx context.Context, principal string) (*models.AlumniProfile, error) {
	f.record("getUserProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Profiles {
		if f.Profiles[i].Principal == principal {
			p := f.Profiles[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *Fake) SearchAlumniProfiles(ctx context.Context, year *int, department *string) ([]models.AlumniProfile, error) {
	f.record("searchAlumniProfiles")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AlumniProfile
	for _, p := range f.Profiles {
		if year != nil && p.GraduationYear != *year {
			continue
		}
		if department != nil && p.Department != *department {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *Fake) GetGraduationYears(ctx context.Context) ([]int, error) {
	f.record("getGraduationYears")
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[int]bool)
	var out []int
	for _, p := range f.Profiles {
		if !seen[p.GraduationYear] {
			seen[p.GraduationYear] = true
			out = append(out, p.GraduationYear)
		}
	}
	return out, nil
}

func (f *Fake) GetDepartments(ctx context.Context) ([]string, error) {
	f.record("getDepartments")
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, p := range f.Profiles {
		if !seen[p.Department] {
			seen[p.Department] = true
			out = append(out, p.Department)
		}
	}
	return out, nil
}

func (f *Fake) GetEvents(ctx context.Context, past *bool) ([]models.Event, error) {
	f.record("getEvents")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Event(nil), f.Events...), nil
}

func (f *Fake) CreateEvent(ctx context.Context, event models.EditableEvent) error {
	f.record("createEvent")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, models.Event{
		ID:          int64(len(f.Events) + 1),
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartsAt:    event.StartsAt,
	})
	return nil
}

func (f *Fake) UpdateEvent(ctx context.Context, id int64, event models.EditableEvent) error {
	f.record("updateEvent")
	return nil
}

func (f *Fake) DeleteEvent(ctx context.Context, id int64) error {
	f.record("deleteEvent")
	return nil
}

func (f *Fake) GetAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	f.record("getAnnouncements")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Announcement(nil), f.News...), nil
}

func (f *Fake) GetAnnouncementsByYearRange(ctx context.Context, startYear, endYear *int) ([]models.Announcement, error) {
	f.record("getAnnouncementsByYearRange")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Announcement
	for _, a := range f.News {
		y := a.CreatedAt.Year()
		if startYear != nil && y < *startYear {
			continue
		}
		if endYear != nil && y > *endYear {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *Fake) CreateAnnouncement(ctx context.Context, announcement models.EditableAnnouncement) error {
	f.record("createAnnouncement")
	return nil
}

func (f *Fake) DeleteAnnouncement(ctx context.Context, id int64) error {
	f.record("deleteAnnouncement")
	return nil
}

func (f *Fake) GetGalleryImages(ctx context.Context) ([]models.GalleryImage, error) {
	f.record("getGalleryImages")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.GalleryImage(nil), f.Images...), nil
}

func (f *Fake) CreateGalleryImage(ctx context.Context, image models.EditableGalleryImage) error {
	f.record("createGalleryImage")
	return nil
}

func (f *Fake) UpdateGalleryImage(ctx context.Context, id int64, image models.EditableGalleryImage) error {
	f.record("updateGalleryImage")
	return nil
}

func (f *Fake) DeleteGalleryImage(ctx context.Context, id int64) error {
	f.record("deleteGalleryImage")
	return nil
}

func (f *Fake) GetActivities(ctx context.Context) ([]models.Activity, error) {
	f.record("getActivities")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Activity(nil), f.Acts...), nil
}

func (f *Fake) CreateActivity(ctx context.Context, activity models.EditableActivity) error {
	f.record("createActivity")
	return nil
}

func (f *Fake) UpdateActivity(ctx context.Context, id int64, activity models.EditableActivity) error {
	f.record("updateActivity")
	return nil
}

func (f *Fake) DeleteActivity(ctx context.Context, id int64) error {
	f.record("deleteActivity")
	return nil
}

func (f *Fake) ListApprovals(ctx context.Context) ([]models.UserApprovalInfo, error) {
	f.record("listApprovals")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.UserApprovalInfo(nil), f.Approval...), nil
}

func (f *Fake) ListApprovalsWithProfiles(ctx context.Context) ([]models.ApprovalWithProfile, error) {
	f.record("listApprovalsWithProfiles")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ApprovalWithProfile, 0, len(f.Approval))
	for _, a := range f.Approval {
		out = append(out, models.ApprovalWithProfile{UserApprovalInfo: a})
	}
	return out, nil
}

func (f *Fake) SetApproval(ctx context.Context, principal string, status models.ApprovalStatus) error {
	f.record("setApproval")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Approval {
		if f.Approval[i].Principal == principal {
			f.Approval[i].Status = status
			return nil
		}
	}
	f.Approval = append(f.Approval, models.UserApprovalInfo{Principal: principal, Status: status})
	return nil
}

func (f *Fake) AssignCallerUserRole(ctx context.Context, principal string, role models.UserRole) error {
	f.record("assignCallerUserRole")
	return nil
}

func (f *Fake) GetBackendStatus(ctx context.Context) (models.BackendStatus, error) {
	f.record("getBackendStatus")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Status, nil
}

func (f *Fake) ListBackendSnapshots(ctx context.Context) ([]models.BackendSnapshot, error) {
	f.record("listBackendSnapshots")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.BackendSnapshot(nil), f.Snaps...), nil
}

func (f *Fake) CreateBackendSnapshot(ctx context.Context) (int64, error) {
	f.record("createBackendSnapshot")
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.Snaps) + 1)
	f.Snaps = append(f.Snaps, models.BackendSnapshot{ID: id, BackendStatus: f.Status})
	return id, nil
}

func (f *Fake) DeleteBackendSnapshot(ctx context.Context, id int64) (bool, error) {
	f.record("deleteBackendSnapshot")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.Snaps {
		if s.ID == id {
			f.Snaps = append(f.Snaps[:i], f.Snaps[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) ClearAllBackendSnapshots(ctx context.Context) error {
	f.record("clearAllBackendSnapshots")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Snaps = nil
	return nil
}

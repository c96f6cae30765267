package models

import "time"

// BackendStatus holds the live counters of the data service
type BackendStatus struct {
	TotalAlumniProfiles int64 `json:"totalAlumniProfiles"`
	TotalEvents         int64 `json:"totalEvents"`
	TotalAnnouncements  int64 `json:"totalAnnouncements"`
	TotalGalleryImages  int64 `json:"totalGalleryImages"`
	TotalActivities     int64 `json:"totalActivities"`
	TotalApprovedUsers  int64 `json:"totalApprovedUsers"`
	TotalPendingUsers   int64 `json:"totalPendingUsers"`
}

// BackendSnapshot is a captured BackendStatus; it is immutable once stored
type BackendSnapshot struct {
	ID         int64     `json:"id"`
	CapturedAt time.Time `json:"capturedAt"`
	BackendStatus
}

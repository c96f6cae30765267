package models

import (
	"strings"
	"time"
)

// Event is an association event
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
}

// EditableEvent is the writable part of an event
type EditableEvent struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
}

// Validate checks the event form
func (e EditableEvent) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(e.Location) == "" {
		errs = append(errs, FieldError{Field: "location", Message: "location is required"})
	}
	if e.StartsAt.IsZero() {
		errs = append(errs, FieldError{Field: "startsAt", Message: "start time is required"})
	}
	return errs
}

// Announcement is a news post; ContentHTML is rendered from the markdown Content
type Announcement struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"contentHtml,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EditableAnnouncement is the writable part of an announcement
type EditableAnnouncement struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks the announcement form
func (a EditableAnnouncement) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(a.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(a.Content) == "" {
		errs = append(errs, FieldError{Field: "content", Message: "content is required"})
	}
	return errs
}

// GalleryImage is a photo in the association gallery
type GalleryImage struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EditableGalleryImage is the writable part of a gallery image
type EditableGalleryImage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// Validate checks the gallery form
func (g EditableGalleryImage) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(g.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if err := ValidateImageURL(g.ImageURL); err != nil {
		errs = append(errs, FieldError{Field: "imageUrl", Message: err.Error()})
	}
	return errs
}

// Activity is a past association activity with photos
type Activity struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Photos      []string  `json:"photos"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EditableActivity is the writable part of an activity
type EditableActivity struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
}

// Validate checks the activity form
func (a EditableActivity) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(a.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	for _, photo := range a.Photos {
		if err := ValidateImageURL(photo); err != nil {
			errs = append(errs, FieldError{Field: "photos", Message: err.Error()})
			break
		}
	}
	return errs
}

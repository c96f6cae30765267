package handlers

import (
	"net/http"
	"strconv"

	"alumnihub/models"
)

// GetEvents lists events; ?past=true|false narrows to past or upcoming
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	var past *bool
	if raw := r.URL.Query().Get("past"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, "Invalid past flag")
			return
		}
		past = &v
	}

	events, err := h.Queries.Events(r.Context(), h.sessionOf(r).Binding, past)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var e models.EditableEvent
	if err := decodeJSON(r, &e); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := h.Queries.CreateEvent(r.Context(), h.sessionOf(r).Binding, e); err != nil {
		notifyError(w, err, "Failed to save event. Please try again.")
		return
	}
	notify(w, http.StatusCreated, "Event created successfully!")
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "Invalid event ID")
		return
	}
	var e models.EditableEvent
	if err := decodeJSON(r, &e); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := h.Queries.UpdateEvent(r.Context(), h.sessionOf(r).Binding, id, e); err != nil {
		notifyError(w, err, "Failed to save event. Please try again.")
		return
	}
	notify(w, http.StatusOK, "Event updated successfully!")
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "Invalid event ID")
		return
	}
	if err := h.Queries.DeleteEvent(r.Context(), h.sessionOf(r).Binding, id); err != nil {
		notifyError(w, err, "Failed to delete event. Please try again.")
		return
	}
	notify(w, http.StatusOK, "Event deleted successfully!")
}

// GetAnnouncements lists announcements newest first; ?startYear and
// ?endYear bound the creation year
func (h *Handler) GetAnnouncements(w http.ResponseWriter, r *http.Request) {
	start, err := optionalInt(r, "startYear")
	if err != nil {
		badRequest(w, "Invalid startYear")
		return
	}
	end, err := optionalInt(r, "endYear")
	if err != nil {
		badRequest(w, "Invalid endYear")
		return
	}
	if start != nil && end != nil && *start > *end {
		badRequest(w, "startYear is after endYear")
		return
	}

	list, err := h.Queries.Announcements(r.Context(), h.sessionOf(r).Binding, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var a models.EditableAnnouncement
	if err := decodeJSON(r, &a); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := h.Queries.CreateAnnouncement(r.Context(), h.sessionOf(r).Binding, a); err != nil {
		notifyError(w, err, "Failed to create announcement. Please try again.")
		return
	}
	notify(w, http.StatusCreated, "Announcement created successfully!")
}

func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "Invalid announcement ID")
		return
	}
	if err := h.Queries.DeleteAnnouncement(r.Context(), h.sessionOf(r).Binding, id); err != nil {
		notifyError(w, err, "Failed to delete announcement")
		return
	}
	notify(w, http.StatusOK, "Announcement deleted successfully")
}

func (h *Handler) GetGallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.Queries.GalleryImages(r.Context(), h.sessionOf(r).Binding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

func (h *Handler) CreateGalleryImage(w http.ResponseWriter, r *http.Request) {
	var img models.EditableGalleryImage
	if err := decodeJSON(r, &img); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := h.Queries.CreateGalleryImage(r.Context(), h.sessionOf(r).Binding, img); err != nil {
		notifyError(w, err, "Failed to save gallery image")
		return
	}
	notify(w, http.StatusCreated, "Gallery image created successfully")
}

func (h *Handler) UpdateGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "Invalid image ID")
		return
	}
	var img models.EditableGalleryImage
	if err := decodeJSON(r, &img); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := h.Queries.UpdateGalleryImage(r.Context(), h.sessionOf(r).Binding, id, img); err != nil {
		notifyError(w, err, "Failed to save gallery image")
		return
	}
	notify(w, http.StatusOK, "Gallery image updated successfully")
}

func (h *Handler) DeleteGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "Invalid image ID")
		return
	}
	if err := h.Queries.DeleteGalleryImage(r.Context(), h.sessionOf(r).Binding, id); err != nil {
		notifyError(w, err, "Failed to delete gallery image")
		return
	}
	notify(w, http.StatusOK, "Gallery image deleted successfully")
}

func (h *Handler) GetActivities(w http.ResponseWriter, r *http.Request) {
	acts, err := h.Queries.Activities(r.Context(), h.sessionOf(r).Binding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}

func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var a models.EditableActivity
	if err := decodeJSON(r, &a); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := h.Queries.CreateActivity(r.Context(), h.sessionOf(r).Binding, a); err != nil {
		notifyError(w, err, "Failed to save activity")
		return
	}
	notify(w, http.StatusCreated, "Activity created successfully")
}

func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "Invalid activity ID")
		return
	}
	var a models.EditableActivity
	if err := decodeJSON(r, &a); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := h.Queries.UpdateActivity(r.Context(), h.sessionOf(r).Binding, id, a); err != nil {
		notifyError(w, err, "Failed to save activity")
		return
	}
	notify(w, http.StatusOK, "Activity updated successfully")
}

func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "Invalid activity ID")
		return
	}
	if err := h.Queries.DeleteActivity(r.Context(), h.sessionOf(r).Binding, id); err != nil {
		notifyError(w, err, "Failed to delete activity")
		return
	}
	notify(w, http.StatusOK, "Activity deleted successfully")
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"alumnihub/models"
	"alumnihub/table"
)

type approvalRequest struct {
	Status string `json:"status"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type sortRequest struct {
	Column string `json:"column"`
}

// snapshotTable is the admin snapshot log with the viewer's settings
type snapshotTable struct {
	table.View
	Search        string          `json:"search"`
	SortColumn    table.Column    `json:"sortColumn"`
	SortDirection table.Direction `json:"sortDirection"`
	FilterColumn  table.Column    `json:"filterColumn"`
	Min           *float64        `json:"min"`
	Max           *float64        `json:"max"`
	TotalRows     int             `json:"totalRows"`
}

// GetApprovals lists approval entries with member profiles
func (h *Handler) GetApprovals(w http.ResponseWriter, r *http.Request) {
	list, err := h.Queries.Approvals(r.Context(), h.sessionOf(r).Binding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// SetApproval approves, rejects or resets a member
func (h *Handler) SetApproval(w http.ResponseWriter, r *http.Request) {
	principal := mux.Vars(r)["principal"]

	var req approvalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	status, err := models.ParseApprovalStatus(req.Status)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.Queries.SetApproval(r.Context(), h.sessionOf(r).Binding, principal, status); err != nil {
		notifyError(w, err, "Failed to update member status. Please try again.")
		return
	}

	verb := "updated"
	switch status {
	case models.ApprovalApproved:
		verb = "approved"
	case models.ApprovalRejected:
		verb = "rejected"
	}
	notify(w, http.StatusOK, fmt.Sprintf("Member %s successfully", verb))
}

// AssignRole changes a member's role
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	principal := mux.Vars(r)["principal"]

	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	role, err := models.ParseUserRole(req.Role)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.Queries.AssignRole(r.Context(), h.sessionOf(r).Binding, principal, role); err != nil {
		notifyError(w, err, "Failed to update member role. Please try again.")
		return
	}
	notify(w, http.StatusOK, "Member role updated successfully")
}

// GetBackendStatus returns the live counters
func (h *Handler) GetBackendStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Queries.BackendStatus(r.Context(), h.sessionOf(r).Binding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetSnapshots returns the snapshot log through the caller's table settings.
// Query parameters present on the request update those settings first.
func (h *Handler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	s := h.sessionOf(r)
	if err := applyTableParams(s.Table, r); err != nil {
		badRequest(w, err.Error())
		return
	}

	rows, err := h.Queries.BackendSnapshots(r.Context(), s.Binding)
	if err != nil {
		writeError(w, err)
		return
	}

	view := s.Table.Apply(rows)
	p := s.Table.Params()
	writeJSON(w, http.StatusOK, snapshotTable{
		View:          view,
		Search:        p.Search,
		SortColumn:    p.SortColumn,
		SortDirection: p.SortDirection,
		FilterColumn:  p.FilterColumn,
		Min:           p.Min,
		Max:           p.Max,
		TotalRows:     len(rows),
	})
}

// SortSnapshots toggles the sort on a column and resets to the first page
func (h *Handler) SortSnapshots(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	col, err := table.ParseSortColumn(req.Column)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	s := h.sessionOf(r)
	s.Table.ToggleSort(col)
	p := s.Table.Params()
	writeJSON(w, http.StatusOK, map[string]any{
		"sortColumn":    p.SortColumn,
		"sortDirection": p.SortDirection,
		"pageIndex":     p.PageIndex,
	})
}

// CreateSnapshot captures the current counters
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := h.Queries.CreateSnapshot(r.Context(), h.sessionOf(r).Binding)
	if err != nil {
		notifyError(w, err, "Failed to capture snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, mutationResult{
		Notification: models.Notification{Level: models.NotifySuccess, Message: "Snapshot captured successfully"},
		ID:           &id,
	})
}

// DeleteSnapshot removes one snapshot
func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "Invalid snapshot ID")
		return
	}
	if err := h.Queries.DeleteSnapshot(r.Context(), h.sessionOf(r).Binding, id); err != nil {
		notifyError(w, err, "Failed to delete snapshot")
		return
	}
	notify(w, http.StatusOK, "Snapshot deleted successfully")
}

// ClearSnapshots removes every snapshot
func (h *Handler) ClearSnapshots(w http.ResponseWriter, r *http.Request) {
	if err := h.Queries.ClearSnapshots(r.Context(), h.sessionOf(r).Binding); err != nil {
		notifyError(w, err, "Failed to clear snapshots")
		return
	}
	notify(w, http.StatusOK, "All snapshots cleared successfully")
}

// applyTableParams copies table settings present in the query string.
// An empty min or max clears that bound.
func applyTableParams(st *table.State, r *http.Request) error {
	q := r.URL.Query()

	if _, ok := q["search"]; ok {
		st.SetSearch(q.Get("search"))
	}

	if _, ok := q["filter"]; ok {
		col, err := table.ParseFilterColumn(q.Get("filter"))
		if err != nil {
			return err
		}
		min, err := optionalFloat(q.Get("min"))
		if err != nil {
			return fmt.Errorf("invalid min: %w", err)
		}
		max, err := optionalFloat(q.Get("max"))
		if err != nil {
			return fmt.Errorf("invalid max: %w", err)
		}
		st.SetFilter(col, min, max)
	}

	if raw := q.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return fmt.Errorf("invalid pageSize: %q", raw)
		}
		st.SetPageSize(size)
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid page: %q", raw)
		}
		st.SetPage(page)
	}
	return nil
}

func optionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Package table derives a display page of backend snapshots from the
// snapshot log and the viewer's search, filter, sort and page settings.
package table

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"alumnihub/models"
)

// Column names a sortable or filterable snapshot field
type Column string

const (
	ColumnNone                Column = "none"
	ColumnCapturedAt          Column = "capturedAt"
	ColumnTotalAlumniProfiles Column = "totalAlumniProfiles"
	ColumnTotalEvents         Column = "totalEvents"
	ColumnTotalAnnouncements  Column = "totalAnnouncements"
	ColumnTotalGalleryImages  Column = "totalGalleryImages"
	ColumnTotalActivities     Column = "totalActivities"
	ColumnTotalApprovedUsers  Column = "totalApprovedUsers"
	ColumnTotalPendingUsers   Column = "totalPendingUsers"
)

var counterColumns = []Column{
	ColumnTotalAlumniProfiles,
	ColumnTotalEvents,
	ColumnTotalAnnouncements,
	ColumnTotalGalleryImages,
	ColumnTotalActivities,
	ColumnTotalApprovedUsers,
	ColumnTotalPendingUsers,
}

// ParseSortColumn accepts the timestamp or any counter column
func ParseSortColumn(s string) (Column, error) {
	c := Column(s)
	if c == ColumnCapturedAt || isCounter(c) {
		return c, nil
	}
	return "", fmt.Errorf("invalid sort column: %q", s)
}

// ParseFilterColumn accepts "none" or any counter column
func ParseFilterColumn(s string) (Column, error) {
	c := Column(s)
	if c == "" || c == ColumnNone {
		return ColumnNone, nil
	}
	if isCounter(c) {
		return c, nil
	}
	return "", fmt.Errorf("invalid filter column: %q", s)
}

func isCounter(c Column) bool {
	for _, cc := range counterColumns {
		if cc == c {
			return true
		}
	}
	return false
}

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Defaults for a fresh view
const (
	DefaultSortColumn    = ColumnCapturedAt
	DefaultSortDirection = Desc
	DefaultPageSize      = 25
)

// Params are the viewer-controlled settings. Nil bounds are unbounded.
type Params struct {
	Search        string
	SortColumn    Column
	SortDirection Direction
	FilterColumn  Column
	Min           *float64
	Max           *float64
	PageIndex     int
	PageSize      int
}

// DefaultParams returns the settings of a fresh view
func DefaultParams() Params {
	return Params{
		SortColumn:    DefaultSortColumn,
		SortDirection: DefaultSortDirection,
		FilterColumn:  ColumnNone,
		PageSize:      DefaultPageSize,
	}
}

// View is the derived output. ProcessedRows is searched, filtered and sorted
// but not paginated. PageIndex is the effective page after bounds correction.
type View struct {
	ProcessedRows []models.BackendSnapshot `json:"processedRows"`
	PaginatedRows []models.BackendSnapshot `json:"paginatedRows"`
	TotalPages    int                      `json:"totalPages"`
	PageIndex     int                      `json:"pageIndex"`
	PageSize      int                      `json:"pageSize"`
}

// TimestampLayout is how capturedAt is displayed and searched
const TimestampLayout = "1/2/2006, 3:04:05 PM"

var fold = cases.Fold()

// Compute runs search, range filter, sort and pagination in that order.
// rows is never modified.
func Compute(rows []models.BackendSnapshot, p Params) View {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}

	out := make([]models.BackendSnapshot, 0, len(rows))
	term := fold.String(strings.TrimSpace(p.Search))
	for _, r := range rows {
		if term != "" && !matches(r, term) {
			continue
		}
		if !inRange(r, p) {
			continue
		}
		out = append(out, r)
	}

	sortRows(out, p.SortColumn, p.SortDirection)

	totalPages := int(math.Ceil(float64(len(out)) / float64(p.PageSize)))
	if totalPages < 1 {
		totalPages = 1
	}
	page := p.PageIndex
	if page < 0 || page >= totalPages {
		page = 0
	}

	start := page * p.PageSize
	end := start + p.PageSize
	if start > len(out) {
		start = len(out)
	}
	if end > len(out) {
		end = len(out)
	}

	return View{
		ProcessedRows: out,
		PaginatedRows: out[start:end:end],
		TotalPages:    totalPages,
		PageIndex:     page,
		PageSize:      p.PageSize,
	}
}

// searchFields are the displayed values of a row
func searchFields(r models.BackendSnapshot) []string {
	fields := make([]string, 0, len(counterColumns)+1)
	fields = append(fields, r.CapturedAt.UTC().Format(TimestampLayout))
	for _, c := range counterColumns {
		fields = append(fields, strconv.FormatInt(value(r, c), 10))
	}
	return fields
}

func matches(r models.BackendSnapshot, term string) bool {
	for _, f := range searchFields(r) {
		if strings.Contains(fold.String(f), term) {
			return true
		}
	}
	return false
}

func inRange(r models.BackendSnapshot, p Params) bool {
	if p.FilterColumn == "" || p.FilterColumn == ColumnNone {
		return true
	}
	v := float64(value(r, p.FilterColumn))
	if p.Min != nil && v < *p.Min {
		return false
	}
	if p.Max != nil && v > *p.Max {
		return false
	}
	return true
}

func sortRows(rows []models.BackendSnapshot, col Column, dir Direction) {
	if col == "" {
		col = DefaultSortColumn
	}
	less := func(a, b models.BackendSnapshot) int {
		if col == ColumnCapturedAt {
			return a.CapturedAt.Compare(b.CapturedAt)
		}
		va, vb := value(a, col), value(b, col)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
		return 0
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := less(rows[i], rows[j])
		if dir == Asc {
			return c < 0
		}
		return c > 0
	})
}

func value(r models.BackendSnapshot, c Column) int64 {
	switch c {
	case ColumnTotalAlumniProfiles:
		return r.TotalAlumniProfiles
	case ColumnTotalEvents:
		return r.TotalEvents
	case ColumnTotalAnnouncements:
		return r.TotalAnnouncements
	case ColumnTotalGalleryImages:
		return r.TotalGalleryImages
	case ColumnTotalActivities:
		return r.TotalActivities
	case ColumnTotalApprovedUsers:
		return r.TotalApprovedUsers
	case ColumnTotalPendingUsers:
		return r.TotalPendingUsers
	}
	return 0
}

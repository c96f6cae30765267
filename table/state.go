package table

import (
	"sync"

	"alumnihub/models"
)

// State holds one viewer's table settings between requests
type State struct {
	mu sync.Mutex
	p  Params
}

// NewState returns settings at their defaults
func NewState() *State {
	return &State{p: DefaultParams()}
}

// Params returns a copy of the current settings
func (s *State) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

// ToggleSort flips the direction when col is already the sort column,
// otherwise sorts by col descending. The page always resets.
func (s *State) ToggleSort(col Column) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p.SortColumn == col {
		if s.p.SortDirection == Asc {
			s.p.SortDirection = Desc
		} else {
			s.p.SortDirection = Asc
		}
	} else {
		s.p.SortColumn = col
		s.p.SortDirection = Desc
	}
	s.p.PageIndex = 0
}

// SetSearch sets the free-text search term
func (s *State) SetSearch(term string) {
	s.mu.Lock()
	s.p.Search = term
	s.mu.Unlock()
}

// SetFilter sets the range filter column and bounds
func (s *State) SetFilter(col Column, min, max *float64) {
	s.mu.Lock()
	s.p.FilterColumn = col
	s.p.Min = min
	s.p.Max = max
	s.mu.Unlock()
}

// SetPage sets the page index
func (s *State) SetPage(index int) {
	s.mu.Lock()
	s.p.PageIndex = index
	s.mu.Unlock()
}

// SetPageSize sets the page size; non-positive sizes are ignored
func (s *State) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	s.mu.Lock()
	s.p.PageSize = size
	s.mu.Unlock()
}

// Apply computes the view and stores the corrected page index
func (s *State) Apply(rows []models.BackendSnapshot) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := Compute(rows, s.p)
	s.p.PageIndex = v.PageIndex
	return v
}

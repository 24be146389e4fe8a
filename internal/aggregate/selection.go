package aggregate

import "sync"

// SelectionSet is the ordered, deduplicated set of facilities the user is
// actively comparing. It lives in memory only; a restart clears it.
type SelectionSet struct {
	mu  sync.Mutex
	ids []int64
}

// NewSelectionSet creates an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{}
}

// Add appends a facility unless it is already selected.
func (s *SelectionSet) Add(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.ids {
		if existing == id {
			return
		}
	}
	s.ids = append(s.ids, id)
}

// Remove drops a facility from the selection, keeping the order of the rest.
func (s *SelectionSet) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.ids[:0]
	for _, existing := range s.ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	s.ids = kept
}

// IDs returns a copy of the selection in insertion order.
func (s *SelectionSet) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

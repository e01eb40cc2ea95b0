package draft

import (
	"slices"
	"sync"

	"github.com/abhisek/assessor/internal/api"
)

// Store holds the draft being composed and is the only way to mutate it.
// Entries are kept in insertion order and addressed by EntryID, never by
// position. Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	alloc Allocator
	draft Assessment
}

// NewStore returns an empty draft. A nil alloc uses UUIDAllocator.
func NewStore(alloc Allocator) *Store {
	if alloc == nil {
		alloc = UUIDAllocator{}
	}
	return &Store{alloc: alloc}
}

// SetField replaces one assessment field. Any string is accepted.
func (s *Store) SetField(f Field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.draft.field(f); p != nil {
		*p = value
	}
}

// Field returns the current value of an assessment field.
func (s *Store) Field(f Field) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.Get(f)
}

// AddEntry appends an empty entry marked as new and returns its identity.
func (s *Store) AddEntry() EntryID {
	id := s.alloc.Allocate()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Entries = append(s.draft.Entries, Entry{ID: id, IsNew: true})
	return id
}

// RemoveEntry drops the entry with the given identity. It reports whether
// anything was removed; an unknown id is not an error.
func (s *Store) RemoveEntry(id EntryID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.draft.Entries = slices.Delete(s.draft.Entries, i, i+1)
	return true
}

// UpdateEntryField replaces one text field of the matching entry. It reports
// whether the entry was found.
func (s *Store) UpdateEntryField(id EntryID, f EntryField, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	if p := s.draft.Entries[i].field(f); p != nil {
		*p = value
	}
	return true
}

// ApplyCategory fills the entry's category from a lookup result.
func (s *Store) ApplyCategory(id EntryID, c api.CategorySearchResult) bool {
	return s.UpdateEntryField(id, EntryCategory, c.Name)
}

// ApplyCompetence fills the entry's bilingual name from a lookup result.
func (s *Store) ApplyCompetence(id EntryID, c api.CompetenceSearchResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.draft.Entries[i].Name = c.Name
	s.draft.Entries[i].NameEn = c.NameEn
	return true
}

// Entry returns a copy of the entry with the given identity.
func (s *Store) Entry(id EntryID) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	return s.draft.Entries[i], true
}

// Entries returns a copy of the entries in order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.draft.Entries))
	copy(out, s.draft.Entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.draft.Entries)
}

// Snapshot returns a deep copy of the whole draft.
func (s *Store) Snapshot() Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.clone()
}

// Load replaces the draft with a. Entries get fresh identities and are not
// marked new.
func (s *Store) Load(a Assessment) {
	loaded := a.clone()
	for i := range loaded.Entries {
		loaded.Entries[i].ID = s.alloc.Allocate()
		loaded.Entries[i].IsNew = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = loaded
}

// MarkSubmitted clears every new marker, typically after a successful build.
func (s *Store) MarkSubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.draft.Entries {
		s.draft.Entries[i].IsNew = false
	}
}

func (s *Store) indexOf(id EntryID) int {
	for i := range s.draft.Entries {
		if s.draft.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

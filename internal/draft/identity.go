package draft

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// EntryID is the client-local identity of a competence entry. It is opaque,
// assigned once, and never sent to the backend.
type EntryID string

// Allocator hands out entry identities. Two calls never return the same ID.
type Allocator interface {
	Allocate() EntryID
}

// UUIDAllocator allocates random (v4) UUIDs.
type UUIDAllocator struct{}

func (UUIDAllocator) Allocate() EntryID {
	return EntryID(uuid.NewString())
}

// SequenceAllocator allocates "<prefix>-1", "<prefix>-2", ... Useful where
// output must be reproducible.
type SequenceAllocator struct {
	Prefix string

	mu   sync.Mutex
	next int
}

func (s *SequenceAllocator) Allocate() EntryID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "entry"
	}
	return EntryID(fmt.Sprintf("%s-%d", prefix, s.next))
}

package ops

import (
	"sync"
	"time"
)

// Family identifies one kind of backend operation. Each family owns exactly
// one result slot.
type Family int

const (
	FamilyBuild             Family = iota // POST /api/assessments/build
	FamilyPreview                         // POST /api/xml/preview
	FamilyTranslate                       // POST /api/translate
	FamilySearchCategories                // GET /api/categories
	FamilySearchCompetences               // GET /api/competences
)

// AllFamilies returns every family in display order.
func AllFamilies() []Family {
	return []Family{
		FamilyBuild,
		FamilyPreview,
		FamilyTranslate,
		FamilySearchCategories,
		FamilySearchCompetences,
	}
}

func (f Family) String() string {
	switch f {
	case FamilyBuild:
		return "build"
	case FamilyPreview:
		return "preview"
	case FamilyTranslate:
		return "translate"
	case FamilySearchCategories:
		return "search-categories"
	case FamilySearchCompetences:
		return "search-competences"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state of a result slot.
type Status int

const (
	StatusIdle      Status = iota // Never triggered
	StatusInFlight                // Latest trigger has not settled yet
	StatusSucceeded               // Structurally valid response, even success:false
	StatusFailed                  // Transport, status or decode failure
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInFlight:
		return "in-flight"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is a snapshot of one family's slot.
type Result[T any] struct {
	Status Status

	// Value is the response body on success, or the synthesized fallback on
	// failure. It keeps the previous value while a new trigger is in flight.
	Value T

	// Reason is a short description of the failure. Empty unless Failed.
	Reason string

	// Seq is the trigger sequence number that produced Value.
	Seq uint64

	SettledAt time.Time
}

// Settled reports whether the result came from a completed request.
func (r Result[T]) Settled() bool {
	return r.Status == StatusSucceeded || r.Status == StatusFailed
}

// slot holds the latest result for one family. Each slot has its own lock;
// no lock is shared between families.
type slot[T any] struct {
	mu     sync.Mutex
	issued uint64
	result Result[T]
}

// begin marks the slot in flight and returns the sequence number of the new
// trigger.
func (s *slot[T]) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.result.Status = StatusInFlight
	return s.issued
}

// settle stores r if seq is the latest issued trigger. A stale seq is dropped
// and settle returns false; the slot stays in flight until the latest
// trigger settles.
func (s *slot[T]) settle(seq uint64, r Result[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issued {
		return false
	}
	r.Seq = seq
	s.result = r
	return true
}

func (s *slot[T]) get() Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *slot[T]) inFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.Status == StatusInFlight
}

package relevance

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTrailCapacity bounds the audit trail when no capacity is configured.
const DefaultTrailCapacity = 10000

// AuditFilters narrows an audit query. All set filters must match.
type AuditFilters struct {
	ContactID  *uuid.UUID
	ActionType *string
	Start      *time.Time
	End        *time.Time
}

// Trail is a bounded, thread-safe, in-memory log of validation results.
// Once the capacity is reached, each new record evicts the oldest entry.
type Trail struct {
	mu   sync.Mutex
	buf  []Result
	head int
	size int
}

// NewTrail creates a trail holding at most capacity results. Non-positive
// capacities fall back to the default.
func NewTrail(capacity int) *Trail {
	if capacity <= 0 {
		capacity = DefaultTrailCapacity
	}
	return &Trail{buf: make([]Result, capacity)}
}

// Record appends a result, evicting the oldest entry when full.
func (t *Trail) Record(r Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.head] = r
	t.head = (t.head + 1) % len(t.buf)
	if t.size < len(t.buf) {
		t.size++
	}
}

// Len reports how many results are currently retained.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Query returns retained results matching the filters, newest first. The
// returned slice is a copy and safe to hold across later writes.
func (t *Trail) Query(f AuditFilters) []Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	matches := make([]Result, 0, t.size)
	for i := range t.size {
		r := t.buf[(t.head-1-i+len(t.buf))%len(t.buf)]
		if matchesFilters(r, f) {
			matches = append(matches, r)
		}
	}
	return matches
}

// Snapshot returns every retained result, newest first.
func (t *Trail) Snapshot() []Result {
	return t.Query(AuditFilters{})
}

func matchesFilters(r Result, f AuditFilters) bool {
	if f.ContactID != nil && r.ContextData[DataContactID] != f.ContactID.String() {
		return false
	}
	if f.ActionType != nil && r.ActionType != *f.ActionType {
		return false
	}
	if f.Start != nil && r.CheckedAt.Before(*f.Start) {
		return false
	}
	if f.End != nil && r.CheckedAt.After(*f.End) {
		return false
	}
	return true
}

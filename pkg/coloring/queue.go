package coloring

import (
	"slices"

	"github.com/matzehuels/fourcolor/pkg/errors"
	"github.com/matzehuels/fourcolor/pkg/observability"
)

// DefaultReason replaces a missing or malformed reason.
const DefaultReason = "color conflict"

// State describes whether the resolver has work.
type State int

const (
	Idle   State = iota // queue empty
	Active              // a current node awaits resolution
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Entry is one queued overflow node.
type Entry struct {
	Node   int
	Reason string
}

// Queue is the ordered set of nodes awaiting Kempe resolution.
// A node appears at most once. The head is the current node.
type Queue struct {
	entries []Entry
}

// NewQueue returns an empty queue.
func NewQueue() *Queue { return &Queue{} }

// Enqueue appends id unless it is already queued and reports whether it was added.
// Reasons that fail errors.ValidateReason are recorded as DefaultReason.
func (q *Queue) Enqueue(id int, reason string) bool {
	if q.Contains(id) {
		return false
	}
	if errors.ValidateReason(reason) != nil {
		reason = DefaultReason
	}
	q.entries = append(q.entries, Entry{Node: id, Reason: reason})
	observability.Coloring().OnOverflow(id, reason)
	return true
}

// Current returns the head entry.
func (q *Queue) Current() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return q.entries[0], true
}

// Advance drops the head entry.
func (q *Queue) Advance() {
	if len(q.entries) > 0 {
		q.entries = q.entries[1:]
	}
}

// Remove drops id wherever it sits in the queue.
func (q *Queue) Remove(id int) bool {
	n := len(q.entries)
	q.entries = slices.DeleteFunc(q.entries, func(e Entry) bool { return e.Node == id })
	return len(q.entries) != n
}

// Contains reports whether id is queued.
func (q *Queue) Contains(id int) bool {
	return slices.ContainsFunc(q.entries, func(e Entry) bool { return e.Node == id })
}

// Reason returns the reason recorded for id.
func (q *Queue) Reason(id int) (string, bool) {
	for _, e := range q.entries {
		if e.Node == id {
			return e.Reason, true
		}
	}
	return "", false
}

// Len returns the number of queued nodes.
func (q *Queue) Len() int { return len(q.entries) }

// Entries returns a copy of the queue in order.
func (q *Queue) Entries() []Entry { return slices.Clone(q.entries) }

// Clear empties the queue.
func (q *Queue) Clear() { q.entries = nil }

// State returns Active when at least one node is queued.
func (q *Queue) State() State {
	if len(q.entries) == 0 {
		return Idle
	}
	return Active
}

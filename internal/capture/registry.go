// Package capture tracks capture requests until the requester posts an
// attachment, then ingests that attachment as a new quote.
package capture

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/quote"
)

// State is the lifecycle state of a capture entry.
type State string

const (
	// StateWait means registered, no attachment seen yet.
	StateWait State = "wait"
	// StatePending means an attachment matched and ingestion is running.
	StatePending State = "pending"
	// StateFinished is terminal. Finished entries are purged after each message.
	StateFinished State = "finished"
)

// Payload is the record template captured at request time.
type Payload struct {
	Time            time.Time
	OriginMessageID string
	Scope           string
	Tags            quote.TagSet
}

// Entry is one capture request.
type Entry struct {
	ID      ulid.ULID
	State   State
	Scope   string
	User    string
	Payload Payload
}

type entryKey struct {
	scope string
	user  string
}

// Registry is the in-memory working set of capture entries. There is at most
// one live (wait or pending) entry per scope and user.
type Registry struct {
	mu      sync.Mutex
	entries map[entryKey]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[entryKey]*Entry)}
}

// Register adds a wait entry for scope and user. The tag set is seeded with
// the scope followed by tags.
func (r *Registry) Register(scope, user, originMessageID string, at time.Time, tags []string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := entryKey{scope, user}
	if existing, ok := r.entries[k]; ok {
		switch existing.State {
		case StatePending:
			return Entry{}, errors.NewCapturePending(scope, user)
		case StateWait:
			return Entry{}, errors.NewCaptureWaiting(scope, user)
		}
	}

	e := &Entry{
		ID:    ulid.Make(),
		State: StateWait,
		Scope: scope,
		User:  user,
		Payload: Payload{
			Time:            at,
			OriginMessageID: originMessageID,
			Scope:           scope,
			Tags:            quote.NewTagSet(append([]string{scope}, tags...)...),
		},
	}
	r.entries[k] = e
	return *e, nil
}

// Lookup returns the entry for scope and user, in any state.
func (r *Registry) Lookup(scope, user string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[entryKey{scope, user}]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Transition moves entry id to state to. It reports false when the entry is
// gone or was replaced.
func (r *Registry) Transition(id ulid.ULID, scope, user string, to State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[entryKey{scope, user}]
	if !ok || e.ID != id {
		return false
	}
	e.State = to
	return true
}

// Purge drops every finished entry and returns how many were dropped.
func (r *Registry) Purge() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for k, e := range r.entries {
		if e.State == StateFinished {
			delete(r.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of entries, finished ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

package workflow

import (
	"sync"
	"time"

	"github.com/xelth-com/fabtrack/internal/models"
)

type draftKey struct {
	session string
	target  Target
}

// Drafts holds in-progress transition forms per browser session, so a
// failed submission can be retried without re-entering anything.
type Drafts struct {
	mu  sync.Mutex
	m   map[draftKey]*Draft
	now func() time.Time
}

// NewDrafts creates an empty draft store
func NewDrafts() *Drafts {
	return &Drafts{m: make(map[draftKey]*Draft), now: time.Now}
}

// Open returns the session's draft for target, creating it if needed.
// A draft built for a different section (the worker was reassigned) is replaced.
func (ds *Drafts) Open(sessionID string, target Target, section models.Section) *Draft {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	key := draftKey{sessionID, target}
	if d, ok := ds.m[key]; ok && d.section.Number == section.Number {
		d.touched = ds.now()
		return d
	}
	d := NewDraft(target, section)
	d.touched = ds.now()
	ds.m[key] = d
	return d
}

// Get returns an existing draft
func (ds *Drafts) Get(sessionID string, target Target) (*Draft, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	d, ok := ds.m[draftKey{sessionID, target}]
	if ok {
		d.touched = ds.now()
	}
	return d, ok
}

// Drop forgets one draft
func (ds *Drafts) Drop(sessionID string, target Target) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.m, draftKey{sessionID, target})
}

// DropSession forgets every draft of a session (logout)
func (ds *Drafts) DropSession(sessionID string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	for k := range ds.m {
		if k.session == sessionID {
			delete(ds.m, k)
		}
	}
}

// Sweep drops drafts untouched for longer than maxAge and returns how many went
func (ds *Drafts) Sweep(maxAge time.Duration) int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	cutoff := ds.now().Add(-maxAge)
	n := 0
	for k, d := range ds.m {
		if d.touched.Before(cutoff) {
			delete(ds.m, k)
			n++
		}
	}
	return n
}

// Len reports how many drafts are held
func (ds *Drafts) Len() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.m)
}

// Package saved tracks the courses a user has bookmarked. The remote store is
// authoritative; a local cache of saved course objects seeds the set for a
// responsive first render.
package saved

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/acvora/acvora/pkg/catalog"
)

var (
	// ErrLoginRequired is returned by Toggle when no user identity is known.
	ErrLoginRequired = errors.New("please login to save courses")
	// ErrToggleFailed wraps a failed create or delete request.
	ErrToggleFailed = errors.New("something went wrong, please try again")
)

// LoginPath is where callers send users who hit ErrLoginRequired.
const LoginPath = "/login"

// Remote is the saved-course store of the catalog API.
type Remote interface {
	ListSaved(ctx context.Context, userID string) ([]string, error)
	CreateSaved(ctx context.Context, userID string, rec catalog.SavedCourse) error
	DeleteSaved(ctx context.Context, userID, courseID string) error
}

// Cache persists the raw JSON array of saved course objects locally.
// Implementations may be nil.
type Cache interface {
	SavedCourses(ctx context.Context) (string, error)
	SetSavedCourses(ctx context.Context, raw string) error
}

// Tracker holds the saved-course id set of one user session.
type Tracker struct {
	mu     sync.Mutex
	remote Remote
	cache  Cache
	log    logrus.FieldLogger
	userID string
	ids    map[string]struct{}
	raw    string

	// request tokens. A hydration older than the latest one is discarded; a
	// toggle response is applied unless a newer one for the same course
	// already was.
	hydrateSeq uint64
	toggleSeq  map[string]uint64
	appliedSeq map[string]uint64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCache enables reading and rewriting the local saved-course cache.
func WithCache(c Cache) Option {
	return func(t *Tracker) { t.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Tracker) { t.log = l }
}

// NewTracker creates an empty tracker for userID, which may be empty when
// nobody is logged in.
func NewTracker(remote Remote, userID string, opts ...Option) *Tracker {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	t := &Tracker{
		remote:     remote,
		log:        silent,
		userID:     userID,
		ids:        map[string]struct{}{},
		raw:        "[]",
		toggleSeq:  map[string]uint64{},
		appliedSeq: map[string]uint64{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// UserID returns the identity toggles are issued for.
func (t *Tracker) UserID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userID
}

// Hydrate seeds the set from the local cache, then, when a user is known,
// replaces it entirely with the remote list. A malformed cache is ignored and
// a remote failure keeps the cached set.
func (t *Tracker) Hydrate(ctx context.Context) error {
	if t.cache != nil {
		raw, err := t.cache.SavedCourses(ctx)
		if err != nil {
			t.log.Debugf("Could not read saved courses cache: %v", err)
		} else if ids, ok := ParseCache(raw); ok {
			t.mu.Lock()
			t.ids = toSet(ids)
			t.raw = raw
			t.mu.Unlock()
		} else if raw != "" {
			t.log.Debugf("Ignoring malformed saved courses cache")
		}
	}

	t.mu.Lock()
	userID := t.userID
	t.hydrateSeq++
	seq := t.hydrateSeq
	t.mu.Unlock()

	if userID == "" {
		return nil
	}

	ids, err := t.remote.ListSaved(ctx, userID)
	if err != nil {
		t.log.Errorf("Error fetching saved courses: %v", err)
		return fmt.Errorf("fetching saved courses: %w", err)
	}

	t.mu.Lock()
	if seq != t.hydrateSeq {
		t.mu.Unlock()
		t.log.Debugf("Discarding stale saved courses response")
		return nil
	}
	t.ids = toSet(ids)
	t.raw = rebuildCache(t.raw, ids)
	raw := t.raw
	t.mu.Unlock()

	t.storeCache(ctx, raw)
	return nil
}

// IsSaved reports whether courseID is in the set.
func (t *Tracker) IsSaved(courseID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.ids[courseID]
	return ok
}

// IDs returns the saved ids, sorted.
func (t *Tracker) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Toggle saves an unsaved course or unsaves a saved one and returns the new
// state. The local set only changes after the remote request succeeds.
func (t *Tracker) Toggle(ctx context.Context, c catalog.Course) (bool, error) {
	t.mu.Lock()
	userID := t.userID
	if userID == "" {
		t.mu.Unlock()
		return false, ErrLoginRequired
	}
	id := c.ID
	_, wasSaved := t.ids[id]
	t.toggleSeq[id]++
	seq := t.toggleSeq[id]
	t.mu.Unlock()

	var err error
	if wasSaved {
		err = t.remote.DeleteSaved(ctx, userID, id)
	} else {
		err = t.remote.CreateSaved(ctx, userID, catalog.SavedCourse{
			CourseID:    id,
			CourseTitle: c.Title,
			Eligibility: c.Eligibility,
		})
	}
	if err != nil {
		t.log.Errorf("Error toggling saved course %s: %v", id, err)
		return wasSaved, fmt.Errorf("%w: %v", ErrToggleFailed, err)
	}

	t.mu.Lock()
	if seq < t.appliedSeq[id] {
		_, now := t.ids[id]
		t.mu.Unlock()
		t.log.Debugf("Discarding stale toggle response for %s", id)
		return now, nil
	}
	t.appliedSeq[id] = seq
	_, isSaved := t.ids[id]
	switch {
	case wasSaved && isSaved:
		delete(t.ids, id)
		t.raw = removeFromCache(t.raw, id)
	case !wasSaved && !isSaved:
		t.ids[id] = struct{}{}
		t.raw = appendToCache(t.raw, c)
	}
	raw := t.raw
	t.mu.Unlock()

	t.storeCache(ctx, raw)
	return !wasSaved, nil
}

func (t *Tracker) storeCache(ctx context.Context, raw string) {
	if t.cache == nil {
		return
	}
	if err := t.cache.SetSavedCourses(ctx, raw); err != nil {
		t.log.Warnf("Could not update saved courses cache: %v", err)
	}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

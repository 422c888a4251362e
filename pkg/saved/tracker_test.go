package saved

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acvora/acvora/pkg/catalog"
)

type fakeRemote struct {
	saved     []string
	listErr   error
	createErr error
	deleteErr error
	creates   []catalog.SavedCourse
	deletes   []string
}

func (f *fakeRemote) ListSaved(_ context.Context, userID string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.saved, nil
}

func (f *fakeRemote) CreateSaved(_ context.Context, userID string, rec catalog.SavedCourse) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.creates = append(f.creates, rec)
	return nil
}

func (f *fakeRemote) DeleteSaved(_ context.Context, userID, courseID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, userID+"/"+courseID)
	return nil
}

type memCache struct {
	raw     string
	readErr error
	writes  int
}

func (m *memCache) SavedCourses(context.Context) (string, error) { return m.raw, m.readErr }

func (m *memCache) SetSavedCourses(_ context.Context, raw string) error {
	m.raw = raw
	m.writes++
	return nil
}

var course = catalog.Course{ID: "c1", Title: "B.Tech CSE", Eligibility: "10+2 with PCM"}

func TestToggleRequiresLogin(t *testing.T) {
	remote := &fakeRemote{}
	tr := NewTracker(remote, "")

	saved, err := tr.Toggle(context.Background(), course)
	require.ErrorIs(t, err, ErrLoginRequired)
	assert.False(t, saved)
	assert.Empty(t, remote.creates)
	assert.Empty(t, tr.IDs())
}

func TestToggleRoundTrip(t *testing.T) {
	remote := &fakeRemote{}
	tr := NewTracker(remote, "u1")
	before := tr.IDs()

	saved, err := tr.Toggle(context.Background(), course)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, tr.IsSaved("c1"))

	saved, err = tr.Toggle(context.Background(), course)
	require.NoError(t, err)
	assert.False(t, saved)

	assert.Equal(t, before, tr.IDs())
	require.Len(t, remote.creates, 1)
	assert.Equal(t, catalog.SavedCourse{CourseID: "c1", CourseTitle: "B.Tech CSE", Eligibility: "10+2 with PCM"}, remote.creates[0])
	assert.Equal(t, []string{"u1/c1"}, remote.deletes)
}

func TestToggleFailureLeavesSetUnchanged(t *testing.T) {
	remote := &fakeRemote{createErr: errors.New("503")}
	tr := NewTracker(remote, "u1")

	saved, err := tr.Toggle(context.Background(), course)
	require.ErrorIs(t, err, ErrToggleFailed)
	assert.False(t, saved)
	assert.False(t, tr.IsSaved("c1"))

	remote.createErr = nil
	_, err = tr.Toggle(context.Background(), course)
	require.NoError(t, err)

	remote.deleteErr = errors.New("timeout")
	saved, err = tr.Toggle(context.Background(), course)
	require.ErrorIs(t, err, ErrToggleFailed)
	assert.True(t, saved)
	assert.True(t, tr.IsSaved("c1"))
}

func TestHydrateCacheThenRemoteOverwrites(t *testing.T) {
	cache := &memCache{raw: `[{"_id":"c1","courseTitle":"A"},{"id":7},{"_id":"c3"}]`}
	remote := &fakeRemote{saved: []string{"c3", "c9"}}
	tr := NewTracker(remote, "u1", WithCache(cache))

	require.NoError(t, tr.Hydrate(context.Background()))
	assert.Equal(t, []string{"c3", "c9"}, tr.IDs())

	ids, ok := ParseCache(cache.raw)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"c3", "c9"}, ids)
}

func TestHydrateWithoutUserUsesCacheOnly(t *testing.T) {
	cache := &memCache{raw: `[{"_id":"c1"},{"id":7}]`}
	remote := &fakeRemote{saved: []string{"zzz"}}
	tr := NewTracker(remote, "", WithCache(cache))

	require.NoError(t, tr.Hydrate(context.Background()))
	assert.Equal(t, []string{"7", "c1"}, tr.IDs())
	assert.Zero(t, cache.writes)
}

func TestHydrateRemoteFailureKeepsCache(t *testing.T) {
	cache := &memCache{raw: `[{"_id":"c1"}]`}
	tr := NewTracker(&fakeRemote{listErr: errors.New("offline")}, "u1", WithCache(cache))

	err := tr.Hydrate(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"c1"}, tr.IDs())
}

func TestHydrateIgnoresMalformedCache(t *testing.T) {
	for _, raw := range []string{`{not json`, `{"_id":"c1"}`, ``} {
		tr := NewTracker(&fakeRemote{}, "", WithCache(&memCache{raw: raw}))
		require.NoError(t, tr.Hydrate(context.Background()))
		assert.Empty(t, tr.IDs(), "cache %q", raw)
	}
}

func TestToggleRewritesCache(t *testing.T) {
	cache := &memCache{raw: `[{"_id":"c0"}]`}
	tr := NewTracker(&fakeRemote{}, "u1", WithCache(cache))

	_, err := tr.Toggle(context.Background(), course)
	require.NoError(t, err)
	ids, ok := ParseCache(cache.raw)
	require.True(t, ok)
	assert.Equal(t, []string{"c1"}, ids, "the cache mirrors the tracker, not the stale file")

	_, err = tr.Toggle(context.Background(), course)
	require.NoError(t, err)
	ids, _ = ParseCache(cache.raw)
	assert.Empty(t, ids)
}

// gatedRemote holds the first create until release is closed and answers
// later creates with laterErr.
type gatedRemote struct {
	fakeRemote
	mu       sync.Mutex
	calls    int
	entered  chan struct{}
	release  chan struct{}
	laterErr error
}

func newGatedRemote(laterErr error) *gatedRemote {
	return &gatedRemote{entered: make(chan struct{}), release: make(chan struct{}), laterErr: laterErr}
}

func (g *gatedRemote) CreateSaved(_ context.Context, _ string, _ catalog.SavedCourse) error {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()
	if n == 1 {
		close(g.entered)
		<-g.release
		return nil
	}
	return g.laterErr
}

func TestOvertakenSuccessfulToggleIsApplied(t *testing.T) {
	remote := newGatedRemote(errors.New("boom"))
	tr := NewTracker(remote, "u1")
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := tr.Toggle(ctx, course)
		done <- err
	}()
	<-remote.entered

	_, err := tr.Toggle(ctx, course)
	require.ErrorIs(t, err, ErrToggleFailed)
	assert.False(t, tr.IsSaved("c1"))

	close(remote.release)
	require.NoError(t, <-done)
	assert.True(t, tr.IsSaved("c1"))
}

func TestOlderToggleAfterNewerAppliedIsDiscarded(t *testing.T) {
	remote := newGatedRemote(nil)
	tr := NewTracker(remote, "u1")
	ctx := context.Background()

	done := make(chan bool, 1)
	go func() {
		now, _ := tr.Toggle(ctx, course)
		done <- now
	}()
	<-remote.entered

	now, err := tr.Toggle(ctx, course)
	require.NoError(t, err)
	assert.True(t, now)

	close(remote.release)
	assert.True(t, <-done)
	assert.True(t, tr.IsSaved("c1"))
	assert.Equal(t, []string{"c1"}, tr.IDs())
}

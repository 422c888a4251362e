package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acvora/acvora/pkg/catalog"
	"github.com/acvora/acvora/pkg/saved"
)

func newTestClient(t *testing.T, h http.Handler, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]ClientOption{WithRetries(0), WithRateLimit(0)}, opts...)
	c, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestCourses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/courses", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"_id":"c1","courseTitle":"MBA","specializations":[{"name":"Finance"}]}]`)
	})
	c := newTestClient(t, mux)

	courses, err := c.Courses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "c1", courses[0].ID)
	assert.Equal(t, []string{"Finance"}, courses[0].SpecializationNames())
}

func TestExams(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/exams", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"_id":"e1","examName":"JEE","examDate":"2025-04-02"}]`)
	})
	c := newTestClient(t, mux)

	exams, err := c.Exams(context.Background())
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, "Exam Date - Apr 2025", exams[0].NextEvent)
}

func TestSavedEndpoints(t *testing.T) {
	var created catalog.SavedCourse
	var deletedPath string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/savedCourses/{user}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u 1", r.PathValue("user"))
		io.WriteString(w, `[{"courseId":"c1","courseTitle":"MBA"},{"courseId":42},{"other":true}]`)
	})
	mux.HandleFunc("POST /api/savedCourses/{user}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/savedCourses/{user}/{course}", func(w http.ResponseWriter, r *http.Request) {
		deletedPath = r.PathValue("user") + "|" + r.PathValue("course")
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	ids, err := c.ListSaved(ctx, "u 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "42"}, ids)

	rec := catalog.SavedCourse{CourseID: "c1", CourseTitle: "MBA", Eligibility: "Graduate"}
	require.NoError(t, c.CreateSaved(ctx, "u1", rec))
	assert.Equal(t, rec, created)

	require.NoError(t, c.DeleteSaved(ctx, "u1", "c1"))
	assert.Equal(t, "u1|c1", deletedPath)
}

func TestUnexpectedStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	_, err := c.Courses(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `[]`)
	}), WithRetries(2))

	courses, err := c.Courses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestListSavedRejectsObjects(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error":"user not found"}`)
	}))
	_, err := c.ListSaved(context.Background(), "u1")
	assert.ErrorIs(t, err, catalog.ErrNotArray)
}

func TestSavedWritesAreNotRetried(t *testing.T) {
	var posts, deletes int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/savedCourses/{user}", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&posts, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/savedCourses/{user}/{course}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&deletes, 1)
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newTestClient(t, mux, WithRetries(DefaultRetries))
	ctx := context.Background()

	err := c.CreateSaved(ctx, "u1", catalog.SavedCourse{CourseID: "c1"})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(1), atomic.LoadInt32(&posts))

	err = c.DeleteSaved(ctx, "u1", "c1")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(1), atomic.LoadInt32(&deletes))

	tracker := saved.NewTracker(c, "u1")
	now, err := tracker.Toggle(ctx, catalog.Course{ID: "c2"})
	assert.NoError(t, err)
	assert.True(t, now)
	assert.Equal(t, int32(2), atomic.LoadInt32(&posts))
}

func TestToggleRoundTripRequestCounts(t *testing.T) {
	var posts, deletes int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/savedCourses/{user}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&posts, 1)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/savedCourses/{user}/{course}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&deletes, 1)
	})
	c := newTestClient(t, mux, WithRetries(DefaultRetries))
	tracker := saved.NewTracker(c, "u1")
	ctx := context.Background()
	course := catalog.Course{ID: "c1", Title: "MBA"}

	now, err := tracker.Toggle(ctx, course)
	require.NoError(t, err)
	assert.True(t, now)
	now, err = tracker.Toggle(ctx, course)
	require.NoError(t, err)
	assert.False(t, now)

	assert.Equal(t, int32(1), atomic.LoadInt32(&posts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&deletes))
	assert.False(t, tracker.IsSaved("c1"))
}

func TestFailedToggleLeavesSetUnchanged(t *testing.T) {
	var posts int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&posts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}), WithRetries(DefaultRetries))
	tracker := saved.NewTracker(c, "u1")

	_, err := tracker.Toggle(context.Background(), catalog.Course{ID: "c1"})
	assert.ErrorIs(t, err, saved.ErrToggleFailed)
	assert.False(t, tracker.IsSaved("c1"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&posts))
}

// Package server exposes the course explorer and exam dashboard over JSON.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/acvora/acvora/pkg/catalog"
	"github.com/acvora/acvora/pkg/exams"
	"github.com/acvora/acvora/pkg/facets"
)

// Source is the remote catalog backing the server.
type Source interface {
	Courses(ctx context.Context) ([]catalog.Course, error)
	Exams(ctx context.Context) ([]catalog.Exam, error)
}

type Server struct {
	Username string
	Password string
	// Refresh is the catalog reload interval; zero disables reloading.
	Refresh time.Duration

	source Source
	log    logrus.FieldLogger
	now    func() time.Time

	mu      sync.RWMutex
	courses []catalog.Course
	index   facets.Index

	exams *exams.Dashboard
	feed  chan catalog.ExamSubmission
}

func New(source Source, user, pass string, log logrus.FieldLogger) *Server {
	if log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		log = silent
	}
	return &Server{
		Username: user,
		Password: pass,
		source:   source,
		log:      log,
		now:      time.Now,
		courses:  []catalog.Course{},
		index:    facets.BuildIndex(nil),
		exams:    exams.NewDashboard(source, exams.WithLogger(log)),
		feed:     make(chan catalog.ExamSubmission, 16),
	}
}

// Reload fetches courses and exams concurrently. Each collection is replaced
// wholesale when its own request completes; a failed fetch empties it.
func (s *Server) Reload(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		courses, err := s.source.Courses(ctx)
		if err != nil {
			s.log.Errorf("Error fetching courses: %v", err)
			courses = []catalog.Course{}
		}
		index := facets.BuildIndex(courses)

		s.mu.Lock()
		s.courses = courses
		s.index = index
		s.mu.Unlock()
		catalogSize.WithLabelValues("courses").Set(float64(len(courses)))
	}()

	go func() {
		defer wg.Done()
		s.exams.Load(ctx)
		catalogSize.WithLabelValues("exams").Set(float64(len(s.exams.All())))
	}()

	wg.Wait()
	reloads.Inc()
}

// Run consumes live exam submissions and reloads the catalog every Refresh
// until ctx is done.
func (s *Server) Run(ctx context.Context) {
	go s.exams.Listen(ctx, s.feed)

	if s.Refresh <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(s.Refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.log.Debug("Reloading catalog")
			s.Reload(ctx)
		}
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/courses", s.basicAuth(s.handleCourses))
	mux.HandleFunc("GET /api/courses/facets", s.basicAuth(s.handleFacets))
	mux.HandleFunc("GET /api/courses/specializations", s.basicAuth(s.handleSpecializations))
	mux.HandleFunc("GET /api/exams", s.basicAuth(s.handleExams))
	mux.HandleFunc("POST /api/exams", s.basicAuth(s.handleSubmitExam))
	mux.HandleFunc("GET /api/exams/compare", s.basicAuth(s.handleCompared))
	mux.HandleFunc("POST /api/exams/{id}/compare", s.basicAuth(s.handleToggleCompare))
	mux.HandleFunc("POST /api/exams/{id}/bookmark", s.basicAuth(s.handleToggleBookmark))

	mux.Handle("GET /metrics", s.basicAuthHandler(promhttp.Handler()))
	return mux
}

// Start loads the catalog, then serves until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.Reload(ctx)
	go s.Run(ctx)

	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Infof("Starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) authorized(r *http.Request) bool {
	if s.Username == "" && s.Password == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	return ok && user == s.Username && pass == s.Password
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) basicAuthHandler(next http.Handler) http.Handler {
	return s.basicAuth(next.ServeHTTP)
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"

	"github.com/acvora/acvora/pkg/catalog"
	"github.com/acvora/acvora/pkg/exams"
	"github.com/acvora/acvora/pkg/facets"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// CourseQuery is the query string of the course endpoints. Repeated keys
// select several values of the same facet.
type CourseQuery struct {
	Streams         []string `schema:"streams"`
	CourseType      []string `schema:"courseType"`
	CourseLevel     []string `schema:"courseLevel"`
	States          []string `schema:"states"`
	Cities          []string `schema:"cities"`
	Exams           []string `schema:"exams"`
	Courses         []string `schema:"courses"`
	Specializations []string `schema:"specializations"`
	Search          string   `schema:"search"`
	Sort            string   `schema:"sort,default:default"`
}

func (q CourseQuery) Selection() facets.Selection {
	sel := facets.NewSelection()
	sel.Add(facets.Streams, q.Streams...)
	sel.Add(facets.CourseType, q.CourseType...)
	sel.Add(facets.CourseLevel, q.CourseLevel...)
	sel.Add(facets.States, q.States...)
	sel.Add(facets.Cities, q.Cities...)
	sel.Add(facets.Exams, q.Exams...)
	sel.Add(facets.Courses, q.Courses...)
	sel.Add(facets.Specializations, q.Specializations...)
	return sel
}

type ExamQuery struct {
	Tab    string `schema:"tab"`
	Search string `schema:"search"`
}

type CoursesResponse struct {
	Count   int              `json:"count"`
	Total   int              `json:"total"`
	Courses []catalog.Course `json:"courses"`
}

type SpecializationsResponse struct {
	Shown   bool     `json:"shown"`
	Options []string `json:"options"`
}

type ExamsResponse struct {
	Tab   exams.Tab    `json:"tab"`
	Exams []exams.Card `json:"exams"`
}

// ToggleResponse reports the state of an exam after a compare or bookmark toggle.
type ToggleResponse struct {
	ID       string `json:"id"`
	Selected bool   `json:"selected"`
	Saved    bool   `json:"saved"`
}

func decodeQuery(dst interface{}, query url.Values) error {
	return decoder.Decode(dst, query)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) snapshot() ([]catalog.Course, facets.Index) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.courses, s.index
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	requests.WithLabelValues("courses").Inc()

	var q CourseQuery
	if err := decodeQuery(&q, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	key, err := facets.ParseSortKey(q.Sort)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	courses, _ := s.snapshot()
	matched := facets.Filter(facets.Sort(courses, key), q.Selection(), q.Search)
	writeJSON(w, http.StatusOK, CoursesResponse{Count: len(matched), Total: len(courses), Courses: matched})
}

// handleFacets returns every option list, or only the one named by ?key=.
func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	requests.WithLabelValues("facets").Inc()
	_, index := s.snapshot()

	raw := r.URL.Query().Get("key")
	if raw == "" {
		writeJSON(w, http.StatusOK, index)
		return
	}
	key, ok := facets.ParseKey(raw)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown facet %q", raw), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[facets.Key][]string{key: index[key]})
}

func (s *Server) handleSpecializations(w http.ResponseWriter, r *http.Request) {
	requests.WithLabelValues("specializations").Inc()

	var q CourseQuery
	if err := decodeQuery(&q, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sel := q.Selection()
	resp := SpecializationsResponse{Options: []string{}}
	if sel.Active(facets.Streams) || sel.Active(facets.Courses) {
		courses, _ := s.snapshot()
		if opts := facets.ResolveSpecializations(courses, sel); opts != nil {
			resp = SpecializationsResponse{Shown: true, Options: opts}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExams(w http.ResponseWriter, r *http.Request) {
	requests.WithLabelValues("exams").Inc()

	var q ExamQuery
	if err := decodeQuery(&q, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tab := exams.Upcoming
	if q.Tab != "" {
		var err error
		if tab, err = exams.ParseTab(q.Tab); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, http.StatusOK, ExamsResponse{Tab: tab, Exams: s.exams.Cards(tab, q.Search)})
}

// handleCompared returns the compared exams in selection order, across tabs.
func (s *Server) handleCompared(w http.ResponseWriter, r *http.Request) {
	requests.WithLabelValues("compared").Inc()
	list := []catalog.Exam{}
	for _, id := range s.exams.Compared() {
		if e, ok := s.exams.Find(id); ok {
			list = append(list, e)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleToggleCompare(w http.ResponseWriter, r *http.Request) {
	requests.WithLabelValues("toggle_compare").Inc()
	s.toggleExam(w, r.PathValue("id"), s.exams.ToggleCompare)
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	requests.WithLabelValues("toggle_bookmark").Inc()
	s.toggleExam(w, r.PathValue("id"), s.exams.ToggleSaved)
}

func (s *Server) toggleExam(w http.ResponseWriter, id string, toggle func(string) bool) {
	if _, ok := s.exams.Find(id); !ok {
		http.Error(w, fmt.Sprintf("exam not found: %s", id), http.StatusNotFound)
		return
	}
	toggle(id)
	resp := ToggleResponse{ID: id}
	for _, c := range s.exams.Compared() {
		if c == id {
			resp.Selected = true
		}
	}
	resp.Saved = s.exams.IsSaved(id)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitExam(w http.ResponseWriter, r *http.Request) {
	requests.WithLabelValues("submit_exam").Inc()

	var sub catalog.ExamSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	select {
	case s.feed <- sub:
		liveExams.Inc()
		w.WriteHeader(http.StatusAccepted)
	case <-r.Context().Done():
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
	}
}

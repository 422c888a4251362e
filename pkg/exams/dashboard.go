// Package exams implements the exam dashboard: tab bucketing by date, name
// search, compare selection and live-appended submissions.
package exams

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/acvora/acvora/pkg/catalog"
)

// Source loads the exam collection.
type Source interface {
	Exams(ctx context.Context) ([]catalog.Exam, error)
}

// Card is an exam as rendered on the dashboard.
type Card struct {
	catalog.Exam
	Selected bool `json:"selected"`
	Saved    bool `json:"saved"`
}

// Dashboard is the session state of the exam page. It is safe for concurrent
// use so a live feed can append while the page is being read.
type Dashboard struct {
	mu      sync.Mutex
	source  Source
	log     logrus.FieldLogger
	now     func() time.Time
	newID   func() string
	exams   []catalog.Exam
	tab     Tab
	search  string
	compare []string
	saved   map[string]struct{}
	loading bool
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Dashboard) { d.log = l }
}

// WithClock overrides the time source used for bucketing.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

// WithIDGenerator overrides how ids are assigned to live submissions.
func WithIDGenerator(gen func() string) Option {
	return func(d *Dashboard) { d.newID = gen }
}

// NewDashboard creates a dashboard on the Upcoming tab.
func NewDashboard(source Source, opts ...Option) *Dashboard {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	d := &Dashboard{
		source: source,
		log:    silent,
		now:    time.Now,
		newID:  uuid.NewString,
		exams:  []catalog.Exam{},
		tab:    Upcoming,
		saved:  map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load replaces the collection with the source's exams. On failure the
// collection becomes empty and the error is only logged.
func (d *Dashboard) Load(ctx context.Context) {
	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()

	exams, err := d.source.Exams(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.log.Errorf("Error fetching exams: %v", err)
		d.exams = []catalog.Exam{}
		return
	}
	d.exams = exams
}

// Loading reports whether a Load is in flight.
func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// Add maps a live submission and puts it at the front of the collection.
func (d *Dashboard) Add(s catalog.ExamSubmission) catalog.Exam {
	if s.ID == "" {
		s.ID = d.newID()
	}
	e := catalog.FromSubmission(s)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.exams = append([]catalog.Exam{e}, d.exams...)
	return e
}

// Listen appends every submission received on feed until the channel is
// closed or ctx is done.
func (d *Dashboard) Listen(ctx context.Context, feed <-chan catalog.ExamSubmission) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-feed:
			if !ok {
				return
			}
			e := d.Add(s)
			d.log.Debugf("Live exam added: %s (%s)", e.Name, e.ID)
		}
	}
}

// All returns a copy of the whole collection.
func (d *Dashboard) All() []catalog.Exam {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]catalog.Exam, len(d.exams))
	copy(out, d.exams)
	return out
}

func (d *Dashboard) SetTab(t Tab) {
	d.mu.Lock()
	d.tab = t
	d.mu.Unlock()
}

func (d *Dashboard) Tab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

func (d *Dashboard) SetSearch(s string) {
	d.mu.Lock()
	d.search = s
	d.mu.Unlock()
}

// Visible returns the cards of the active tab matching the search, bucketed
// against the current time.
func (d *Dashboard) Visible() []Card {
	d.mu.Lock()
	tab, search := d.tab, d.search
	d.mu.Unlock()
	return d.Cards(tab, search)
}

// Cards returns the cards of tab matching search without touching the
// dashboard's own tab and search.
func (d *Dashboard) Cards(tab Tab, search string) []Card {
	d.mu.Lock()
	defer d.mu.Unlock()

	exams := Search(InTab(d.exams, tab, d.now()), search)
	cards := make([]Card, len(exams))
	for i, e := range exams {
		_, saved := d.saved[e.ID]
		cards[i] = Card{Exam: e, Selected: d.isCompared(e.ID), Saved: saved}
	}
	return cards
}

// ToggleCompare adds or removes an exam from the compare selection and
// reports whether it is now selected.
func (d *Dashboard) ToggleCompare(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range d.compare {
		if c == id {
			d.compare = append(d.compare[:i], d.compare[i+1:]...)
			return false
		}
	}
	d.compare = append(d.compare, id)
	return true
}

// Compared returns the compare selection in the order it was made.
func (d *Dashboard) Compared() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.compare))
	copy(out, d.compare)
	return out
}

func (d *Dashboard) isCompared(id string) bool {
	for _, c := range d.compare {
		if c == id {
			return true
		}
	}
	return false
}

// ToggleSaved flips the local bookmark of an exam and reports the new state.
// Exam bookmarks are not synchronized with the remote store.
func (d *Dashboard) ToggleSaved(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.saved[id]; ok {
		delete(d.saved, id)
		return false
	}
	d.saved[id] = struct{}{}
	return true
}

// Find returns the exam with the given id.
func (d *Dashboard) Find(id string) (catalog.Exam, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.exams {
		if e.ID == id {
			return e, true
		}
	}
	return catalog.Exam{}, false
}

// IsSaved reports whether an exam is bookmarked.
func (d *Dashboard) IsSaved(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.saved[id]
	return ok
}

// Package explorer holds the session state of the course explorer page:
// the working course collection, facet selection, search, sort and the
// transient UI state, with saved flags from a saved.Tracker.
package explorer

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/acvora/acvora/pkg/catalog"
	"github.com/acvora/acvora/pkg/facets"
)

// Source loads the course catalog.
type Source interface {
	Courses(ctx context.Context) ([]catalog.Course, error)
}

// SavedSet answers whether a course is bookmarked.
type SavedSet interface {
	IsSaved(courseID string) bool
}

// Explorer is not safe for concurrent use; it models one page session.
type Explorer struct {
	source Source
	saved  SavedSet
	log    logrus.FieldLogger

	courses   []catalog.Course
	index     facets.Index
	selection facets.Selection
	search    string
	sortKey   facets.SortKey
	accordion facets.Key
	expanded  string
	loading   bool
}

// Option configures an Explorer.
type Option func(*Explorer)

func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Explorer) { e.log = l }
}

// WithSaved annotates visible cards with the saved state of s.
func WithSaved(s SavedSet) Option {
	return func(e *Explorer) { e.saved = s }
}

// New creates an explorer with an empty collection, loading until Load runs.
func New(source Source, opts ...Option) *Explorer {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	e := &Explorer{
		source:    source,
		log:       silent,
		courses:   []catalog.Course{},
		index:     facets.BuildIndex(nil),
		selection: facets.NewSelection(),
		sortKey:   facets.SortDefault,
		loading:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load fetches the catalog and replaces the collection. A failed fetch
// leaves an empty collection; the error is logged, not returned.
func (e *Explorer) Load(ctx context.Context) {
	defer func() { e.loading = false }()

	courses, err := e.source.Courses(ctx)
	if err != nil {
		e.log.Errorf("Error fetching courses: %v", err)
		courses = []catalog.Course{}
	}
	e.SetCourses(courses)
}

// SetCourses replaces the working collection and rebuilds the facet index.
func (e *Explorer) SetCourses(courses []catalog.Course) {
	e.courses = courses
	e.index = facets.BuildIndex(courses)
}

func (e *Explorer) Loading() bool { return e.loading }

// Count is the size of the whole collection, not of the filtered list.
func (e *Explorer) Count() int { return len(e.courses) }

// Courses returns the working collection in its current order.
func (e *Explorer) Courses() []catalog.Course { return e.courses }

// Find returns the course with the given id.
func (e *Explorer) Find(id string) (catalog.Course, bool) {
	for _, c := range e.courses {
		if c.ID == id {
			return c, true
		}
	}
	return catalog.Course{}, false
}

// Options returns the option list of facet k.
func (e *Explorer) Options(k facets.Key) []string { return e.index[k] }

// Index returns every facet option list.
func (e *Explorer) Index() facets.Index { return e.index }

// Selection exposes the live selection for reading.
func (e *Explorer) Selection() facets.Selection { return e.selection }

// ToggleFilter flips a value of a multi-select facet.
func (e *Explorer) ToggleFilter(k facets.Key, value string) { e.selection.Toggle(k, value) }

// SelectOne sets a single-select facet; "" clears it.
func (e *Explorer) SelectOne(k facets.Key, value string) { e.selection.SelectOne(k, value) }

// ClearFilters empties every facet.
func (e *Explorer) ClearFilters() { e.selection.Clear() }

func (e *Explorer) SetSearch(s string) { e.search = s }

func (e *Explorer) Search() string { return e.search }

// SetSort reorders the working collection. Filtering is derived from the
// reordered collection afterwards.
func (e *Explorer) SetSort(k facets.SortKey) {
	e.sortKey = k
	if k == facets.SortDefault {
		return
	}
	e.courses = facets.Sort(e.courses, k)
}

func (e *Explorer) SortKey() facets.SortKey { return e.sortKey }

// ToggleAccordion opens facet section k, or closes it when already open.
func (e *Explorer) ToggleAccordion(k facets.Key) {
	if e.accordion == k {
		e.accordion = ""
		return
	}
	e.accordion = k
}

// OpenAccordion returns the open section, "" when all are closed.
func (e *Explorer) OpenAccordion() facets.Key { return e.accordion }

// ToggleExpanded expands the card of courseID, or collapses it.
func (e *Explorer) ToggleExpanded(courseID string) {
	if e.expanded == courseID {
		e.expanded = ""
		return
	}
	e.expanded = courseID
}

func (e *Explorer) Expanded() string { return e.expanded }

// Visible returns the filtered cards in working-collection order.
func (e *Explorer) Visible() []catalog.CourseCard {
	courses := facets.Filter(e.courses, e.selection, e.search)
	cards := make([]catalog.CourseCard, len(courses))
	for i, c := range courses {
		cards[i] = catalog.CourseCard{Course: c, Saved: e.saved != nil && e.saved.IsSaved(c.ID)}
	}
	return cards
}

// SpecializationOptions returns the derived specialization options and
// whether the section is shown. The section only appears while a stream or
// course is selected and at least one option can be derived.
func (e *Explorer) SpecializationOptions() ([]string, bool) {
	if !e.selection.Active(facets.Streams) && !e.selection.Active(facets.Courses) {
		return nil, false
	}
	opts := facets.ResolveSpecializations(e.courses, e.selection)
	return opts, opts != nil
}

package facets

import (
	"strings"

	"github.com/acvora/acvora/pkg/catalog"
)

// MatchesSearch reports whether the lowercased title contains the lowercased
// search text. An empty search matches everything, including untitled courses.
func MatchesSearch(c catalog.Course, search string) bool {
	if search == "" {
		return true
	}
	if c.Title == "" {
		return false
	}
	return strings.Contains(strings.ToLower(c.Title), strings.ToLower(search))
}

// Include decides whether a course is shown for the given selection and search.
//
// A non-empty specializations selection short-circuits every other facet: the
// course is kept iff it matches the search and offers one of the selected
// specializations. Otherwise each facet with a selection must contain the
// course value (any value for multi-valued fields).
func Include(c catalog.Course, sel Selection, search string) bool {
	if !MatchesSearch(c, search) {
		return false
	}
	if sel.Active(Specializations) {
		return sel.matchesAny(Specializations, c.SpecializationNames())
	}
	for _, f := range declared {
		if f.key == Specializations || !sel.Active(f.key) {
			continue
		}
		if !sel.matchesAny(f.key, f.values(c)) {
			return false
		}
	}
	return true
}

// Filter returns the courses Include keeps, in input order.
func Filter(courses []catalog.Course, sel Selection, search string) []catalog.Course {
	out := make([]catalog.Course, 0, len(courses))
	for _, c := range courses {
		if Include(c, sel, search) {
			out = append(out, c)
		}
	}
	return out
}

// ResolveSpecializations derives the specialization options offered for the
// current selection. With course titles selected it is the union over those
// courses; otherwise the union over courses matching the stream and course
// type selection. A nil result means the section is not shown at all.
func ResolveSpecializations(courses []catalog.Course, sel Selection) []string {
	var pool []catalog.Course
	if sel.Active(Courses) {
		for _, c := range courses {
			if sel.Has(Courses, c.Title) && c.Title != "" {
				pool = append(pool, c)
			}
		}
	} else {
		for _, c := range courses {
			if sel.Active(Streams) && !sel.matchesAny(Streams, single(c.Stream)) {
				continue
			}
			if sel.Active(CourseType) && !sel.matchesAny(CourseType, single(c.DegreeType)) {
				continue
			}
			pool = append(pool, c)
		}
	}

	opts := distinctSorted(pool, func(c catalog.Course) []string { return c.SpecializationNames() })
	if len(opts) == 0 {
		return nil
	}
	return opts
}

// Package facets derives facet option lists from a course collection and
// decides which courses a facet selection and search text keep.
package facets

import (
	"sort"

	"github.com/acvora/acvora/pkg/catalog"
)

// Key names a filterable course attribute.
type Key string

const (
	Streams         Key = "streams"
	CourseType      Key = "courseType"
	CourseLevel     Key = "courseLevel"
	States          Key = "states"
	Cities          Key = "cities"
	Exams           Key = "exams"
	Courses         Key = "courses"
	Specializations Key = "specializations"
)

type facet struct {
	key    Key
	label  string
	values func(c catalog.Course) []string
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

var declared = []facet{
	{Streams, "Stream", func(c catalog.Course) []string { return single(c.Stream) }},
	{CourseType, "Course Type", func(c catalog.Course) []string { return single(c.DegreeType) }},
	{CourseLevel, "Course Level", func(c catalog.Course) []string { return single(c.Level) }},
	{States, "State", func(c catalog.Course) []string { return single(c.State) }},
	{Cities, "City", func(c catalog.Course) []string { return single(c.City) }},
	{Exams, "Entrance/Exam Accepted", func(c catalog.Course) []string { return c.Exams }},
	{Courses, "Course", func(c catalog.Course) []string { return single(c.Title) }},
	{Specializations, "Specializations", func(c catalog.Course) []string { return c.SpecializationNames() }},
}

var byKey = func() map[Key]facet {
	m := make(map[Key]facet, len(declared))
	for _, f := range declared {
		m[f.key] = f
	}
	return m
}()

// Keys returns every declared facet key in display order.
func Keys() []Key {
	keys := make([]Key, len(declared))
	for i, f := range declared {
		keys[i] = f.key
	}
	return keys
}

// Label is the human readable facet title.
func Label(k Key) string {
	return byKey[k].label
}

// ParseKey validates a facet key coming from a query string.
func ParseKey(s string) (Key, bool) {
	_, ok := byKey[Key(s)]
	return Key(s), ok
}

// Index holds the option list of every facet.
type Index map[Key][]string

// BuildIndex computes, for each declared facet, the distinct non-empty values
// observed in courses, sorted ascending.
func BuildIndex(courses []catalog.Course) Index {
	idx := make(Index, len(declared))
	for _, f := range declared {
		idx[f.key] = distinctSorted(courses, f.values)
	}
	return idx
}

func distinctSorted(courses []catalog.Course, values func(catalog.Course) []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, c := range courses {
		for _, v := range values(c) {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

package facets

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/acvora/acvora/pkg/catalog"
)

// SortKey selects the ordering of the working course collection.
type SortKey string

const (
	SortDefault  SortKey = "default"
	SortAlpha    SortKey = "alpha"
	SortDuration SortKey = "duration"
)

// ParseSortKey accepts "", "default", "alpha" and "duration".
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortDefault:
		return SortDefault, nil
	case SortAlpha, SortDuration:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q (available: default, alpha, duration)", s)
}

var leadingFloat = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseDuration reads the leading decimal number of a duration such as
// "4 years" or "1.5". Missing or unparseable durations yield NaN.
func ParseDuration(raw string) float64 {
	m := leadingFloat.FindString(raw)
	if m == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Sort returns a reordered copy of courses. Alphabetical order uses English
// collation on titles (missing titles compare as ""). Duration order is
// ascending, with missing or unparseable durations last. Both are stable.
func Sort(courses []catalog.Course, key SortKey) []catalog.Course {
	out := make([]catalog.Course, len(courses))
	copy(out, courses)

	switch key {
	case SortAlpha:
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Title, out[j].Title) < 0
		})
	case SortDuration:
		type keyed struct {
			course   catalog.Course
			duration float64
		}
		ks := make([]keyed, len(out))
		for i, c := range out {
			ks[i] = keyed{course: c, duration: ParseDuration(c.Duration)}
		}
		sort.SliceStable(ks, func(i, j int) bool {
			di, dj := ks[i].duration, ks[j].duration
			if math.IsNaN(di) {
				return false
			}
			if math.IsNaN(dj) {
				return true
			}
			return di < dj
		})
		for i := range ks {
			out[i] = ks[i].course
		}
	}
	return out
}

package facets

import "sort"

// Selection maps every declared facet to its set of chosen values. An empty
// set imposes no constraint.
type Selection map[Key]map[string]struct{}

// NewSelection returns a selection with an empty entry for every facet.
func NewSelection() Selection {
	s := make(Selection, len(declared))
	for _, f := range declared {
		s[f.key] = map[string]struct{}{}
	}
	return s
}

func (s Selection) set(k Key) map[string]struct{} {
	vals, ok := s[k]
	if !ok {
		vals = map[string]struct{}{}
		s[k] = vals
	}
	return vals
}

// Toggle adds value to facet k, or removes it when already selected.
func (s Selection) Toggle(k Key, value string) {
	vals := s.set(k)
	if _, ok := vals[value]; ok {
		delete(vals, value)
		return
	}
	vals[value] = struct{}{}
}

// Add selects value for facet k.
func (s Selection) Add(k Key, values ...string) {
	vals := s.set(k)
	for _, v := range values {
		vals[v] = struct{}{}
	}
}

// SelectOne replaces the selection of facet k with value; an empty value
// clears the facet.
func (s Selection) SelectOne(k Key, value string) {
	s[k] = map[string]struct{}{}
	if value != "" {
		s[k][value] = struct{}{}
	}
}

// Clear empties every facet.
func (s Selection) Clear() {
	for _, f := range declared {
		s[f.key] = map[string]struct{}{}
	}
}

// Has reports whether value is selected for facet k.
func (s Selection) Has(k Key, value string) bool {
	_, ok := s[k][value]
	return ok
}

// Active reports whether facet k has at least one selected value.
func (s Selection) Active(k Key) bool {
	return len(s[k]) > 0
}

// Selected returns the chosen values of facet k, sorted.
func (s Selection) Selected(k Key) []string {
	out := make([]string, 0, len(s[k]))
	for v := range s[k] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	c := NewSelection()
	for k, vals := range s {
		for v := range vals {
			c.Add(k, v)
		}
	}
	return c
}

// matchesAny reports whether at least one value is selected for facet k.
// Empty values never match.
func (s Selection) matchesAny(k Key, values []string) bool {
	vals := s[k]
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := vals[v]; ok {
			return true
		}
	}
	return false
}

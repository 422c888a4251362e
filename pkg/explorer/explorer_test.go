package explorer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/acvora/acvora/pkg/catalog"
	"github.com/acvora/acvora/pkg/facets"
)

type stubSource struct {
	courses []catalog.Course
	err     error
}

func (s stubSource) Courses(context.Context) ([]catalog.Course, error) {
	return s.courses, s.err
}

type savedIDs map[string]bool

func (s savedIDs) IsSaved(id string) bool { return s[id] }

func sampleCourses() []catalog.Course {
	return []catalog.Course{
		{ID: "1", Title: "B.Tech CSE", Stream: "Engineering", Duration: "4 years", Specializations: []catalog.Specialization{{Name: "AI"}, {Name: "Data Science"}}},
		{ID: "2", Title: "MBA", Stream: "Management", Duration: "2 years", Specializations: []catalog.Specialization{{Name: "Finance"}}},
		{ID: "3", Title: "B.Tech ECE", Stream: "Engineering", Duration: "4 years"},
	}
}

func ids(cards []catalog.CourseCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestLoad(t *testing.T) {
	e := New(stubSource{courses: sampleCourses()})
	if !e.Loading() {
		t.Fatalf("new explorer should be loading")
	}
	e.Load(context.Background())
	if e.Loading() {
		t.Fatalf("explorer still loading after Load")
	}
	if e.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", e.Count())
	}
	if got, want := e.Options(facets.Streams), []string{"Engineering", "Management"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("stream options = %v, want %v", got, want)
	}
}

func TestLoadFailureLeavesEmptyCollection(t *testing.T) {
	e := New(stubSource{err: errors.New("boom")})
	e.Load(context.Background())
	if e.Loading() || e.Count() != 0 || len(e.Visible()) != 0 {
		t.Fatalf("failed load should leave an empty, loaded explorer")
	}
	if got := e.Options(facets.Streams); got == nil || len(got) != 0 {
		t.Fatalf("options after failed load = %#v, want empty", got)
	}
}

func TestVisibleFiltersAndAnnotates(t *testing.T) {
	e := New(stubSource{courses: sampleCourses()}, WithSaved(savedIDs{"3": true}))
	e.Load(context.Background())

	e.ToggleFilter(facets.Streams, "Engineering")
	cards := e.Visible()
	if got, want := ids(cards), []string{"1", "3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	if cards[0].Saved || !cards[1].Saved {
		t.Fatalf("saved flags = %v/%v, want false/true", cards[0].Saved, cards[1].Saved)
	}

	e.SetSearch("ece")
	if got, want := ids(e.Visible()), []string{"3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("visible with search = %v, want %v", got, want)
	}

	e.ClearFilters()
	e.SetSearch("")
	if len(e.Visible()) != 3 {
		t.Fatalf("clear should restore every course")
	}
}

func TestSetSortReordersCollection(t *testing.T) {
	e := New(stubSource{courses: sampleCourses()})
	e.Load(context.Background())

	e.SetSort(facets.SortAlpha)
	if got, want := ids(e.Visible()), []string{"1", "3", "2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("alpha order = %v, want %v", got, want)
	}

	// default keeps whatever order the collection already has
	e.SetSort(facets.SortDefault)
	if got, want := ids(e.Visible()), []string{"1", "3", "2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("default after alpha = %v, want %v", got, want)
	}

	e.SetSort(facets.SortDuration)
	if got, want := ids(e.Visible()), []string{"2", "1", "3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("duration order = %v, want %v", got, want)
	}
}

func TestSpecializationOptions(t *testing.T) {
	e := New(stubSource{courses: sampleCourses()})
	e.Load(context.Background())

	if _, shown := e.SpecializationOptions(); shown {
		t.Fatalf("section shown without a stream or course selected")
	}

	e.ToggleFilter(facets.Streams, "Engineering")
	opts, shown := e.SpecializationOptions()
	if !shown || !reflect.DeepEqual(opts, []string{"AI", "Data Science"}) {
		t.Fatalf("options = %v shown=%v", opts, shown)
	}

	e.ClearFilters()
	e.ToggleFilter(facets.Courses, "B.Tech ECE")
	if _, shown := e.SpecializationOptions(); shown {
		t.Fatalf("section shown for a course without specializations")
	}
}

func TestAccordionAndExpanded(t *testing.T) {
	e := New(stubSource{})

	e.ToggleAccordion(facets.States)
	if e.OpenAccordion() != facets.States {
		t.Fatalf("accordion = %q, want states", e.OpenAccordion())
	}
	e.ToggleAccordion(facets.Cities)
	if e.OpenAccordion() != facets.Cities {
		t.Fatalf("opening a section must close the other one")
	}
	e.ToggleAccordion(facets.Cities)
	if e.OpenAccordion() != "" {
		t.Fatalf("toggling the open section should close it")
	}

	e.ToggleExpanded("1")
	e.ToggleExpanded("2")
	if e.Expanded() != "2" {
		t.Fatalf("expanded = %q, want 2", e.Expanded())
	}
	e.ToggleExpanded("2")
	if e.Expanded() != "" {
		t.Fatalf("expanded card should collapse")
	}
}

func TestSelectOne(t *testing.T) {
	e := New(stubSource{courses: sampleCourses()})
	e.Load(context.Background())

	e.SelectOne(facets.Courses, "MBA")
	e.SelectOne(facets.Courses, "B.Tech CSE")
	if got, want := ids(e.Visible()), []string{"1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	e.SelectOne(facets.Courses, "")
	if len(e.Visible()) != 3 {
		t.Fatalf("empty single select should clear the facet")
	}
}

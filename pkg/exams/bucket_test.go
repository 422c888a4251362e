package exams

import (
	"testing"
	"time"

	"github.com/acvora/acvora/pkg/catalog"
)

func TestClassify(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		exam catalog.Exam
		want Tab
	}{
		{"next month", catalog.Exam{ExamDate: "2025-07-01"}, Upcoming},
		{"later this month", catalog.Exam{ExamDate: "2025-06-20"}, Ongoing},
		{"earlier this month", catalog.Exam{ExamDate: "2025-06-01"}, Ongoing},
		{"last month", catalog.Exam{ExamDate: "2025-05-01"}, Past},
		{"same month last year", catalog.Exam{ExamDate: "2024-06-20"}, Past},
		{"same month next year", catalog.Exam{ExamDate: "2026-06-01"}, Upcoming},
		{"no date", catalog.Exam{}, Upcoming},
		{"unparseable date", catalog.Exam{ExamDate: "TBA"}, Upcoming},
		{"deadline fallback", catalog.Exam{ApplicationDeadline: "2025-01-10"}, Past},
		{"exam date wins over deadline", catalog.Exam{ExamDate: "2025-09-01", ApplicationDeadline: "2025-01-10"}, Upcoming},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.exam, now); got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestBucketsAreExclusive(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	exams := []catalog.Exam{
		{ID: "a", ExamDate: "2025-07-01"},
		{ID: "b", ExamDate: "2025-06-20"},
		{ID: "c", ExamDate: "2025-05-01"},
		{ID: "d"},
	}
	total := 0
	for _, tab := range Tabs {
		total += len(InTab(exams, tab, now))
	}
	if total != len(exams) {
		t.Fatalf("every exam must land in exactly one tab, got %d placements for %d exams", total, len(exams))
	}
}

func TestParseTab(t *testing.T) {
	for in, want := range map[string]Tab{"upcoming": Upcoming, "Ongoing": Ongoing, " PAST ": Past} {
		got, err := ParseTab(in)
		if err != nil || got != want {
			t.Fatalf("ParseTab(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseTab("later"); err == nil {
		t.Fatalf("expected error for unknown tab")
	}
}

func TestSearch(t *testing.T) {
	exams := []catalog.Exam{{Name: "JEE Main"}, {Name: "NEET UG"}, {Name: "JEE Advanced"}}
	if got := Search(exams, "jee"); len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", got)
	}
	if got := Search(exams, ""); len(got) != 3 {
		t.Fatalf("empty search must keep everything, got %v", got)
	}
}

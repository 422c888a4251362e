package exams

import (
	"fmt"
	"strings"
	"time"

	"github.com/acvora/acvora/pkg/catalog"
)

// Tab is one of the mutually exclusive time buckets of the dashboard.
type Tab string

const (
	Upcoming Tab = "Upcoming"
	Ongoing  Tab = "Ongoing"
	Past     Tab = "Past"
)

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{Upcoming, Ongoing, Past}

// ParseTab accepts a tab name in any letter case.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q (available: Upcoming, Ongoing, Past)", s)
}

// Classify buckets an exam relative to now using its primary date (exam date,
// else application deadline). Exams without a usable date are Upcoming. A date
// in the same calendar month and year as now is Ongoing even when it is still
// ahead; otherwise later dates are Upcoming and earlier ones Past.
func Classify(e catalog.Exam, now time.Time) Tab {
	date, ok := catalog.ParseDate(e.PrimaryDate())
	if !ok {
		return Upcoming
	}
	date = date.In(now.Location())
	switch {
	case date.Year() == now.Year() && date.Month() == now.Month():
		return Ongoing
	case date.After(now):
		return Upcoming
	default:
		return Past
	}
}

// InTab keeps the exams classified into tab, preserving order.
func InTab(exams []catalog.Exam, tab Tab, now time.Time) []catalog.Exam {
	out := make([]catalog.Exam, 0, len(exams))
	for _, e := range exams {
		if Classify(e, now) == tab {
			out = append(out, e)
		}
	}
	return out
}

// Search keeps the exams whose name contains search, ignoring case.
func Search(exams []catalog.Exam, search string) []catalog.Exam {
	if search == "" {
		return exams
	}
	needle := strings.ToLower(search)
	out := make([]catalog.Exam, 0, len(exams))
	for _, e := range exams {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}

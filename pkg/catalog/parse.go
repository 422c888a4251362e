package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	untitledExam   = "Untitled Exam"
	notProvided    = "Not Provided"
	userSubmitted  = "User Submitted"
	noEvent        = "No Event"
	newExamAdded   = "New Exam Added"
	eventDateShape = "Jan 2006"
)

// ErrNotArray is returned when a collection payload is not a JSON array.
var ErrNotArray = errors.New("payload is not a JSON array")

// RecordID returns the string-normalized identifier of a record, preferring
// "_id" over "id". Numeric ids are rendered in their JSON text form.
func RecordID(r gjson.Result) string {
	for _, path := range []string{"_id", "id"} {
		v := r.Get(path)
		if v.Exists() && v.Type != gjson.Null && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func str(r gjson.Result, path string) string {
	v := r.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}

// ParseCourses maps a GET /api/courses body to courses. Unknown fields are
// ignored and absent ones left empty.
func ParseCourses(body string) ([]Course, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("invalid courses payload")
	}
	root := gjson.Parse(body)
	if root.Type == gjson.Null {
		return []Course{}, nil
	}
	if !root.IsArray() {
		return nil, ErrNotArray
	}

	courses := make([]Course, 0, len(root.Array()))
	root.ForEach(func(_, record gjson.Result) bool {
		c := Course{
			ID:          RecordID(record),
			Title:       str(record, "courseTitle"),
			Stream:      str(record, "stream"),
			DegreeType:  str(record, "degreeType"),
			Level:       str(record, "level"),
			State:       str(record, "state"),
			City:        str(record, "city"),
			Duration:    str(record, "duration"),
			Eligibility: str(record, "eligibility"),
		}
		record.Get("exams").ForEach(func(_, ex gjson.Result) bool {
			if ex.Type != gjson.Null && ex.String() != "" {
				c.Exams = append(c.Exams, ex.String())
			}
			return true
		})
		record.Get("specializations").ForEach(func(_, spec gjson.Result) bool {
			c.Specializations = append(c.Specializations, Specialization{Name: str(spec, "name")})
			return true
		})
		record.Get("topInstituteImages").ForEach(func(_, inst gjson.Result) bool {
			c.TopInstitutes = append(c.TopInstitutes, Institute{
				URL:         str(inst, "url"),
				Description: str(inst, "description"),
			})
			return true
		})
		courses = append(courses, c)
		return true
	})
	return courses, nil
}

// ParseExams maps a GET /api/exams body to dashboard exams.
func ParseExams(body string) ([]Exam, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("invalid exams payload")
	}
	root := gjson.Parse(body)
	if root.Type == gjson.Null {
		return []Exam{}, nil
	}
	if !root.IsArray() {
		return nil, ErrNotArray
	}

	exams := make([]Exam, 0, len(root.Array()))
	root.ForEach(func(_, record gjson.Result) bool {
		exams = append(exams, mapExam(ExamSubmission{
			ID:                  RecordID(record),
			ExamName:            str(record, "examName"),
			ResultExamName:      str(record, "resultExamName"),
			ConductingBody:      str(record, "conductingBody"),
			ExamDate:            str(record, "examDate"),
			ApplicationDeadline: str(record, "applicationDeadline"),
			ModeLevel:           str(record, "modeLevel"),
		}, notProvided, noEvent))
		return true
	})
	return exams, nil
}

// FromSubmission maps a live submission the same way server records are
// mapped, with the defaults used for user-entered exams. The caller is
// responsible for assigning an id when the submission has none.
func FromSubmission(s ExamSubmission) Exam {
	return mapExam(s, userSubmitted, newExamAdded)
}

func mapExam(s ExamSubmission, bodyDefault, eventDefault string) Exam {
	e := Exam{
		ID:                  s.ID,
		Name:                firstOf(s.ExamName, s.ResultExamName, untitledExam),
		ConductingBody:      firstOf(s.ConductingBody, bodyDefault),
		ExamDate:            s.ExamDate,
		ApplicationDeadline: s.ApplicationDeadline,
		ModeLevel:           firstOf(s.ModeLevel, notProvided),
	}
	switch {
	case e.ApplicationDeadline != "":
		e.NextEvent = "Registration Open - " + formatEventDate(e.ApplicationDeadline)
	case e.ExamDate != "":
		e.NextEvent = "Exam Date - " + formatEventDate(e.ExamDate)
	default:
		e.NextEvent = eventDefault
	}
	return e
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func formatEventDate(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return "Invalid Date"
	}
	return t.Format(eventDateShape)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate parses the date shapes the catalog API emits. Date-only values
// are taken as UTC midnight.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

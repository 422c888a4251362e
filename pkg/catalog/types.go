package catalog

// Specialization is one named branch of a course (e.g. "AI" for B.Tech CSE).
type Specialization struct {
	Name string `json:"name"`
}

// Institute is a top institute offering a course, as shown on an expanded card.
type Institute struct {
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// Course is a catalog record. Empty strings stand for absent fields.
type Course struct {
	ID              string           `json:"id"`
	Title           string           `json:"courseTitle"`
	Stream          string           `json:"stream,omitempty"`
	DegreeType      string           `json:"degreeType,omitempty"`
	Level           string           `json:"level,omitempty"`
	State           string           `json:"state,omitempty"`
	City            string           `json:"city,omitempty"`
	Duration        string           `json:"duration,omitempty"`
	Eligibility     string           `json:"eligibility,omitempty"`
	Exams           []string         `json:"exams,omitempty"`
	Specializations []Specialization `json:"specializations,omitempty"`
	TopInstitutes   []Institute      `json:"topInstituteImages,omitempty"`
}

// SpecializationNames returns the non-empty specialization names in order.
func (c Course) SpecializationNames() []string {
	names := make([]string, 0, len(c.Specializations))
	for _, s := range c.Specializations {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

// Tags are the short labels shown on a course card.
func (c Course) Tags() []string {
	var tags []string
	for _, t := range []string{c.Duration, c.DegreeType, c.Level} {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Exam is an exam dashboard record.
type Exam struct {
	ID                  string `json:"_id"`
	Name                string `json:"examName"`
	ConductingBody      string `json:"conductingBody"`
	ExamDate            string `json:"examDate,omitempty"`
	ApplicationDeadline string `json:"applicationDeadline,omitempty"`
	NextEvent           string `json:"nextEvent"`
	ModeLevel           string `json:"modeLevel"`
}

// PrimaryDate is the date used for tab bucketing: exam date, else deadline.
func (e Exam) PrimaryDate() string {
	if e.ExamDate != "" {
		return e.ExamDate
	}
	return e.ApplicationDeadline
}

// ExamSubmission is an exam entered elsewhere in the application and pushed
// to the dashboard without a network round trip.
type ExamSubmission struct {
	ID                  string `json:"_id,omitempty"`
	ExamName            string `json:"examName,omitempty"`
	ResultExamName      string `json:"resultExamName,omitempty"`
	ConductingBody      string `json:"conductingBody,omitempty"`
	ExamDate            string `json:"examDate,omitempty"`
	ApplicationDeadline string `json:"applicationDeadline,omitempty"`
	ModeLevel           string `json:"modeLevel,omitempty"`
}

// SavedCourse is the payload of a create-saved-course request.
type SavedCourse struct {
	CourseID    string `json:"courseId"`
	CourseTitle string `json:"courseTitle"`
	Eligibility string `json:"eligibility"`
}

package catalog

import (
	"fmt"
	"io"
	"strings"
)

// CourseCard is a course as rendered in the explorer list.
type CourseCard struct {
	Course
	Saved bool `json:"saved"`
}

// PrintCourses writes one line per card. Output flags select the columns:
// i (id), t (title), s (stream), y (degree type), l (level), d (duration),
// x (specializations), e (exams), c (city/state), g (eligibility), b (saved marker).
func PrintCourses(w io.Writer, cards []CourseCard, outputFlags, delimiter string) error {
	for _, card := range cards {
		line, err := createCourseLine(card, outputFlags, delimiter)
		if err != nil {
			return err
		}
		if len(line) > 0 {
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func createCourseLine(card CourseCard, outputFlags, delimiter string) (string, error) {
	var line string
	for _, f := range outputFlags {
		switch f {
		case 'i':
			line += card.ID + delimiter
		case 't':
			line += card.Title + delimiter
		case 's':
			line += card.Stream + delimiter
		case 'y':
			line += card.DegreeType + delimiter
		case 'l':
			line += card.Level + delimiter
		case 'd':
			line += card.Duration + delimiter
		case 'x':
			line += strings.Join(card.SpecializationNames(), ",") + delimiter
		case 'e':
			line += strings.Join(card.Exams, ",") + delimiter
		case 'c':
			line += strings.Trim(card.City+"/"+card.State, "/") + delimiter
		case 'g':
			line += card.Eligibility + delimiter
		case 'b':
			if card.Saved {
				line += "[saved]" + delimiter
			} else {
				line += "[ ]" + delimiter
			}
		default:
			return "", fmt.Errorf("invalid output flag: %q", f)
		}
	}
	return strings.TrimSuffix(line, delimiter), nil
}

// PrintCourseDetails writes the expanded card body: tags, specializations and
// the top institutes, with institute image paths resolved against assetBase.
func PrintCourseDetails(w io.Writer, c Course, assetBase string) {
	fmt.Fprintf(w, "%s\n", c.Title)
	if tags := c.Tags(); len(tags) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(tags, " | "))
	}
	if names := c.SpecializationNames(); len(names) > 0 {
		fmt.Fprintf(w, "  Specializations: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "  Top Institutes Offering %s\n", c.Title)
	if len(c.TopInstitutes) == 0 {
		fmt.Fprintln(w, "    No institutes listed")
		return
	}
	for _, inst := range c.TopInstitutes {
		desc := inst.Description
		if desc == "" {
			desc = "Unknown Institute"
		}
		fmt.Fprintf(w, "    %s (%s)\n", desc, InstituteImageURL(assetBase, inst))
	}
}

// InstituteImageURL resolves an institute image path on the API host, falling
// back to the default logo when no path is set.
func InstituteImageURL(assetBase string, inst Institute) string {
	if inst.URL == "" {
		return "/default-logo.png"
	}
	return strings.TrimRight(assetBase, "/") + "/" + strings.TrimLeft(inst.URL, "/")
}

// PrintExams writes one line per exam. Output flags: i (id), n (name),
// b (conducting body), e (next event), m (mode & level), d (primary date).
func PrintExams(w io.Writer, exams []Exam, outputFlags, delimiter string) error {
	for _, e := range exams {
		var line string
		for _, f := range outputFlags {
			switch f {
			case 'i':
				line += e.ID + delimiter
			case 'n':
				line += e.Name + delimiter
			case 'b':
				line += e.ConductingBody + delimiter
			case 'e':
				line += e.NextEvent + delimiter
			case 'm':
				line += e.ModeLevel + delimiter
			case 'd':
				line += e.PrimaryDate() + delimiter
			default:
				return fmt.Errorf("invalid output flag: %q", f)
			}
		}
		line = strings.TrimSuffix(line, delimiter)
		if len(line) > 0 {
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

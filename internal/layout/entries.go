package layout

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// Entry is the display form of one list item, already formatted and with placeholders
// applied. Templates and exporters style entries differently but print the same text.
type Entry struct {
	ID         string
	Heading    string
	Subheading string
	Dates      string
	Body       string
}

// Entries returns the display entries of a list section. Summary yields a single entry
// carrying the summary text as Body.
func Entries(data types.CVData, section types.SectionID, loc Locale, style MonthStyle) []Entry {
	switch section {
	case types.SectionSummary:
		if !HasContent(data, section) {
			return nil
		}
		return []Entry{{Body: strings.TrimSpace(data.PersonalInfo.Summary)}}

	case types.SectionExperience:
		out := make([]Entry, 0, len(data.Experiences))
		for _, e := range data.Experiences {
			out = append(out, Entry{
				ID:         e.ID,
				Heading:    Or(e.Position, loc.Position),
				Subheading: Or(e.Company, loc.Company),
				Dates:      DateRange(e.StartDate, e.EffectiveEndDate(), e.Current, loc, style),
				Body:       strings.TrimSpace(e.Description),
			})
		}
		return out

	case types.SectionEducation:
		out := make([]Entry, 0, len(data.Education))
		for _, e := range data.Education {
			heading := Or(e.Degree, loc.Degree)
			if f := strings.TrimSpace(e.Field); f != "" {
				heading += " - " + f
			}
			out = append(out, Entry{
				ID:         e.ID,
				Heading:    heading,
				Subheading: Or(e.School, loc.School),
				Dates:      DateRange(e.StartDate, e.EndDate, false, loc, style),
				Body:       strings.TrimSpace(e.Description),
			})
		}
		return out

	case types.SectionSkills:
		out := make([]Entry, 0, len(data.Skills))
		for _, s := range data.Skills {
			out = append(out, Entry{ID: s.ID, Heading: Or(s.Name, loc.Skill)})
		}
		return out

	case types.SectionLanguages:
		out := make([]Entry, 0, len(data.Languages))
		for _, l := range data.Languages {
			out = append(out, Entry{
				ID:         l.ID,
				Heading:    Or(l.Name, loc.Language),
				Subheading: loc.LevelLabel(strings.TrimSpace(l.Level)),
			})
		}
		return out
	}
	return nil
}

// EntryTitle joins heading and subheading the way single-line exporters print them
func EntryTitle(e Entry) string {
	if e.Subheading == "" {
		return e.Heading
	}
	return e.Heading + " — " + e.Subheading
}

package layout

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// HasContent reports whether section has data worth rendering.
// Every renderer and exporter skips a section, heading included, when this is false.
func HasContent(data types.CVData, section types.SectionID) bool {
	switch section {
	case types.SectionSummary:
		return strings.TrimSpace(data.PersonalInfo.Summary) != ""
	case types.SectionExperience:
		return len(data.Experiences) > 0
	case types.SectionEducation:
		return len(data.Education) > 0
	case types.SectionSkills:
		return len(data.Skills) > 0
	case types.SectionLanguages:
		return len(data.Languages) > 0
	}
	return false
}

// VisibleSections returns the subsequence of the resolved order whose data is present
func VisibleSections(data types.CVData, order []types.SectionID) []types.SectionID {
	visible := make([]types.SectionID, 0, len(order))
	for _, s := range ResolveOrder(order) {
		if HasContent(data, s) {
			visible = append(visible, s)
		}
	}
	return visible
}

// IsEmpty reports whether no section at all has content
func IsEmpty(data types.CVData) bool {
	return len(VisibleSections(data, nil)) == 0
}

// SkillNames returns the non-empty skill names in list order
func SkillNames(skills []types.Skill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		if n := strings.TrimSpace(s.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}

package types

// SectionID tags one of the reorderable logical sections.
// The personal-info header is not a section: it always renders first.
type SectionID string

// Known sections
const (
	SectionSummary    SectionID = "summary"
	SectionExperience SectionID = "experience"
	SectionEducation  SectionID = "education"
	SectionSkills     SectionID = "skills"
	SectionLanguages  SectionID = "languages"
)

// DefaultSectionOrder returns a fresh copy of the default order
func DefaultSectionOrder() []SectionID {
	return []SectionID{
		SectionSummary,
		SectionExperience,
		SectionEducation,
		SectionSkills,
		SectionLanguages,
	}
}

// Valid reports whether s is a recognized section
func (s SectionID) Valid() bool {
	switch s {
	case SectionSummary, SectionExperience, SectionEducation, SectionSkills, SectionLanguages:
		return true
	}
	return false
}

// TemplateID is the stable identifier of a visual template
type TemplateID string

// Known templates
const (
	TemplateModern       TemplateID = "modern"
	TemplateClassic      TemplateID = "classic"
	TemplateCreative     TemplateID = "creative"
	TemplateExecutive    TemplateID = "executive"
	TemplateMinimalist   TemplateID = "minimalist"
	TemplateProfessional TemplateID = "professional"
	TemplateCorporate    TemplateID = "corporate"
	TemplateElegant      TemplateID = "elegant"
	TemplateATS          TemplateID = "ats"
	TemplateSwiss        TemplateID = "swiss"
	TemplateEditorial    TemplateID = "editorial"
	TemplateTechMono     TemplateID = "techmono"
)

// DefaultTemplate is used whenever a template identifier is unset or unknown
const DefaultTemplate = TemplateModern

// AllTemplates lists every template in selector order
func AllTemplates() []TemplateID {
	return []TemplateID{
		TemplateModern,
		TemplateClassic,
		TemplateCreative,
		TemplateExecutive,
		TemplateMinimalist,
		TemplateProfessional,
		TemplateCorporate,
		TemplateElegant,
		TemplateATS,
		TemplateSwiss,
		TemplateEditorial,
		TemplateTechMono,
	}
}

// Known reports whether t names a template
func (t TemplateID) Known() bool {
	for _, id := range AllTemplates() {
		if id == t {
			return true
		}
	}
	return false
}

// OrDefault returns t when known, DefaultTemplate otherwise
func (t TemplateID) OrDefault() TemplateID {
	if t.Known() {
		return t
	}
	return DefaultTemplate
}

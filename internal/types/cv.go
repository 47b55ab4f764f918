// Package types provides type definitions for the CV data model shared by every package of the cv-builder.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/google/uuid"
)

// PersonalInfo is the header block of a CV. Every field may be empty.
type PersonalInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Title     string `json:"title"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	// Photo holds an embedded image as a data URL (data:image/png;base64,...).
	Photo    string `json:"photo,omitempty"`
	Summary  string `json:"summary"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// FullName joins first and last name, trimming the gap when either is missing
func (p PersonalInfo) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Experience is one entry of the work history.
// Dates use the "YYYY-MM" wire format, empty meaning unset.
type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EffectiveEndDate returns the end date to display; a current position has none.
func (e Experience) EffectiveEndDate() string {
	if e.Current {
		return ""
	}
	return e.EndDate
}

// ItemID implements Identified
func (e Experience) ItemID() string { return e.ID }

// Education is one entry of the education history
type Education struct {
	ID          string `json:"id"`
	School      string `json:"school"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// ItemID implements Identified
func (e Education) ItemID() string { return e.ID }

// Skill is a named skill. Level (1-5) is stored but not rendered by any template yet.
type Skill struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// ItemID implements Identified
func (s Skill) ItemID() string { return s.ID }

// Language is a spoken language with a proficiency label
type Language struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

// ItemID implements Identified
func (l Language) ItemID() string { return l.ID }

// Identified is implemented by every reorderable list item
type Identified interface {
	ItemID() string
}

// Skill level bounds
const (
	MinSkillLevel     = 1
	MaxSkillLevel     = 5
	DefaultSkillLevel = 3
)

// Language proficiency levels, lowest to highest
const (
	LevelBeginner     = "Beginner"
	LevelElementary   = "Elementary"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelFluent       = "Fluent"
	LevelNative       = "Native"
)

// LanguageLevels lists the proficiency levels offered by the editor
var LanguageLevels = []string{
	LevelBeginner,
	LevelElementary,
	LevelIntermediate,
	LevelAdvanced,
	LevelFluent,
	LevelNative,
}

// IsKnownLanguageLevel reports whether level is one of LanguageLevels.
// Unknown levels are kept as free text rather than rejected.
func IsKnownLanguageLevel(level string) bool {
	for _, l := range LanguageLevels {
		if l == level {
			return true
		}
	}
	return false
}

// CVData is the canonical CV record. List order is meaningful and user controlled.
type CVData struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Experiences  []Experience `json:"experiences"`
	Education    []Education  `json:"education"`
	Skills       []Skill      `json:"skills"`
	Languages    []Language   `json:"languages"`
}

// NewCVData returns an empty record with non-nil lists
func NewCVData() CVData {
	return CVData{
		Experiences: []Experience{},
		Education:   []Education{},
		Skills:      []Skill{},
		Languages:   []Language{},
	}
}

// Clone returns a deep copy so exports can snapshot data before blocking
func (d CVData) Clone() CVData {
	out := d
	out.Experiences = append(make([]Experience, 0, len(d.Experiences)), d.Experiences...)
	out.Education = append(make([]Education, 0, len(d.Education)), d.Education...)
	out.Skills = append(make([]Skill, 0, len(d.Skills)), d.Skills...)
	out.Languages = append(make([]Language, 0, len(d.Languages)), d.Languages...)
	return out
}

// IsBlank reports whether the record has no identifying content
// (no first name, no last name and no experience).
func (d CVData) IsBlank() bool {
	return strings.TrimSpace(d.PersonalInfo.FirstName) == "" &&
		strings.TrimSpace(d.PersonalInfo.LastName) == "" &&
		len(d.Experiences) == 0
}

// NewID returns a fresh identity for versions and list items
func NewID() string {
	return uuid.NewString()
}

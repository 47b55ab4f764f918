package layout

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MonthStyle selects which month-name table a template prints
type MonthStyle int

// Month tables
const (
	MonthShort MonthStyle = iota
	MonthLong
	MonthASCII
	MonthNumeric
)

// Locale holds every user-facing label printed by templates and exporters
type Locale struct {
	Code        string
	Tag         language.Tag
	Present     string
	Titles      map[types.SectionID]string
	MonthsShort [12]string
	MonthsLong  [12]string
	MonthsASCII [12]string

	EmptyState       string
	NamePlaceholder  string
	TitlePlaceholder string
	Position         string
	Company          string
	Degree           string
	School           string
	Skill            string
	Language         string

	EmailLabel    string
	PhoneLabel    string
	AddressLabel  string
	LinkedInLabel string
	WebsiteLabel  string
	DefaultFile   string

	levels map[string]string
}

// English is the default locale
var English = Locale{
	Code:    "en",
	Tag:     language.English,
	Present: "Present",
	Titles: map[types.SectionID]string{
		types.SectionSummary:    "Professional Summary",
		types.SectionExperience: "Experience",
		types.SectionEducation:  "Education",
		types.SectionSkills:     "Skills",
		types.SectionLanguages:  "Languages",
	},
	MonthsShort: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	MonthsLong: [12]string{"January", "February", "March", "April", "May", "June", "July",
		"August", "September", "October", "November", "December"},
	MonthsASCII: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},

	EmptyState:       "Fill in the form to see your CV appear here",
	NamePlaceholder:  "FIRST LAST",
	TitlePlaceholder: "Professional title",
	Position:         "Position",
	Company:          "Company",
	Degree:           "Degree",
	School:           "School",
	Skill:            "Skill",
	Language:         "Language",

	EmailLabel:    "Email",
	PhoneLabel:    "Phone",
	AddressLabel:  "Address",
	LinkedInLabel: "LinkedIn",
	WebsiteLabel:  "Website",
	DefaultFile:   "My_CV",
}

// French is the French label set
var French = Locale{
	Code:    "fr",
	Tag:     language.French,
	Present: "Présent",
	Titles: map[types.SectionID]string{
		types.SectionSummary:    "Résumé professionnel",
		types.SectionExperience: "Expérience",
		types.SectionEducation:  "Formation",
		types.SectionSkills:     "Compétences",
		types.SectionLanguages:  "Langues",
	},
	MonthsShort: [12]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Jun", "Jul", "Aoû", "Sep", "Oct", "Nov", "Déc"},
	MonthsLong: [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet",
		"août", "septembre", "octobre", "novembre", "décembre"},
	MonthsASCII: [12]string{"Jan", "Fev", "Mar", "Avr", "Mai", "Juin", "Juil", "Aout", "Sep", "Oct", "Nov", "Dec"},

	EmptyState:       "Remplissez le formulaire pour voir votre CV apparaître ici",
	NamePlaceholder:  "PRÉNOM NOM",
	TitlePlaceholder: "Titre professionnel",
	Position:         "Poste",
	Company:          "Entreprise",
	Degree:           "Diplôme",
	School:           "Établissement",
	Skill:            "Compétence",
	Language:         "Langue",

	EmailLabel:    "Email",
	PhoneLabel:    "Téléphone",
	AddressLabel:  "Adresse",
	LinkedInLabel: "LinkedIn",
	WebsiteLabel:  "Site web",
	DefaultFile:   "Mon_CV",

	levels: map[string]string{
		types.LevelBeginner:     "Débutant",
		types.LevelElementary:   "Élémentaire",
		types.LevelIntermediate: "Intermédiaire",
		types.LevelAdvanced:     "Avancé",
		types.LevelFluent:       "Courant",
		types.LevelNative:       "Langue maternelle",
	},
}

// LocaleFor returns the locale for a code such as "fr" or "en-GB"; unknown codes get English
func LocaleFor(code string) Locale {
	base := strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(base, "-_"); i >= 0 {
		base = base[:i]
	}
	if base == French.Code {
		return French
	}
	return English
}

// Title returns the heading text of a section
func (l Locale) Title(s types.SectionID) string {
	return l.Titles[s]
}

// Upper upper-cases s with the locale's casing rules
func (l Locale) Upper(s string) string {
	return cases.Upper(l.Tag).String(s)
}

// LevelLabel translates a known proficiency level; free text passes through
func (l Locale) LevelLabel(level string) string {
	if t, ok := l.levels[level]; ok {
		return t
	}
	return level
}

// Or returns value, or the placeholder when value is blank
func Or(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

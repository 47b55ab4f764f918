package templates

import (
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

// Font families offered by the export dialog
const (
	FontSans  = "sans"
	FontSerif = "serif"
	FontMono  = "mono"
)

// Theme is the structural and visual fingerprint of a template. Exporters that do not
// reuse the HTML preview (DOCX) read it to approximate the selected template.
type Theme struct {
	// Accent is the heading and rule colour, as #rrggbb
	Accent string
	// HeaderFill is the header background colour; empty means no fill
	HeaderFill string
	// Sidebar selects the two-column page layout
	Sidebar bool
	// Side lists the sections the preview routes to the side column
	Side map[types.SectionID]bool
	// FontFamily is one of FontSans, FontSerif, FontMono
	FontFamily string
	Months     layout.MonthStyle
	// Pairing lays adjacent skills and languages side by side
	Pairing bool
	// UpperHeadings prints section titles in capitals
	UpperHeadings bool
}

var themes = map[types.TemplateID]Theme{
	types.TemplateModern: {
		Accent: "#2563eb", HeaderFill: "#1d4ed8", FontFamily: FontSans,
		Months: layout.MonthShort, Pairing: true,
	},
	types.TemplateClassic: {
		Accent: "#1f2937", FontFamily: FontSerif,
		Months: layout.MonthLong, Pairing: true, UpperHeadings: true,
	},
	types.TemplateCreative: {
		Accent: "#f59e0b", HeaderFill: "#1e293b", FontFamily: FontSans,
		Sidebar: true, Side: layout.SkillsLanguagesSide, Months: layout.MonthShort,
	},
	types.TemplateExecutive: {
		Accent: "#1e3a8a", HeaderFill: "#1e3a8a", FontFamily: FontSerif,
		Months: layout.MonthShort, Pairing: true, UpperHeadings: true,
	},
	types.TemplateMinimalist: {
		Accent: "#111827", FontFamily: FontSans, Months: layout.MonthShort,
	},
	types.TemplateProfessional: {
		Accent: "#334155", HeaderFill: "#f1f5f9", FontFamily: FontSans,
		Sidebar: true, Side: layout.SkillsLanguagesSide, Months: layout.MonthShort,
	},
	types.TemplateCorporate: {
		Accent: "#1e1b4b", HeaderFill: "#1e1b4b", FontFamily: FontSans,
		Months: layout.MonthShort, Pairing: true, UpperHeadings: true,
	},
	types.TemplateElegant: {
		Accent: "#c9a961", HeaderFill: "#1e3a5f", FontFamily: FontSerif,
		Months: layout.MonthShort, Pairing: true,
	},
	types.TemplateATS: {
		Accent: "#000000", FontFamily: FontSans, Months: layout.MonthNumeric, UpperHeadings: true,
	},
	types.TemplateSwiss: {
		Accent: "#dc2626", FontFamily: FontSans,
		Sidebar: true, Side: layout.SummarySkillsLanguagesSide, Months: layout.MonthASCII, UpperHeadings: true,
	},
	types.TemplateEditorial: {
		Accent: "#7c2d12", FontFamily: FontSerif, Months: layout.MonthASCII, Pairing: true,
	},
	types.TemplateTechMono: {
		Accent: "#16a34a", HeaderFill: "#0f172a", FontFamily: FontMono, Months: layout.MonthNumeric,
	},
}

// ThemeFor returns the theme of a template, falling back to the default template
func ThemeFor(id types.TemplateID) Theme {
	return themes[id.OrDefault()]
}

// CSSFontStack maps a font family choice to a CSS font-family value
func CSSFontStack(family string) string {
	switch family {
	case FontSerif:
		return `Georgia, "Times New Roman", serif`
	case FontMono:
		return `"JetBrains Mono", "Courier New", monospace`
	default:
		return `Inter, "Helvetica Neue", Arial, sans-serif`
	}
}

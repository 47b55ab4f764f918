package templates

import (
	"log"
	"strings"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

// Document is the structured output of a template: what is printed and in which slot,
// independent of markup.
type Document struct {
	Template types.TemplateID
	Theme    Theme
	Locale   string
	Header   Header

	// Blocks is the main flow. Side is only filled by sidebar templates.
	Blocks []Block
	Side   []Section

	// Empty is set when the CV carries no identifying content (no name, no experience)
	// or no section at all; EmptyMessage is then shown below the header.
	Empty        bool
	EmptyMessage string
}

// Header is the personal-info block, always rendered first
type Header struct {
	Name     string
	Title    string
	Photo    *layout.Photo
	Contacts []layout.Contact
}

// Block is one slot of the main flow: a single section or a side-by-side pair
type Block struct {
	Sections []Section
}

// Paired reports whether the block shows two sections side by side
func (b Block) Paired() bool {
	return len(b.Sections) == 2
}

// Section is a titled, non-empty section
type Section struct {
	ID      types.SectionID
	Title   string
	Entries []layout.Entry
	// Inline lists entries on one line (skills)
	Inline bool
}

// Sections returns every emitted section id, side column first
func (d *Document) Sections() []types.SectionID {
	var out []types.SectionID
	for _, s := range d.Side {
		out = append(out, s.ID)
	}
	for _, b := range d.Blocks {
		for _, s := range b.Sections {
			out = append(out, s.ID)
		}
	}
	return out
}

// buildHeader fills the header slot. A photo that cannot be decoded is left out.
func buildHeader(id types.TemplateID, info types.PersonalInfo, loc layout.Locale) Header {
	h := Header{
		Name:     layout.Or(info.FullName(), loc.NamePlaceholder),
		Title:    layout.Or(info.Title, loc.TitlePlaceholder),
		Contacts: layout.Contacts(info, loc),
	}
	if strings.TrimSpace(info.Photo) != "" {
		photo, err := layout.ParsePhoto(info.Photo)
		if err != nil {
			log.Printf("[RENDER] %s: leaving out photo: %v", id, err)
		} else {
			h.Photo = photo
		}
	}
	return h
}

func buildSection(data types.CVData, id types.SectionID, theme Theme, loc layout.Locale) Section {
	title := loc.Title(id)
	if theme.UpperHeadings {
		title = loc.Upper(title)
	}
	return Section{
		ID:      id,
		Title:   title,
		Entries: layout.Entries(data, id, loc, theme.Months),
		Inline:  id == types.SectionSkills,
	}
}

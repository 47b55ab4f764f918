// Package templates implements the closed set of visual CV templates. Every template turns
// the same CV data and resolved section order into a Document; HTML materialisation of a
// Document feeds the live preview and the browser-based exporters.
package templates

import (
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

// Renderer is implemented by every template
type Renderer interface {
	ID() types.TemplateID
	Theme() Theme
	Render(data types.CVData, order []types.SectionID) (*Document, error)

	sealed()
}

// stacked lays sections out in a single flow, optionally pairing adjacent skills and
// languages.
type stacked struct {
	id     types.TemplateID
	theme  Theme
	locale layout.Locale
}

// sidebar routes the theme's side sections to a narrow column; each column keeps the
// resolved order.
type sidebar struct {
	id     types.TemplateID
	theme  Theme
	locale layout.Locale
}

// Select returns the renderer for id. Unknown or empty identifiers get the default template.
func Select(id types.TemplateID, loc layout.Locale) Renderer {
	switch id {
	case types.TemplateModern,
		types.TemplateClassic,
		types.TemplateExecutive,
		types.TemplateMinimalist,
		types.TemplateCorporate,
		types.TemplateElegant,
		types.TemplateATS,
		types.TemplateEditorial,
		types.TemplateTechMono:
		return stacked{id: id, theme: themes[id], locale: loc}
	case types.TemplateCreative,
		types.TemplateProfessional,
		types.TemplateSwiss:
		return sidebar{id: id, theme: themes[id], locale: loc}
	}
	return Select(types.DefaultTemplate, loc)
}

func (r stacked) ID() types.TemplateID { return r.id }
func (r stacked) Theme() Theme         { return r.theme }
func (stacked) sealed()                {}

func (r stacked) Render(data types.CVData, order []types.SectionID) (*Document, error) {
	doc := newDocument(r.id, r.theme, r.locale, data)
	for _, b := range layout.PlanBlocks(data, order, r.theme.Pairing) {
		doc.Blocks = append(doc.Blocks, toBlock(data, b.Sections, r.theme, r.locale))
	}
	return doc, nil
}

func (r sidebar) ID() types.TemplateID { return r.id }
func (r sidebar) Theme() Theme         { return r.theme }
func (sidebar) sealed()                {}

func (r sidebar) Render(data types.CVData, order []types.SectionID) (*Document, error) {
	doc := newDocument(r.id, r.theme, r.locale, data)
	side, main := layout.SplitColumns(data, order, r.theme.Side)
	for _, id := range side {
		doc.Side = append(doc.Side, buildSection(data, id, r.theme, r.locale))
	}
	for _, id := range main {
		doc.Blocks = append(doc.Blocks, toBlock(data, []types.SectionID{id}, r.theme, r.locale))
	}
	return doc, nil
}

func newDocument(id types.TemplateID, theme Theme, loc layout.Locale, data types.CVData) *Document {
	doc := &Document{
		Template: id,
		Theme:    theme,
		Locale:   loc.Code,
		Header:   buildHeader(id, data.PersonalInfo, loc),
	}
	if data.IsBlank() || layout.IsEmpty(data) {
		doc.Empty = true
		doc.EmptyMessage = loc.EmptyState
	}
	return doc
}

func toBlock(data types.CVData, ids []types.SectionID, theme Theme, loc layout.Locale) Block {
	b := Block{Sections: make([]Section, 0, len(ids))}
	for _, id := range ids {
		b.Sections = append(b.Sections, buildSection(data, id, theme, loc))
	}
	return b
}

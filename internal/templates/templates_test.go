package templates

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() types.CVData {
	data := types.NewCVData()
	data.PersonalInfo = types.PersonalInfo{
		FirstName: "Alex",
		LastName:  "Martin",
		Title:     "Backend Engineer",
		Email:     "alex@example.com",
		Phone:     "+33 6 12 34 56 78",
		Address:   "Lyon",
		LinkedIn:  "linkedin.com/in/alex",
		Summary:   "Ten years building distributed systems.",
	}
	data.Experiences = []types.Experience{
		{ID: "e1", Company: "Acme", Position: "Engineer", StartDate: "2020-01", EndDate: "2022-01", Current: true},
		{ID: "e2", Company: "Initech", Position: "Intern", StartDate: "2018-06", EndDate: "2019-08"},
	}
	data.Education = []types.Education{{ID: "d1", School: "INSA", Degree: "MSc", Field: "CS", StartDate: "2013-09", EndDate: "2018-06"}}
	data.Skills = []types.Skill{{ID: "s1", Name: "Go", Level: 5}, {ID: "s2", Name: "PostgreSQL", Level: 4}}
	data.Languages = []types.Language{{ID: "l1", Name: "French", Level: types.LevelNative}}
	return data
}

func render(t *testing.T, id types.TemplateID, data types.CVData, order []types.SectionID) (*Document, *goquery.Document) {
	t.Helper()
	doc, err := Select(id, layout.English).Render(data, order)
	require.NoError(t, err)
	html, err := RenderString(doc, HTMLOptions{Scale: 0.5, MarginMM: 12})
	require.NoError(t, err)
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc, dom
}

func renderedSections(dom *goquery.Document) []types.SectionID {
	var out []types.SectionID
	dom.Find("section.cv-section").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-section")
		out = append(out, types.SectionID(id))
	})
	return out
}

func TestSelect_CoversEveryTemplate(t *testing.T) {
	for _, id := range types.AllTemplates() {
		r := Select(id, layout.English)
		assert.Equal(t, id, r.ID(), "template %s must have its own renderer", id)
		_, ok := themes[id]
		assert.True(t, ok, "template %s must have a theme", id)
	}
	assert.Len(t, themes, len(types.AllTemplates()))
}

func TestSelect_UnknownFallsBackToDefault(t *testing.T) {
	assert.Equal(t, types.TemplateModern, Select("neon", layout.English).ID())
	assert.Equal(t, types.TemplateModern, Select("", layout.English).ID())
	assert.Equal(t, ThemeFor(types.TemplateModern), ThemeFor("neon"))
}

func TestRender_SectionsAreVisibleSubsequence(t *testing.T) {
	data := sampleData()
	data.Education = nil
	order := []types.SectionID{types.SectionSkills, types.SectionEducation, types.SectionExperience, types.SectionLanguages, types.SectionSummary}
	visible := layout.VisibleSections(data, order)

	for _, id := range types.AllTemplates() {
		doc, dom := render(t, id, data, order)
		assert.ElementsMatch(t, visible, doc.Sections(), "template %s", id)
		assert.ElementsMatch(t, visible, renderedSections(dom), "template %s", id)
		assert.NotContains(t, doc.Sections(), types.SectionEducation)

		if !doc.Theme.Sidebar {
			assert.Equal(t, visible, renderedSections(dom), "stacked template %s keeps resolved order", id)
		}
	}
}

func TestRender_SidebarColumnsKeepOrder(t *testing.T) {
	order := []types.SectionID{types.SectionLanguages, types.SectionExperience, types.SectionSkills, types.SectionEducation, types.SectionSummary}
	doc, dom := render(t, types.TemplateSwiss, sampleData(), order)

	require.Len(t, doc.Side, 3)
	assert.Equal(t, types.SectionLanguages, doc.Side[0].ID)
	assert.Equal(t, types.SectionSkills, doc.Side[1].ID)
	assert.Equal(t, types.SectionSummary, doc.Side[2].ID)
	assert.Equal(t, 3, dom.Find("aside.cv-side section").Length())
	assert.Equal(t, 2, dom.Find("main.cv-main section").Length())
}

func TestRender_PairsOnlyAdjacentSkillsAndLanguages(t *testing.T) {
	_, dom := render(t, types.TemplateClassic, sampleData(), nil)
	pair := dom.Find(".cv-pair section")
	require.Equal(t, 2, pair.Length())
	assert.Equal(t, "skills", pair.First().AttrOr("data-section", ""))

	separated := []types.SectionID{types.SectionSkills, types.SectionSummary, types.SectionLanguages, types.SectionExperience, types.SectionEducation}
	_, dom = render(t, types.TemplateClassic, sampleData(), separated)
	assert.Equal(t, 0, dom.Find(".cv-pair").Length())
}

func TestRender_CurrentShowsPresent(t *testing.T) {
	for _, id := range types.AllTemplates() {
		_, dom := render(t, id, sampleData(), nil)
		first := dom.Find(`section[data-section="experience"] .cv-dates`).First().Text()
		assert.True(t, strings.HasSuffix(first, "Present"), "template %s: %q", id, first)
		assert.NotContains(t, first, "2022", "stored end date must be ignored for %s", id)
	}
}

func TestRender_FrenchLocale(t *testing.T) {
	doc, err := Select(types.TemplateClassic, layout.French).Render(sampleData(), nil)
	require.NoError(t, err)
	html, err := RenderString(doc, HTMLOptions{})
	require.NoError(t, err)

	assert.Contains(t, html, "Présent")
	assert.Contains(t, html, "FORMATION")
	assert.Contains(t, html, `lang="fr"`)
}

func TestRender_EmptyState(t *testing.T) {
	for _, id := range types.AllTemplates() {
		doc, dom := render(t, id, types.NewCVData(), nil)
		assert.True(t, doc.Empty, "template %s", id)
		assert.Empty(t, doc.Sections())
		assert.Equal(t, layout.English.EmptyState, strings.TrimSpace(dom.Find(".cv-empty").Text()), "template %s", id)
		assert.Equal(t, layout.English.NamePlaceholder, dom.Find(".cv-name").Text())
	}
}

func TestRender_EmptyStateRules(t *testing.T) {
	nameOnly := types.NewCVData()
	nameOnly.PersonalInfo.FirstName = "Alex"
	doc, _ := render(t, types.TemplateModern, nameOnly, nil)
	assert.True(t, doc.Empty, "a name without any section still shows the empty state")

	skillsOnly := types.NewCVData()
	skillsOnly.Skills = []types.Skill{{ID: "s1", Name: "Go"}}
	doc, _ = render(t, types.TemplateModern, skillsOnly, nil)
	assert.True(t, doc.Empty, "no name and no experience is not identifying content")

	named := nameOnly
	named.Skills = skillsOnly.Skills
	doc, dom := render(t, types.TemplateModern, named, nil)
	assert.False(t, doc.Empty)
	assert.Equal(t, 0, dom.Find(".cv-empty").Length())
}

func TestRender_UnreadablePhotoIsLeftOut(t *testing.T) {
	for _, photo := range []string{
		"data:image/webp;base64,UklGRhYAAABXRUJQVlA4TAoAAAAvAAAAAEX/I/of",
		"data:image/png;base64,AAAA",
		"https://example.com/me.png",
	} {
		data := sampleData()
		data.PersonalInfo.Photo = photo

		for _, id := range []types.TemplateID{types.TemplateModern, types.TemplateCreative} {
			doc, dom := render(t, id, data, nil)
			assert.Nil(t, doc.Header.Photo, photo)
			assert.Equal(t, 0, dom.Find("img.cv-photo").Length(), photo)
			assert.Equal(t, data.PersonalInfo.FullName(), doc.Header.Name)
			assert.NotEmpty(t, doc.Sections())
		}
	}
}

func TestRenderHTML_HeaderAndLinks(t *testing.T) {
	_, dom := render(t, types.TemplateModern, sampleData(), nil)

	page := dom.Find("#" + PreviewElementID)
	require.Equal(t, 1, page.Length())
	assert.True(t, page.HasClass("cv-modern"))
	assert.Equal(t, "Alex Martin", dom.Find(".cv-name").Text())

	hrefs := map[string]string{}
	dom.Find(".cv-contacts li").Each(func(_ int, s *goquery.Selection) {
		hrefs[s.AttrOr("data-kind", "")] = s.Find("a").AttrOr("href", "")
	})
	assert.Equal(t, "mailto:alex@example.com", hrefs["email"])
	assert.Equal(t, "tel:+33612345678", hrefs["phone"])
	assert.Equal(t, "https://linkedin.com/in/alex", hrefs["linkedin"])
	assert.Equal(t, "", hrefs["address"])
}

func TestRenderHTML_ScaleIsExplicit(t *testing.T) {
	doc, err := Select(types.TemplateATS, layout.English).Render(sampleData(), nil)
	require.NoError(t, err)

	half, err := RenderString(doc, HTMLOptions{Scale: 0.5})
	require.NoError(t, err)
	assert.Contains(t, half, "transform: scale(0.5)")

	full, err := RenderString(doc, HTMLOptions{})
	require.NoError(t, err)
	assert.Contains(t, full, "transform: scale(1)")
}

func TestRenderHTML_FontOverrideAndMargin(t *testing.T) {
	doc, err := Select(types.TemplateModern, layout.English).Render(sampleData(), nil)
	require.NoError(t, err)

	html, err := RenderString(doc, HTMLOptions{FontFamily: FontMono, MarginMM: 15, FontSizePt: 12})
	require.NoError(t, err)
	assert.Contains(t, html, "monospace")
	assert.Contains(t, html, "margin: 15mm")
	assert.Contains(t, html, "body { font-size: 12pt; }")

	html, err = RenderString(doc, HTMLOptions{})
	require.NoError(t, err)
	assert.NotContains(t, html, "body { font-size: 12pt; }")
}

func TestPreviewScale(t *testing.T) {
	assert.Equal(t, 1.0, PreviewScale(0))
	assert.Equal(t, 1.0, PreviewScale(1200))
	assert.InDelta(t, 0.5, PreviewScale(A4WidthPx/2), 0.001)
	assert.Equal(t, 0.1, PreviewScale(10))
}

func TestGallery_RendersEveryTemplate(t *testing.T) {
	previews, err := Gallery(context.Background(), sampleData(), nil, layout.English, HTMLOptions{Scale: 0.3})
	require.NoError(t, err)
	require.Len(t, previews, len(types.AllTemplates()))

	for i, id := range types.AllTemplates() {
		assert.Equal(t, id, previews[i].Template)
		assert.Contains(t, previews[i].HTML, "cv-"+string(id))
		assert.ElementsMatch(t, types.DefaultSectionOrder(), previews[i].Sections)
	}
}

func TestGallery_PropagatesRenderError(t *testing.T) {
	data := sampleData()
	data.PersonalInfo.Photo = "not-a-photo"

	_, err := Gallery(context.Background(), data, nil, layout.English, HTMLOptions{})
	var renderErr *RenderError
	assert.True(t, errors.As(err, &renderErr))
}

func TestGallery_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Gallery(ctx, sampleData(), nil, layout.English, HTMLOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

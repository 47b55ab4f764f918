package export

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

// Direct-text PDF geometry, in millimetres and points
const (
	atsMinMarginMM    = 8.0
	atsMinFontPt      = 9.0
	atsPtToMM         = 0.3528
	atsLeading        = 1.4
	atsNamePt         = 16.0
	atsHeadingPt      = 12.0
	atsEntryTitlePt   = 11.0
	atsDatesPt        = 10.0
	atsSectionGapMM   = 2.0
	atsSkillSeparator = " • "
)

// atsDoc is the output of the direct-text emitter
type atsDoc struct {
	PDF      []byte
	Pages    int
	Sections []types.SectionID
	// Lines and Links record what was written, in order
	Lines []string
	Links []string
}

// cursor is the running write position on the current page
type cursor struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	family string
	base   float64

	x, y         float64
	pageW, pageH float64
	margin       float64

	lines []string
	links []string
}

// ensureSpace starts a new page when needed millimetres do not fit above the bottom margin
func (c *cursor) ensureSpace(needed float64) {
	if c.y+needed <= c.pageH-c.margin {
		return
	}
	c.pdf.AddPage()
	c.y = c.margin
}

// lineHeight is the baseline-to-baseline distance for a font size, in millimetres
func lineHeight(sizePt float64) float64 {
	return sizePt * atsPtToMM * atsLeading
}

func (c *cursor) contentHeight() float64 {
	return c.pageH - 2*c.margin
}

// textBlock writes wrapped text. A block that fits on one page is kept together;
// longer blocks break line by line.
func (c *cursor) textBlock(text, style string, size float64) {
	c.pdf.SetFont(c.family, style, size)
	var wrapped []string
	for _, para := range strings.Split(text, "\n") {
		for _, l := range c.pdf.SplitLines([]byte(c.tr(para)), c.pageW-2*c.margin) {
			wrapped = append(wrapped, string(l))
		}
	}
	if len(wrapped) == 0 {
		return
	}

	lh := lineHeight(size)
	if needed := float64(len(wrapped)) * lh; needed <= c.contentHeight() {
		c.ensureSpace(needed)
	}
	for _, l := range wrapped {
		c.ensureSpace(lh)
		c.pdf.Text(c.x, c.y, l)
		c.y += lh
	}
	c.lines = append(c.lines, text)
}

// heading writes an upper-case bold title with a rule underneath
func (c *cursor) heading(title string) {
	lh := lineHeight(atsHeadingPt)
	c.pdf.SetFont(c.family, "B", atsHeadingPt)
	c.ensureSpace(lh * 2)
	c.pdf.Text(c.x, c.y, c.tr(title))
	c.y += lh * 0.6
	c.rule()
	c.y += lineHeight(c.base)
	c.pdf.SetFont(c.family, "", c.base)
	c.lines = append(c.lines, title)
}

func (c *cursor) rule() {
	c.pdf.SetDrawColor(0, 0, 0)
	c.pdf.SetLineWidth(0.2)
	c.pdf.Line(c.x, c.y, c.pageW-c.margin, c.y)
}

// linkLine writes "label: value" with a clickable region over the whole text
func (c *cursor) linkLine(label, value, url string) {
	text := label + ": " + value
	lh := lineHeight(c.base)
	c.pdf.SetFont(c.family, "", c.base)
	c.ensureSpace(lh)
	encoded := c.tr(text)
	c.pdf.Text(c.x, c.y, encoded)
	// the clickable box spans from the ascender line down past the baseline
	c.pdf.LinkString(c.x, c.y-c.base*atsPtToMM*0.8, c.pdf.GetStringWidth(encoded), lh*0.9, url)
	c.y += lh
	c.lines = append(c.lines, text)
	c.links = append(c.links, url)
}

// pdfFamily maps a font family choice to a core PDF font
func pdfFamily(choice string) string {
	switch choice {
	case "serif":
		return "Times"
	case "mono":
		return "Courier"
	default:
		return "Helvetica"
	}
}

// renderATS writes the direct-text PDF. Layout is derived from the data, not from a
// template; section order, inclusion and date rules come from the layout package.
func renderATS(data types.CVData, order []types.SectionID, opts Options, loc layout.Locale, title string) (*atsDoc, error) {
	margin := opts.MarginMM
	if margin < atsMinMarginMM {
		margin = atsMinMarginMM
	}
	base := opts.FontSizePt
	if base < atsMinFontPt {
		base = atsMinFontPt
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("cv-builder", true)
	pdf.SetTextColor(0, 0, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	c := &cursor{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		family: pdfFamily(opts.FontFamily),
		base:   base,
		x:      margin,
		y:      margin,
		pageW:  pageW,
		pageH:  pageH,
		margin: margin,
	}

	info := data.PersonalInfo
	c.pdf.SetFont(c.family, "B", atsNamePt)
	c.ensureSpace(10)
	name := loc.Upper(layout.Or(info.FullName(), loc.NamePlaceholder))
	c.pdf.Text(c.x, c.y, c.tr(name))
	c.lines = append(c.lines, name)
	c.y += 7

	c.pdf.SetFont(c.family, "", max(10, base))
	if t := strings.TrimSpace(info.Title); t != "" {
		c.pdf.Text(c.x, c.y, c.tr(t))
		c.lines = append(c.lines, t)
		c.y += 6
	}

	if contacts := layout.Contacts(info, loc); len(contacts) > 0 {
		c.rule()
		c.y += 5
		for _, ct := range contacts {
			if ct.URL == "" {
				c.textBlock(ct.Label+": "+ct.Value, "", base)
				continue
			}
			c.linkLine(ct.Label, ct.Value, ct.URL)
		}
		c.y += atsSectionGapMM
	}

	sections := layout.VisibleSections(data, order)
	for _, id := range sections {
		c.heading(loc.Upper(loc.Title(id)))
		writeATSSection(c, data, id, loc)
		c.y += atsSectionGapMM
	}

	if len(sections) == 0 {
		c.textBlock(loc.EmptyState, "I", base)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &atsDoc{
		PDF:      buf.Bytes(),
		Pages:    pdf.PageCount(),
		Sections: sections,
		Lines:    c.lines,
		Links:    c.links,
	}, nil
}

func writeATSSection(c *cursor, data types.CVData, id types.SectionID, loc layout.Locale) {
	entries := layout.Entries(data, id, loc, layout.MonthShort)

	switch id {
	case types.SectionSummary:
		c.textBlock(entries[0].Body, "", c.base)

	case types.SectionSkills:
		if names := layout.SkillNames(data.Skills); len(names) > 0 {
			c.textBlock(strings.Join(names, atsSkillSeparator), "", c.base)
		}

	case types.SectionLanguages:
		for _, e := range entries {
			line := e.Heading
			if e.Subheading != "" {
				line += ": " + e.Subheading
			}
			c.textBlock(line, "", c.base)
		}

	default:
		for _, e := range entries {
			c.textBlock(layout.EntryTitle(e), "B", atsEntryTitlePt)
			if e.Dates != "" {
				c.textBlock(e.Dates, "", atsDatesPt)
			}
			if e.Body != "" {
				c.textBlock(e.Body, "", c.base)
			}
			c.y += atsSectionGapMM
		}
	}
}

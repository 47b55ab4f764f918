package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io/fs"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing/fstest"
	"time"

	docx "github.com/fumiama/go-docx"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/templates"
	"github.com/jonathan/cv-builder/internal/types"
)

// WordprocessingML units: twentieths of a point (twips), half-points, EMUs
const (
	twipsPerMM      = 56.6929
	emuPerMM        = 36000
	a4WidthTwips    = 11906
	a4HeightTwips   = 16838
	minHalfPoints   = 18
	photoBoxMM      = 24
	photoCellTwips  = 1900
	sidebarPercent  = 32
	docxSkillJoiner = " • "
	docxTemplate    = "default"
)

// docxDoc is the output of the structured-document emitter
type docxDoc struct {
	Data     []byte
	Sections []types.SectionID
	// Text is every printed string, in order
	Text []string
}

// docxBuilder writes runs with a uniform font and size
type docxBuilder struct {
	doc   *docx.Docx
	font  string
	size  int
	theme templates.Theme
	loc   layout.Locale
	text  []string
}

// runStyle overrides the builder defaults for one run
type runStyle struct {
	Size      int
	Bold      bool
	Italic    bool
	Underline bool
	Color     string
}

// HalfPoints converts a point size to the half-point unit, never below 9 pt
func HalfPoints(pt float64) int {
	return max(minHalfPoints, int(math.Round(pt*2)))
}

// MMToTwips converts millimetres to twips, clamping negatives to zero
func MMToTwips(mm float64) int {
	return max(0, int(math.Round(mm*twipsPerMM)))
}

// docxFont maps a font family choice to an installed Office font
func docxFont(choice string) string {
	switch choice {
	case templates.FontSerif:
		return "Times New Roman"
	case templates.FontMono:
		return "Courier New"
	default:
		return "Calibri"
	}
}

func (b *docxBuilder) style(r *docx.Run, st runStyle) {
	size := st.Size
	if size == 0 {
		size = b.size
	}
	r.Font(b.font, b.font, b.font, "").Size(strconv.Itoa(size))
	if st.Bold {
		r.Bold()
	}
	if st.Italic {
		r.Italic()
	}
	if st.Underline {
		r.Underline("single")
	}
	if st.Color != "" {
		r.Color(st.Color)
	}
}

// write adds text as one run. Newlines become line breaks.
func (b *docxBuilder) write(p *docx.Paragraph, text string, st runStyle) {
	b.text = append(b.text, text)
	r := p.AddText(text)
	for _, c := range r.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	b.style(r, st)
}

// link adds a hyperlink run. The library stores link text as a field instruction,
// so it is moved into a visible text element.
func (b *docxBuilder) link(p *docx.Paragraph, text, url string, st runStyle) {
	b.text = append(b.text, text)
	h := p.AddLink(text, url)
	h.Run.InstrText = ""
	h.Run.Children = []interface{}{&docx.Text{Text: text, XMLSpace: "preserve"}}
	st.Underline = true
	b.style(&h.Run, st)
}

func spaceBefore(p *docx.Paragraph, twips int) {
	if p.Properties == nil {
		p.Properties = &docx.ParagraphProperties{}
	}
	p.Properties.Spacing = &docx.Spacing{Before: twips}
}

func (b *docxBuilder) heading(add func() *docx.Paragraph, id types.SectionID) {
	title := b.loc.Title(id)
	if b.theme.UpperHeadings {
		title = b.loc.Upper(title)
	}
	p := add()
	spaceBefore(p, 240)
	b.write(p, title, runStyle{Bold: true, Color: hexColor(b.theme.Accent)})
}

func (b *docxBuilder) section(add func() *docx.Paragraph, data types.CVData, id types.SectionID) {
	b.heading(add, id)
	entries := layout.Entries(data, id, b.loc, layout.MonthShort)

	switch id {
	case types.SectionSummary:
		b.write(add(), entries[0].Body, runStyle{})

	case types.SectionSkills:
		if names := layout.SkillNames(data.Skills); len(names) > 0 {
			b.write(add(), strings.Join(names, docxSkillJoiner), runStyle{})
		}

	case types.SectionLanguages:
		for _, e := range entries {
			line := e.Heading
			if e.Subheading != "" {
				line += ": " + e.Subheading
			}
			b.write(add(), line, runStyle{})
		}

	default:
		for i, e := range entries {
			p := add()
			if i > 0 {
				spaceBefore(p, 80)
			}
			b.write(p, layout.EntryTitle(e), runStyle{Bold: true})
			if e.Dates != "" {
				b.write(add(), e.Dates, runStyle{Size: max(minHalfPoints, b.size-2)})
			}
			if e.Body != "" {
				b.write(add(), e.Body, runStyle{})
			}
		}
	}
}

// table adds a one-row borderless table of the given column widths
func (b *docxBuilder) table(width int, cols ...int) []*docx.WTableCell {
	widths := make([]int64, len(cols))
	for i, c := range cols {
		widths[i] = int64(c)
	}
	tbl := b.doc.AddTableTwips([]int64{0}, widths, int64(width), nil)
	tbl.TableProperties.Width = &docx.WTableWidth{W: int64(width), Type: "dxa"}
	none := func() *docx.WTableBorder { return &docx.WTableBorder{Val: "nil"} }
	tbl.TableProperties.TableBorders = &docx.WTableBorders{
		Top: none(), Left: none(), Bottom: none(), Right: none(), InsideH: none(), InsideV: none(),
	}
	return tbl.TableRows[0].TableCells
}

// usablePhoto decodes the header photo; one that cannot be decoded is left out
func usablePhoto(dataURL string) *layout.Photo {
	if strings.TrimSpace(dataURL) == "" {
		return nil
	}
	photo, err := layout.ParsePhoto(dataURL)
	if err != nil {
		log.Printf("[EXPORT] leaving out photo: %v", err)
		return nil
	}
	return photo
}

func (b *docxBuilder) header(info types.PersonalInfo, width int) {
	textColor := ""
	if b.theme.HeaderFill != "" && isDark(b.theme.HeaderFill) {
		textColor = "FFFFFF"
	}

	photo := usablePhoto(info.Photo)
	var cells []*docx.WTableCell
	if photo == nil {
		cells = b.table(width, width)
	} else {
		cells = b.table(width, photoCellTwips, width-photoCellTwips)
	}
	if fill := hexColor(b.theme.HeaderFill); fill != "" {
		for _, c := range cells {
			c.Shade("clear", "auto", fill)
		}
	}
	text := cells[len(cells)-1]

	b.write(text.AddParagraph(), layout.Or(info.FullName(), b.loc.NamePlaceholder), runStyle{Bold: true, Size: b.size + 8, Color: textColor})
	if t := strings.TrimSpace(info.Title); t != "" {
		b.write(text.AddParagraph(), t, runStyle{Color: textColor})
	}
	for i, c := range layout.Contacts(info, b.loc) {
		p := text.AddParagraph()
		if i == 0 {
			spaceBefore(p, 200)
		}
		if c.URL != "" {
			b.link(p, c.Value, c.URL, runStyle{Color: textColor})
		} else {
			b.write(p, c.Value, runStyle{Color: textColor})
		}
	}

	if photo != nil {
		p := cells[0].AddParagraph()
		if err := b.addPhoto(p, photo); err != nil {
			log.Printf("[EXPORT] leaving out photo: %v", err)
		}
	}
}

// addPhoto embeds the image and sizes it into the thumbnail box
func (b *docxBuilder) addPhoto(p *docx.Paragraph, photo *layout.Photo) error {
	run, err := p.AddInlineDrawing(photo.Data)
	if err != nil {
		return err
	}
	box := int64(photoBoxMM * emuPerMM)
	cx, cy := box, box
	if photo.Width > 0 && photo.Height > 0 {
		if photo.Width >= photo.Height {
			cy = box * int64(photo.Height) / int64(photo.Width)
		} else {
			cx = box * int64(photo.Width) / int64(photo.Height)
		}
	}
	for _, c := range run.Children {
		if d, ok := c.(*docx.Drawing); ok && d.Inline != nil {
			d.Inline.Size(cx, cy)
		}
	}
	return nil
}

// renderDOCX builds the structured document. Two-column themes route skills and
// languages to a side column; each column keeps the resolved order.
func renderDOCX(data types.CVData, order []types.SectionID, theme templates.Theme, opts Options, loc layout.Locale, title string, modified time.Time) (*docxDoc, error) {
	family := opts.FontFamily
	if family == "" {
		family = theme.FontFamily
	}
	parts, err := packageParts(title, loc.Code, modified)
	if err != nil {
		return nil, err
	}
	b := &docxBuilder{
		doc:   docx.New().UseTemplate(docxTemplate, docx.DefaultTemplateFilesList, parts),
		font:  docxFont(family),
		size:  HalfPoints(opts.FontSizePt),
		theme: theme,
		loc:   loc,
	}

	margin := MMToTwips(opts.MarginMM)
	width := a4WidthTwips - 2*margin

	b.header(data.PersonalInfo, width)
	b.doc.AddParagraph()

	var emitted []types.SectionID
	if theme.Sidebar {
		side, main := layout.SplitColumns(data, order, layout.SkillsLanguagesSide)
		sideWidth := width * sidebarPercent / 100
		cells := b.table(width, sideWidth, width-sideWidth)
		for _, id := range side {
			b.section(cells[0].AddParagraph, data, id)
		}
		for _, id := range main {
			b.section(cells[1].AddParagraph, data, id)
		}
		if len(side)+len(main) == 0 {
			b.placeholder(cells[1].AddParagraph())
		}
		// a cell needs at least one paragraph
		for _, c := range cells {
			if len(c.Paragraphs) == 0 {
				c.AddParagraph()
			}
		}
		b.doc.AddParagraph()
		emitted = append(append(emitted, side...), main...)
	} else {
		emitted = layout.VisibleSections(data, order)
		for _, id := range emitted {
			b.section(b.doc.AddParagraph, data, id)
		}
		if len(emitted) == 0 {
			b.placeholder(b.doc.AddParagraph())
		}
	}

	b.doc.Document.Body.Items = append(b.doc.Document.Body.Items, &docx.SectPr{
		PgSz:  &docx.PgSz{W: a4WidthTwips, H: a4HeightTwips},
		PgMar: &docx.PgMar{Top: margin, Left: margin, Bottom: margin, Right: margin, Header: 708, Footer: 708},
	})

	var buf bytes.Buffer
	if _, err := b.doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return &docxDoc{Data: buf.Bytes(), Sections: emitted, Text: b.text}, nil
}

func (b *docxBuilder) placeholder(p *docx.Paragraph) {
	b.write(p, b.loc.EmptyState, runStyle{Italic: true})
}

const coreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><dc:title>%s</dc:title><dc:language>%s</dc:language><dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified></cp:coreProperties>`

var (
	basePartsOnce sync.Once
	baseParts     fstest.MapFS
	basePartsErr  error
)

// packageParts returns the library's default package parts with the document
// properties filled in and gif registered as a media type
func packageParts(title, language string, modified time.Time) (fs.FS, error) {
	basePartsOnce.Do(func() {
		baseParts = fstest.MapFS{}
		for _, name := range docx.DefaultTemplateFilesList {
			path := "xml/" + docxTemplate + "/" + name
			data, err := fs.ReadFile(docx.TemplateXMLFS, path)
			if err != nil {
				basePartsErr = fmt.Errorf("failed to read document template %s: %w", name, err)
				return
			}
			baseParts[path] = &fstest.MapFile{Data: data}
		}
		contentTypes := "xml/" + docxTemplate + "/[Content_Types].xml"
		baseParts[contentTypes].Data = bytes.Replace(baseParts[contentTypes].Data,
			[]byte(`<Default Extension="png"`),
			[]byte(`<Default Extension="gif" ContentType="image/gif"/><Default Extension="png"`), 1)
	})
	if basePartsErr != nil {
		return nil, basePartsErr
	}

	parts := make(fstest.MapFS, len(baseParts))
	for k, v := range baseParts {
		parts[k] = v
	}
	core := fmt.Sprintf(coreXML, xmlEscape(title), xmlEscape(language), modified.UTC().Format(time.RFC3339))
	parts["xml/"+docxTemplate+"/docProps/core.xml"] = &fstest.MapFile{Data: []byte(core)}
	return parts, nil
}

// xmlEscape escapes text for element content
func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// hexColor turns "#2563eb" into the "2563EB" form used by WordprocessingML
func hexColor(c string) string {
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}

// isDark reports whether a #rrggbb colour needs light text on top of it
func isDark(c string) bool {
	v, err := strconv.ParseUint(strings.TrimPrefix(c, "#"), 16, 32)
	if err != nil {
		return false
	}
	r, g, bl := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)
	return 0.299*r+0.587*g+0.114*bl < 140
}

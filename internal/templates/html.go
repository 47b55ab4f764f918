package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/jonathan/cv-builder/internal/layout"
)

// PreviewElementID is the id of the page element the raster exporter captures
const PreviewElementID = "cv-preview"

// A4WidthPx is the CSS pixel width of an A4 page at 96 dpi
const A4WidthPx = 793.7

//go:embed assets/cv.html.tmpl assets/cv.css
var assets embed.FS

var pageTemplate = template.Must(template.New("cv").Funcs(template.FuncMap{
	// contact URLs are built by layout (mailto:, tel:, https://) and need no sanitising
	"safeURL": func(s string) template.URL { return template.URL(s) },
	// photos are re-encoded from decoded image bytes
	"photoURL": func(p *layout.Photo) template.URL { return template.URL(p.DataURL()) },
}).ParseFS(assets, "assets/cv.html.tmpl"))

var baseCSS = mustReadAsset("assets/cv.css")

// HTMLOptions controls HTML materialisation of a Document
type HTMLOptions struct {
	// Scale is the preview zoom applied to the page element. Zero means 1.
	Scale float64
	// MarginMM is the @page margin used when the document is printed
	MarginMM float64
	// FontFamily overrides the theme font when set (sans, serif, mono)
	FontFamily string
	// FontSizePt overrides the body text size when positive
	FontSizePt float64
}

// PreviewScale computes the zoom that fits an A4 page into a container of the given
// CSS pixel width. The result is clamped to (0, 1].
func PreviewScale(containerWidthPx float64) float64 {
	if containerWidthPx <= 0 || math.IsNaN(containerWidthPx) {
		return 1
	}
	s := containerWidthPx / A4WidthPx
	if s > 1 {
		return 1
	}
	return math.Max(0.1, math.Round(s*1000)/1000)
}

// RenderHTML writes doc as a self-contained HTML page
func RenderHTML(w io.Writer, doc *Document, opts HTMLOptions) error {
	data := struct {
		*Document
		Stylesheet template.CSS
	}{
		Document:   doc,
		Stylesheet: stylesheet(doc.Theme, opts),
	}

	if err := pageTemplate.ExecuteTemplate(w, "cv.html.tmpl", data); err != nil {
		return &RenderError{Template: string(doc.Template), Message: "failed to execute HTML template", Cause: err}
	}
	return nil
}

// RenderString is RenderHTML into a string
func RenderString(doc *Document, opts HTMLOptions) (string, error) {
	var sb strings.Builder
	if err := RenderHTML(&sb, doc, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func stylesheet(theme Theme, opts HTMLOptions) template.CSS {
	font := theme.FontFamily
	if opts.FontFamily != "" {
		font = opts.FontFamily
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	fill := theme.HeaderFill
	if fill == "" {
		fill = "transparent"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, ":root { --accent: %s; --header-fill: %s; --font: %s; }\n", theme.Accent, fill, CSSFontStack(font))
	fmt.Fprintf(&sb, "@page { size: A4; margin: %gmm; }\n", math.Max(0, opts.MarginMM))
	fmt.Fprintf(&sb, "#%s { transform: scale(%g); transform-origin: top left; }\n", PreviewElementID, scale)
	sb.WriteString(baseCSS)
	if opts.FontSizePt > 0 {
		fmt.Fprintf(&sb, "body { font-size: %gpt; }\n", opts.FontSizePt)
	}
	return template.CSS(sb.String())
}

func mustReadAsset(name string) string {
	b, err := assets.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("missing embedded asset %s: %v", name, err))
	}
	return string(b)
}

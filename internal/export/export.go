package export

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/templates"
	"github.com/jonathan/cv-builder/internal/types"
)

// Result is a produced file plus what went into it
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
	// Sections lists the non-empty sections emitted, in emission order
	Sections []types.SectionID
	Pages    int
}

// Exporter runs the export pipelines
type Exporter struct {
	browser Browser
	locks   *Locks
	verbose bool
	now     func() time.Time
}

// NewExporter creates an exporter. browser may be nil, in which case the browser-based
// formats fail with an EngineError.
func NewExporter(browser Browser, verbose bool) *Exporter {
	return &Exporter{
		browser: browser,
		locks:   NewLocks(),
		verbose: verbose,
		now:     time.Now,
	}
}

// Export produces the file for one version. The version is snapshotted before any
// blocking step, so later edits never leak into a running export.
func (e *Exporter) Export(ctx context.Context, version types.Version, opts Options) (*Result, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	snap := version.Clone()
	loc := layout.LocaleFor(opts.Locale)
	order := layout.ResolveOrder(snap.SectionOrder)
	tmpl := snap.Template.OrDefault()

	name := opts.Filename
	if strings.TrimSpace(name) == "" {
		name = snap.Name
	}
	res := &Result{
		Filename:    WithExtension(name, opts.Format.Extension(), loc.DefaultFile),
		ContentType: opts.Format.ContentType(),
	}
	title := layout.Or(snap.Data.PersonalInfo.FullName(), snap.Name)

	if e.verbose {
		log.Printf("[EXPORT] %s of version %s (template %s) as %s", opts.Format, snap.ID, tmpl, res.Filename)
	}
	start := time.Now()

	switch opts.Format {
	case FormatATSPDF:
		doc, err := renderATS(snap.Data, order, opts, loc, title)
		if err != nil {
			return nil, &EngineError{Format: opts.Format, Message: "failed to build PDF", Cause: err}
		}
		res.Data, res.Sections, res.Pages = doc.PDF, doc.Sections, doc.Pages

	case FormatDOCX:
		doc, err := renderDOCX(snap.Data, order, templates.ThemeFor(tmpl), opts, loc, title, e.now())
		if err != nil {
			return nil, &EngineError{Format: opts.Format, Message: "failed to build document", Cause: err}
		}
		res.Data, res.Sections, res.Pages = doc.Data, doc.Sections, 0

	case FormatVisualPDF, FormatPrintPDF:
		if err := e.exportWithBrowser(ctx, snap, tmpl, order, opts, loc, title, res); err != nil {
			return nil, err
		}

	default:
		return nil, &OptionsError{Message: "unsupported format " + string(opts.Format)}
	}

	if e.verbose {
		log.Printf("[EXPORT] Wrote %s: %d bytes, %d sections in %s", res.Filename, len(res.Data), len(res.Sections), time.Since(start).Round(time.Millisecond))
	}
	return res, nil
}

func (e *Exporter) exportWithBrowser(ctx context.Context, snap types.Version, tmpl types.TemplateID, order []types.SectionID, opts Options, loc layout.Locale, title string, res *Result) error {
	if e.browser == nil {
		return &EngineError{Format: opts.Format, Message: "no browser configured"}
	}

	release, ok := e.locks.TryAcquire(snap.ID)
	if !ok {
		return &BusyError{VersionID: snap.ID}
	}
	defer release()

	doc, err := templates.Select(tmpl, loc).Render(snap.Data, order)
	if err != nil {
		return &EngineError{Format: opts.Format, Message: "failed to render preview", Cause: err}
	}
	res.Sections = doc.Sections()

	htmlOpts := templates.HTMLOptions{Scale: 1}
	if opts.Format == FormatPrintPDF {
		htmlOpts.MarginMM = opts.MarginMM
		htmlOpts.FontFamily = opts.FontFamily
		htmlOpts.FontSizePt = opts.FontSizePt
	}
	html, err := templates.RenderString(doc, htmlOpts)
	if err != nil {
		return &EngineError{Format: opts.Format, Message: "failed to render preview", Cause: err}
	}

	if opts.Format == FormatPrintPDF {
		data, err := e.browser.PrintPDF(ctx, html)
		if err != nil {
			return browserError(opts.Format, "failed to print", err)
		}
		res.Data, res.Pages = data, 0
		return nil
	}

	capture, err := e.browser.Capture(ctx, html, templates.PreviewElementID, opts.RasterScale)
	if err != nil {
		return browserError(opts.Format, "failed to capture preview", err)
	}
	data, _, err := embedRaster(capture, opts.MarginMM, title)
	if err != nil {
		return &EngineError{Format: opts.Format, Message: "failed to build PDF", Cause: err}
	}
	res.Data, res.Pages = data, 1
	return nil
}

// browserError keeps a missing target distinct from engine failures
func browserError(format Format, msg string, err error) error {
	var missing *TargetNotFoundError
	if errors.As(err, &missing) {
		return missing
	}
	return &EngineError{Format: format, Message: msg, Cause: err}
}

// Busy reports whether a browser export of versionID is running
func (e *Exporter) Busy(versionID string) bool {
	return e.locks.Busy(versionID)
}

// Package export turns a CV version into a downloadable file. Four emitters share the
// section inclusion, ordering and date rules of the layout package but compute their
// own pagination: a direct-text ATS PDF, a structured DOCX, a raster PDF captured from
// the HTML preview, and a browser-printed PDF.
package export

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Format selects the export pipeline
type Format string

// Supported formats
const (
	FormatVisualPDF Format = "pdf_visual"
	FormatATSPDF    Format = "pdf_ats"
	FormatPrintPDF  Format = "pdf_print"
	FormatDOCX      Format = "docx"
)

// Extension returns the file extension of the format, without the dot
func (f Format) Extension() string {
	if f == FormatDOCX {
		return "docx"
	}
	return "pdf"
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatDOCX {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}

// UsesBrowser reports whether the format renders through the headless browser
func (f Format) UsesBrowser() bool {
	return f == FormatVisualPDF || f == FormatPrintPDF
}

// Options are the user-facing export settings
type Options struct {
	Format   Format  `json:"format" yaml:"format" validate:"required,oneof=pdf_visual pdf_ats pdf_print docx"`
	Filename string  `json:"filename,omitempty" yaml:"filename" validate:"max=255"`
	MarginMM float64 `json:"marginMm" yaml:"margin_mm" validate:"gte=0,lte=50"`
	// FontFamily is sans, serif or mono. Empty uses the template's default family.
	FontFamily  string  `json:"fontFamily,omitempty" yaml:"font_family" validate:"omitempty,oneof=sans serif mono"`
	FontSizePt  float64 `json:"fontSizePt" yaml:"font_size_pt" validate:"gte=6,lte=24"`
	RasterScale float64 `json:"rasterScale" yaml:"raster_scale" validate:"gte=1,lte=4"`
	// Locale selects printed labels ("en", "fr"); empty means English
	Locale string `json:"locale,omitempty" yaml:"locale" validate:"omitempty,max=16"`
}

// Defaults applied to zero-valued options
const (
	DefaultMarginMM    = 12.0
	DefaultFontSizePt  = 11.0
	DefaultRasterScale = 2.0
)

// DefaultOptions returns the options of the export dialog before any user change
func DefaultOptions() Options {
	return Options{
		Format:      FormatATSPDF,
		MarginMM:    DefaultMarginMM,
		FontSizePt:  DefaultFontSizePt,
		RasterScale: DefaultRasterScale,
	}
}

// WithDefaults fills zero values. A zero margin is kept: it is a valid choice.
func (o Options) WithDefaults() Options {
	if o.Format == "" {
		o.Format = FormatATSPDF
	}
	if o.FontSizePt == 0 {
		o.FontSizePt = DefaultFontSizePt
	}
	if o.RasterScale == 0 {
		o.RasterScale = DefaultRasterScale
	}
	return o
}

var validate = validator.New()

// Validate checks option ranges
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return &OptionsError{Message: describeValidation(err), Cause: err}
	}
	return nil
}

func describeValidation(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		ve := verrs[0]
		return fmt.Sprintf("invalid %s (%s %s)", ve.Field(), ve.Tag(), ve.Param())
	}
	return "invalid export options"
}

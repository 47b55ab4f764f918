package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/go-pdf/fpdf"
)

// Browser renders self-contained HTML documents. The Chrome implementation lives in
// browser.go; tests substitute a fake.
type Browser interface {
	// Capture rasterises the element with the given id at 1:1 layout scale, multiplied
	// by scale device pixels per CSS pixel, and returns a PNG.
	Capture(ctx context.Context, html, elementID string, scale float64) ([]byte, error)
	// PrintPDF prints the document to an A4 PDF once its resources are loaded, or once
	// the implementation's load timeout has elapsed.
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// Placement is where an image lands on the page, in millimetres
type Placement struct {
	X, Y, W, H float64
}

// FitToPage scales an imgW x imgH image into the page minus margins on every side,
// preserving aspect ratio, and centres it in the margin box.
func FitToPage(imgW, imgH int, pageW, pageH, margin float64) Placement {
	maxW := pageW - 2*margin
	maxH := pageH - 2*margin
	if imgW <= 0 || imgH <= 0 || maxW <= 0 || maxH <= 0 {
		return Placement{X: margin, Y: margin}
	}

	ratio := float64(imgW) / float64(imgH)
	drawW := maxW
	drawH := drawW / ratio
	if drawH > maxH {
		drawH = maxH
		drawW = drawH * ratio
	}

	return Placement{
		X: margin + (maxW-drawW)/2,
		Y: margin + (maxH-drawH)/2,
		W: drawW,
		H: drawH,
	}
}

// embedRaster places a PNG capture on a single A4 page
func embedRaster(capture []byte, marginMM float64, title string) ([]byte, Placement, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(capture))
	if err != nil {
		return nil, Placement{}, fmt.Errorf("capture is not a PNG image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, Placement{}, fmt.Errorf("capture is empty (%dx%d)", cfg.Width, cfg.Height)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("cv-builder", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	place := FitToPage(cfg.Width, cfg.Height, pageW, pageH, max(0, marginMM))

	imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("capture", imgOpts, bytes.NewReader(capture))
	pdf.ImageOptions("capture", place.X, place.Y, place.W, place.H, false, imgOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, Placement{}, err
	}
	return buf.Bytes(), place, nil
}

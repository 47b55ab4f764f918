package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// A4 paper size in inches, as the print API expects
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
)

// Browser defaults
const (
	DefaultBrowserTimeout = 60 * time.Second
	DefaultPrintWait      = 5 * time.Second
	loadPollInterval      = 100 * time.Millisecond
	captureViewportWidth  = 1240
	captureViewportHeight = 1754
)

// ChromeBrowser renders documents in a headless Chrome started per call.
// Requires Chrome/Chromium to be installed on the system.
type ChromeBrowser struct {
	execPath  string
	timeout   time.Duration
	printWait time.Duration
	verbose   bool
}

// NewChromeBrowser creates a browser. An empty execPath lets chromedp find Chrome;
// zero durations take the defaults.
func NewChromeBrowser(execPath string, timeout, printWait time.Duration, verbose bool) *ChromeBrowser {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	if printWait <= 0 {
		printWait = DefaultPrintWait
	}
	return &ChromeBrowser{execPath: execPath, timeout: timeout, printWait: printWait, verbose: verbose}
}

// open starts Chrome, writes html to a temporary file and navigates to it. The returned
// cleanup func closes the browser and removes the file.
func (b *ChromeBrowser) open(ctx context.Context, html string) (context.Context, func(), error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	tmpDir, err := os.MkdirTemp("", "cv-export-")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, nil, fmt.Errorf("failed to write document: %w", err)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	runCtx, cancelRun := context.WithTimeout(browserCtx, b.timeout)

	cleanup := func() {
		cancelRun()
		cancelBrowser()
		cancelAlloc()
		if err := os.RemoveAll(tmpDir); err != nil {
			log.Printf("[BROWSER] Failed to remove %s: %v", tmpDir, err)
		}
	}

	if b.verbose {
		log.Printf("[BROWSER] Loading %s", htmlPath)
	}
	if err := chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load document: %w", err)
	}
	return runCtx, cleanup, nil
}

// awaitPromise makes Evaluate resolve a returned promise
func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// waitLoaded polls until the document and its fonts have loaded. Hitting the bound is
// not an error: the caller proceeds with whatever has rendered.
func (b *ChromeBrowser) waitLoaded(ctx context.Context, bound time.Duration) error {
	deadline := time.Now().Add(bound)
	ticker := time.NewTicker(loadPollInterval)
	defer ticker.Stop()

	for {
		var ready bool
		err := chromedp.Evaluate(`document.readyState === "complete" && document.fonts.status === "loaded"`, &ready).Do(ctx)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		if time.Now().After(deadline) {
			log.Printf("[BROWSER] Resources still loading after %s, continuing anyway", bound)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Capture implements Browser
func (b *ChromeBrowser) Capture(ctx context.Context, html, elementID string, scale float64) ([]byte, error) {
	tab, cleanup, err := b.open(ctx, html)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var found bool
	if err := chromedp.Run(tab, chromedp.Evaluate(fmt.Sprintf(`document.getElementById(%q) !== null`, elementID), &found)); err != nil {
		return nil, fmt.Errorf("failed to query capture target: %w", err)
	}
	if !found {
		return nil, &TargetNotFoundError{Target: elementID}
	}

	// force 1:1 layout for the capture; the preview may be zoomed out
	var saved []string
	force := fmt.Sprintf(`(() => {
		const el = document.getElementById(%q);
		const prev = [el.style.transform, el.style.transformOrigin];
		el.style.transform = "scale(1)";
		el.style.transformOrigin = "top left";
		return prev;
	})()`, elementID)
	if err := chromedp.Run(tab, chromedp.Evaluate(force, &saved)); err != nil {
		return nil, fmt.Errorf("failed to reset preview scale: %w", err)
	}
	defer func() {
		if len(saved) != 2 {
			return
		}
		restore := fmt.Sprintf(`(() => {
			const el = document.getElementById(%q);
			if (el) { el.style.transform = %q; el.style.transformOrigin = %q; }
			return true;
		})()`, elementID, saved[0], saved[1])
		var ok bool
		if err := chromedp.Run(tab, chromedp.Evaluate(restore, &ok)); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[BROWSER] Failed to restore preview scale: %v", err)
		}
	}()

	var shot []byte
	var fontsReady bool
	err = chromedp.Run(tab,
		chromedp.EmulateViewport(captureViewportWidth, captureViewportHeight, chromedp.EmulateScale(scale)),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady, awaitPromise),
		chromedp.Screenshot("#"+elementID, &shot, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture preview: %w", err)
	}

	if b.verbose {
		log.Printf("[BROWSER] Captured %s at scale %g: %d bytes", elementID, scale, len(shot))
	}
	return shot, nil
}

// PrintPDF implements Browser
func (b *ChromeBrowser) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	tab, cleanup, err := b.open(ctx, html)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var pdf []byte
	err = chromedp.Run(tab,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return b.waitLoaded(ctx, b.printWait)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthIn).
				WithPaperHeight(a4HeightIn).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print document: %w", err)
	}

	if b.verbose {
		log.Printf("[BROWSER] Printed PDF: %d bytes", len(pdf))
	}
	return pdf, nil
}

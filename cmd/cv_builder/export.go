package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a version as PDF or DOCX",
	Long: `Export a version in one of four formats:
  pdf_ats     text PDF for applicant tracking systems
  docx        Word document
  pdf_visual  raster PDF of the rendered template (needs Chrome)
  pdf_print   PDF printed by the browser (needs Chrome)`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past exports of a version (requires DATABASE_URL)",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	exportVersion  string
	exportFormat   string
	exportOut      string
	exportFilename string
	exportMargin   float64
	exportFont     string
	exportFontSize float64
	exportScale    float64
	exportLocale   string
	historyVersion string
	historyLimit   int
)

func init() {
	exportCmd.Flags().StringVar(&exportVersion, "version", "", "Version id (default: active version)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "pdf_ats, docx, pdf_visual or pdf_print (default from config)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "Output directory")
	exportCmd.Flags().StringVar(&exportFilename, "filename", "", "File name without extension (default: version name)")
	exportCmd.Flags().Float64Var(&exportMargin, "margin", 0, "Page margin in mm, 0 to 50")
	exportCmd.Flags().StringVar(&exportFont, "font", "", "Font family: sans, serif or mono")
	exportCmd.Flags().Float64Var(&exportFontSize, "font-size", 0, "Body font size in pt, 6 to 24")
	exportCmd.Flags().Float64Var(&exportScale, "scale", 0, "Raster capture scale for pdf_visual, 1 to 4")
	exportCmd.Flags().StringVar(&exportLocale, "locale", "", "Label language (en, fr)")

	historyCmd.Flags().StringVar(&historyVersion, "version", "", "Version id (default: active version)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries, 0 for all")

	rootCmd.AddCommand(exportCmd, historyCmd)
}

// exportOptions applies the flags that were set on top of the configured defaults
func exportOptions(cmd *cobra.Command, defaults export.Options) export.Options {
	opts := defaults
	flags := cmd.Flags()
	if flags.Changed("format") {
		opts.Format = export.Format(strings.ToLower(exportFormat))
	}
	if flags.Changed("filename") {
		opts.Filename = exportFilename
	}
	if flags.Changed("margin") {
		opts.MarginMM = exportMargin
	}
	if flags.Changed("font") {
		opts.FontFamily = exportFont
	}
	if flags.Changed("font-size") {
		opts.FontSizePt = exportFontSize
	}
	if flags.Changed("scale") {
		opts.RasterScale = exportScale
	}
	if flags.Changed("locale") {
		opts.Locale = exportLocale
	}
	return opts
}

func runExport(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.version(exportVersion)
	if err != nil {
		return err
	}
	opts := exportOptions(cmd, ws.cfg.ExportOptions())

	var browser export.Browser
	if opts.Format.UsesBrowser() {
		browser = export.NewChromeBrowser(ws.cfg.ChromePath, 0, ws.cfg.PrintTimeout(), ws.cfg.Verbose)
	}
	exporter := export.NewExporter(browser, ws.cfg.Verbose)

	res, err := exporter.Export(cmd.Context(), v, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(exportOut, res.Filename)
	if err := writeFile(path, res.Data); err != nil {
		return err
	}

	sections := make([]string, 0, len(res.Sections))
	for _, s := range res.Sections {
		sections = append(sections, string(s))
	}
	if ws.db != nil {
		_, err := ws.db.RecordExport(cmd.Context(), db.ExportRecord{
			VersionID: v.ID,
			Format:    string(opts.Format),
			Filename:  res.Filename,
			Sections:  sections,
			SizeBytes: len(res.Data),
			Pages:     res.Pages,
		})
		if err != nil {
			log.Printf("[EXPORT] Failed to record export of %s: %v", v.ID, err)
		}
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Output: %s\n", path)
	_, _ = fmt.Fprintf(out, "Sections: %s\n", strings.Join(sections, ", "))
	if res.Pages > 0 {
		_, _ = fmt.Fprintf(out, "Pages: %d\n", res.Pages)
	}
	if ws.cfg.Verbose {
		observability.NewPrinter(out).PrintExportResult(opts.Format, res)
	}
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	if ws.db == nil {
		return fmt.Errorf("export history requires DATABASE_URL")
	}
	recs, err := ws.db.ListExports(cmd.Context(), ws.versionID(historyVersion), historyLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No exports recorded")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "WHEN\tFORMAT\tFILE\tSIZE\tPAGES")
	for _, r := range recs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", r.CreatedAt.Local().Format(time.DateTime), r.Format, r.Filename, r.SizeBytes, r.Pages)
	}
	return tw.Flush()
}

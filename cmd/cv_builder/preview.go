package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/templates"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a version as a self-contained HTML page",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Render a version through every template into a directory",
	Args:  cobra.NoArgs,
	RunE:  runGallery,
}

var (
	previewVersion  string
	previewTemplate string
	previewOut      string
	previewScale    float64
	previewLocale   string
	galleryOut      string
)

func init() {
	previewCmd.Flags().StringVar(&previewVersion, "version", "", "Version id (default: active version)")
	previewCmd.Flags().StringVarP(&previewTemplate, "template", "t", "", "Preview another template without saving it")
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "Output HTML file (default: stdout)")
	previewCmd.Flags().Float64Var(&previewScale, "scale", 1, "Zoom applied to the page, in (0, 4]")
	previewCmd.Flags().StringVar(&previewLocale, "locale", "", "Label language (en, fr); default from config")

	galleryCmd.Flags().StringVar(&previewVersion, "version", "", "Version id (default: active version)")
	galleryCmd.Flags().StringVarP(&galleryOut, "out", "o", "", "Output directory (required)")
	galleryCmd.Flags().Float64Var(&previewScale, "scale", 1, "Zoom applied to each page, in (0, 4]")
	galleryCmd.Flags().StringVar(&previewLocale, "locale", "", "Label language (en, fr); default from config")
	if err := galleryCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(previewCmd, galleryCmd)
}

func checkScale(scale float64) error {
	if scale <= 0 || scale > 4 {
		return fmt.Errorf("--scale must be in (0, 4], got %g", scale)
	}
	return nil
}

func runPreview(cmd *cobra.Command, _ []string) error {
	if err := checkScale(previewScale); err != nil {
		return err
	}
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.version(previewVersion)
	if err != nil {
		return err
	}
	tmpl := v.Template
	if previewTemplate != "" {
		tmpl = types.TemplateID(previewTemplate)
		if !tmpl.Known() {
			return fmt.Errorf("unknown template %q (choose one of: %s)", previewTemplate, templateList())
		}
	}

	loc := layout.LocaleFor(layout.Or(previewLocale, ws.cfg.Locale))
	doc, err := templates.Select(tmpl.OrDefault(), loc).Render(v.Data, layout.ResolveOrder(v.SectionOrder))
	if err != nil {
		return err
	}
	html, err := templates.RenderString(doc, templates.HTMLOptions{Scale: previewScale})
	if err != nil {
		return err
	}

	if previewOut == "" {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), html)
		return nil
	}
	if err := writeFile(previewOut, []byte(html)); err != nil {
		return err
	}
	if ws.cfg.Verbose {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Sections: %v\n", doc.Sections())
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", previewOut)
	return nil
}

func runGallery(cmd *cobra.Command, _ []string) error {
	if err := checkScale(previewScale); err != nil {
		return err
	}
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.version(previewVersion)
	if err != nil {
		return err
	}
	loc := layout.LocaleFor(layout.Or(previewLocale, ws.cfg.Locale))
	previews, err := templates.Gallery(cmd.Context(), v.Data, layout.ResolveOrder(v.SectionOrder), loc, templates.HTMLOptions{Scale: previewScale})
	if err != nil {
		return err
	}

	current := v.Template.OrDefault()
	for _, p := range previews {
		path := filepath.Join(galleryOut, string(p.Template)+".html")
		if err := writeFile(path, []byte(p.HTML)); err != nil {
			return err
		}
		marker := " "
		if p.Template == current {
			marker = "*"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, path)
	}
	return nil
}

// writeFile creates the parent directory and writes content
func writeFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

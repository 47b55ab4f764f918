// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintVersion outputs a human-readable summary of a version: identity, list sizes and
// the resolved section order with hidden sections marked.
func (p *Printer) PrintVersion(v types.Version, active bool) {
	var sb strings.Builder

	name := v.Name
	if active {
		name += " (active)"
	}
	sb.WriteString(fmt.Sprintf("Version:  %s\n", name))
	sb.WriteString(fmt.Sprintf("ID:       %s\n", v.ID))
	sb.WriteString(fmt.Sprintf("Template: %s\n", v.Template.OrDefault()))
	if v.TargetRole != "" {
		sb.WriteString(fmt.Sprintf("Role:     %s\n", v.TargetRole))
	}
	if full := v.Data.PersonalInfo.FullName(); full != "" {
		sb.WriteString(fmt.Sprintf("Name:     %s\n", full))
	}
	sb.WriteString("\n")

	sb.WriteString("Sections:\n")
	for _, s := range layout.ResolveOrder(v.SectionOrder) {
		mark := "•"
		if !layout.HasContent(v.Data, s) {
			mark = "◦"
		}
		sb.WriteString(fmt.Sprintf("  %s %-10s %s\n", mark, s, sectionCount(v.Data, s)))
	}

	if skills := layout.SkillNames(v.Data.Skills); len(skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(skills), maxItemsToShow)
		sb.WriteString(fmt.Sprintf("  %s\n", strings.Join(skills[:count], ", ")))
		if len(skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(skills)-maxItemsToShow))
		}
	}

	p.printBox("CV VERSION", strings.TrimSuffix(sb.String(), "\n"))
}

func sectionCount(data types.CVData, s types.SectionID) string {
	switch s {
	case types.SectionSummary:
		if layout.HasContent(data, s) {
			return fmt.Sprintf("%d chars", len([]rune(strings.TrimSpace(data.PersonalInfo.Summary))))
		}
		return "empty"
	case types.SectionExperience:
		return fmt.Sprintf("%d entries", len(data.Experiences))
	case types.SectionEducation:
		return fmt.Sprintf("%d entries", len(data.Education))
	case types.SectionSkills:
		return fmt.Sprintf("%d entries", len(data.Skills))
	case types.SectionLanguages:
		return fmt.Sprintf("%d entries", len(data.Languages))
	}
	return ""
}

// PrintExportResult outputs what an export produced
func (p *Printer) PrintExportResult(format export.Format, res *export.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", res.Filename))
	sb.WriteString(fmt.Sprintf("Format:   %s\n", format))
	sb.WriteString(fmt.Sprintf("Size:     %s\n", humanSize(len(res.Data))))
	if res.Pages > 0 {
		sb.WriteString(fmt.Sprintf("Pages:    %d\n", res.Pages))
	}

	if len(res.Sections) == 0 {
		sb.WriteString("\nNo sections (empty CV placeholder)")
	} else {
		sb.WriteString("\nSections emitted:\n")
		for i, s := range res.Sections {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, s))
		}
	}

	p.printBox("EXPORT RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// PrintWarnings outputs schema issues and repairs found while loading or importing.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarnings(title string, warnings []string) {
	if len(warnings) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO WARNINGS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d warning(s):\n\n", len(warnings)))

	count := min(len(warnings), maxItemsToShow*2)
	for i := 0; i < count; i++ {
		field, detail, ok := strings.Cut(warnings[i], ": ")
		if !ok {
			field, detail = "(root)", warnings[i]
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", field))
		sb.WriteString(fmt.Sprintf("  %s\n", detail))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(warnings) > count {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(warnings)-count))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

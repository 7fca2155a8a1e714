// Package observability renders human-readable summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-enhancer/internal/types"
)

const (
	// boxWidth is the outer width of every printed box
	boxWidth = 60
	// maxKeywords is how many keywords are listed per group
	maxKeywords = 8
	// barWidth is the length of a full heatmap bar
	barWidth = 30
)

// Printer writes boxed summaries to an output stream
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a titled box. Lines wider than the box are cut with "...".
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad fits a line to the inner width, counting runes so box glyphs line up
func pad(line string) string {
	inner := boxWidth - 4
	if utf8.RuneCountInString(line) > inner {
		line = truncate(line, inner)
	}
	return line + strings.Repeat(" ", inner-utf8.RuneCountInString(line))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintSections lists every non-empty section with its first line and the
// essential sections that were not found
func (p *Printer) PrintSections(m types.SectionMap, missing []types.SectionName) {
	var sb strings.Builder

	entries := m.NonEmpty()
	if len(entries) == 0 {
		sb.WriteString("No sections detected\n")
	}
	for _, e := range entries {
		lines := strings.Split(strings.TrimSpace(e.Content), "\n")
		fmt.Fprintf(&sb, "%-15s %s\n", e.Name, truncate(strings.TrimSpace(lines[0]), 36))
		if len(lines) > 1 {
			fmt.Fprintf(&sb, "%-15s (+%d lines)\n", "", len(lines)-1)
		}
	}

	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, name := range missing {
			names[i] = string(name)
		}
		sb.WriteString("\nMissing: " + strings.Join(names, ", ") + "\n")
	}

	p.printBox("RESUME SECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHeatmap draws one bar per section, scaled to 100
func (p *Printer) PrintHeatmap(scores types.HeatmapScores) {
	if len(scores) == 0 {
		return
	}

	var sb strings.Builder
	for _, s := range scores {
		filled := max(0, min(s.Score, 100)) * barWidth / 100
		fmt.Fprintf(&sb, "%-15s %s%s %3d\n",
			s.Section, strings.Repeat("█", filled), strings.Repeat("·", barWidth-filled), s.Score)
	}
	p.printBox("SECTION HEATMAP", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintATS outputs the ATS score followed by the model's feedback
func (p *Printer) PrintATS(result *types.AtsResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %d/100\n", result.Score)
	if feedback := strings.TrimSpace(result.Feedback); feedback != "" {
		sb.WriteString("\n")
		for _, line := range wrap(feedback, boxWidth-4) {
			sb.WriteString(line + "\n")
		}
	}
	p.printBox("ATS SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatch outputs the match score with present and missing keywords
func (p *Printer) PrintMatch(result *types.MatchResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Match: %d%%\n", result.Score)
	writeKeywords(&sb, "Present", "✓", result.Keywords.Present)
	writeKeywords(&sb, "Missing", "✗", result.Keywords.Missing)
	p.printBox("JOB MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

func writeKeywords(sb *strings.Builder, label, mark string, keywords []string) {
	if len(keywords) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", label)
	count := min(len(keywords), maxKeywords)
	for _, kw := range keywords[:count] {
		fmt.Fprintf(sb, "  %s %s\n", mark, kw)
	}
	if len(keywords) > maxKeywords {
		fmt.Fprintf(sb, "  ... and %d more\n", len(keywords)-maxKeywords)
	}
}

// wrap splits text into lines no wider than width, keeping paragraph breaks
func wrap(text string, width int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}
	return lines
}

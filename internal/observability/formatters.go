// Package observability renders human-readable summaries for verbose CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/knotic/internal/types"
)

const (
	boxWidth       = 60
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

// printBox prints a bordered box with a title and content.
//
//nolint:errcheck // terminal output; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(clip(line, boxWidth-4), boxWidth-4))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func clip(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", heading)
	for _, item := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
	sb.WriteString("\n")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PrintStructuredResume outputs the candidate, roles and skills of a normalized résumé.
func (p *Printer) PrintStructuredResume(resume *types.StructuredResume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	if name := deref(resume.Candidate.Name); name != "" {
		fmt.Fprintf(&sb, "Name:     %s\n", name)
	}
	if email := deref(resume.Candidate.Email); email != "" {
		fmt.Fprintf(&sb, "Email:    %s\n", email)
	}
	sb.WriteString("\n")

	roles := make([]string, 0, len(resume.Experience))
	for _, e := range resume.Experience {
		roles = append(roles, fmt.Sprintf("%s, %s", e.Role, e.Company))
	}
	writeList(&sb, "Experience", roles, maxItemsToShow)

	degrees := make([]string, 0, len(resume.Education))
	for _, e := range resume.Education {
		degrees = append(degrees, fmt.Sprintf("%s, %s", e.Degree, e.Institution))
	}
	writeList(&sb, "Education", degrees, 3)
	writeList(&sb, "Technical skills", resume.Skills.Technical, maxItemsToShow)
	writeList(&sb, "Tools", resume.Skills.Tools, maxItemsToShow)

	p.printBox("STRUCTURED RÉSUMÉ", strings.TrimRight(sb.String(), "\n"))
}

// PrintMatchReport outputs the score breakdown, zone and keyword coverage.
func (p *Printer) PrintMatchReport(report *types.MatchReport) {
	if report == nil {
		return
	}

	b := report.ScoreBreakdown
	var sb strings.Builder
	fmt.Fprintf(&sb, "Score:       %.1f / 100  (%.1f★)\n", report.Score, report.StarRating)
	fmt.Fprintf(&sb, "Visibility:  %s\n", report.Visibility.Zone)
	if report.Visibility.Description != "" {
		fmt.Fprintf(&sb, "             %s\n", report.Visibility.Description)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Keywords    %4.1f / %.0f\n", b.KeywordScore, types.MaxKeywordScore)
	fmt.Fprintf(&sb, "Skills      %4.1f / %.0f\n", b.SkillsScore, types.MaxSkillsScore)
	fmt.Fprintf(&sb, "Experience  %4.1f / %.0f\n", b.ExperienceScore, types.MaxExperienceScore)
	fmt.Fprintf(&sb, "Education   %4.1f / %.0f\n", b.EducationScore, types.MaxEducationScore)
	fmt.Fprintf(&sb, "Format      %4.1f / %.0f\n", b.FormatScore, types.MaxFormatScore)
	sb.WriteString("\n")

	matched := make([]string, 0, len(report.MatchedKeywords))
	for _, k := range report.MatchedKeywords {
		entry := k.Keyword
		if k.MatchType == types.MatchSynonym {
			entry += " (synonym)"
		}
		matched = append(matched, entry)
	}
	writeList(&sb, "Matched keywords", matched, maxItemsToShow)
	writeList(&sb, "Missing keywords", report.MissingKeywords, maxItemsToShow)

	if report.RoboticFlag && report.RoboticAdvice != nil {
		fmt.Fprintf(&sb, "Warning: %s\n", *report.RoboticAdvice)
	}

	p.printBox("MATCH REPORT", strings.TrimRight(sb.String(), "\n"))
}

// PrintReadinessReport outputs the readiness score, sub-scores and suggestions.
func (p *Printer) PrintReadinessReport(report *types.ReadinessReport) {
	if report == nil {
		return
	}

	b := report.ScoreBreakdown
	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall:     %.1f / 100  (%s)\n", report.OverallScore, report.QualityLevel.Level)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Completeness      %5.1f\n", b.Completeness)
	fmt.Fprintf(&sb, "Keyword richness  %5.1f\n", b.KeywordRichness)
	fmt.Fprintf(&sb, "Format quality    %5.1f\n", b.FormatQuality)
	fmt.Fprintf(&sb, "ATS readiness     %5.1f\n", b.ATSReadiness)
	sb.WriteString("\n")
	writeList(&sb, "Suggested roles", report.SuggestedJobs, maxItemsToShow)
	writeList(&sb, "Improvements", report.Improvements, 3)

	p.printBox("READINESS REPORT", strings.TrimRight(sb.String(), "\n"))
}

// Package report renders an audit result for export.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"audit-backend/internal/audits"
	"audit-backend/internal/shared/util"
)

// Format is an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts json, yaml/yml and markdown/md.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", eris.Errorf("report: unknown format %q", raw)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "md"
	default:
		return "json"
	}
}

// Document is the exported shape for json and yaml.
type Document struct {
	WebsiteURL string                `json:"websiteUrl" yaml:"websiteUrl"`
	Result     audits.AnalysisResult `json:"result" yaml:"result"`
}

// Encode writes result in the given format.
func Encode(w io.Writer, f Format, websiteURL string, result audits.AnalysisResult) error {
	doc := Document{WebsiteURL: websiteURL, Result: result}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "report: encode json")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		return nil
	case FormatMarkdown:
		if _, err := io.WriteString(w, Markdown(websiteURL, result)); err != nil {
			return eris.Wrap(err, "report: write markdown")
		}
		return nil
	default:
		return eris.Errorf("report: unknown format %q", f)
	}
}

// chartLabels are the short axis labels used for the category scores.
var chartLabels = []string{"Hygiene", "Relevance", "Sales Tool", "Differentiation", "Strategy"}

// Markdown renders the full report.
func Markdown(websiteURL string, r audits.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Content Intelligence Report\n\n")
	fmt.Fprintf(&b, "**Website:** %s  \n", websiteURL)
	fmt.Fprintf(&b, "**Industry:** %s  \n", r.Industry)
	fmt.Fprintf(&b, "**Overall score:** %s / 100  \n", formatScore(r.OverallScore))
	fmt.Fprintf(&b, "**Maturity level:** %s\n\n", r.MaturityLevel)

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(strings.TrimSpace(r.ExecutiveSummary))
	b.WriteString("\n\n")

	b.WriteString("## Category Scores\n\n")
	b.WriteString("| Category | Score | Insight |\n|---|---:|---|\n")
	for i, c := range r.Categories.Ordered() {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", chartLabels[i], formatScore(c.Score), cell(c.Insight))
	}
	b.WriteString("\n")
	for _, c := range r.Categories.Ordered() {
		fmt.Fprintf(&b, "### %s (%s)\n\n", c.Name, formatScore(c.Score))
		if c.Insight != "" {
			fmt.Fprintf(&b, "%s\n\n", c.Insight)
		}
		if c.Reasoning != "" {
			fmt.Fprintf(&b, "_%s_\n\n", c.Reasoning)
		}
	}

	writeList(&b, "Strengths", r.Strengths)
	writeList(&b, "Gaps", r.Gaps)
	writeNumbered(&b, "Priority Actions", r.PriorityActions)

	b.WriteString("## Industry Context\n\n")
	fmt.Fprintf(&b, "- **Buyer personas:** %s\n", r.IndustryContext.BuyerPersonas)
	fmt.Fprintf(&b, "- **Decision makers:** %s\n", r.IndustryContext.DecisionMakers)
	fmt.Fprintf(&b, "- **Sales cycle:** %s\n\n", r.IndustryContext.SalesCycle)

	if len(r.GroundingSources) > 0 {
		b.WriteString("## Sources\n\n")
		for _, s := range r.GroundingSources {
			title := s.Title
			if title == "" {
				title = s.URI
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", title, s.URI)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Teaser renders the part of the report shown before the email gate.
func Teaser(websiteURL string, r audits.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s / 100 · %s\n\n", formatScore(r.OverallScore), r.MaturityLevel)
	fmt.Fprintf(&b, "**%s** (%s)\n\n", websiteURL, r.Industry)
	b.WriteString(strings.TrimSpace(r.ExecutiveSummary))
	b.WriteString("\n\n")
	for i, c := range r.Categories.Ordered() {
		fmt.Fprintf(&b, "- %s: %s\n", chartLabels[i], formatScore(c.Score))
	}
	return b.String()
}

// FileName returns the export file name for websiteURL, e.g.
// LexiConn_Audit_example.com.md.
func FileName(websiteURL, ext string) string {
	host := websiteURL
	if u, err := url.Parse(websiteURL); err == nil && u.Host != "" {
		host = u.Host
	} else {
		host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
		host, _, _ = strings.Cut(host, "/")
	}
	name, err := util.SanitizeFileName(fmt.Sprintf("LexiConn_Audit_%s.%s", host, ext))
	if err != nil {
		return "LexiConn_Audit." + ext
	}
	return name
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func writeNumbered(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
	b.WriteString("\n")
}

func formatScore(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%.1f", n)
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chriscorrea/themesift/internal/corpus"
	"github.com/chriscorrea/themesift/internal/theme"
)

// Report is the result of one run: every configured theme in order, with its
// abstract when it was summarized.
type Report struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Documents   int           `json:"documents"`
	Query       string        `json:"query,omitempty"`
	Themes      []ThemeReport `json:"themes"`
}

// ThemeReport describes a single theme.
type ThemeReport struct {
	ID          string   `json:"id"`
	Documents   int      `json:"documents"`
	Sentences   int      `json:"sentences"`
	Skipped     bool     `json:"skipped"`
	Budget      float64  `json:"budget"`
	Abstract    []string `json:"abstract"`
	DocumentIDs []string `json:"document_ids"`
	Score       float64  `json:"score,omitempty"` // BM25md relevance when a query was given
}

func newReport(runID string, docs []*corpus.Document, reg *theme.Registry, s *theme.Summarizer) *Report {
	report := &Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Documents:   len(docs),
		Themes:      make([]ThemeReport, 0, reg.Len()),
	}

	for _, t := range reg.Themes() {
		tr := ThemeReport{
			ID:          t.ID,
			Documents:   t.Len(),
			Skipped:     !s.Eligible(t),
			Abstract:    []string{},
			DocumentIDs: make([]string, 0, t.Len()),
		}
		for _, doc := range t.Docs {
			tr.DocumentIDs = append(tr.DocumentIDs, doc.ID)
		}
		if t.Evaluated {
			tr.Sentences = len(t.Sentences)
			tr.Budget = t.Budget
			if lines := t.AbstractLines(); lines != nil {
				tr.Abstract = lines
			}
		}
		report.Themes = append(report.Themes, tr)
	}

	return report
}

// Render formats the report.
func (r *Report) Render(format OutputFormat) (string, error) {
	switch format {
	case Markdown:
		return r.markdown(), nil
	case Text:
		return r.text(), nil
	case JSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode report: %w", err)
		}
		return string(data) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func (r *Report) markdown() string {
	var b strings.Builder

	b.WriteString("# Themes\n\n")
	fmt.Fprintf(&b, "%d documents, %d themes", r.Documents, len(r.Themes))
	if r.Query != "" {
		fmt.Fprintf(&b, ", ranked by %q", r.Query)
	}
	b.WriteString("\n")

	for _, t := range r.Themes {
		fmt.Fprintf(&b, "\n## %s\n\n", t.ID)
		fmt.Fprintf(&b, "*%s*\n", t.summaryLine())
		for _, line := range t.Abstract {
			fmt.Fprintf(&b, "\n%s\n", line)
		}
	}

	return b.String()
}

func (r *Report) text() string {
	var b strings.Builder

	for i, t := range r.Themes {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%s)\n", t.ID, t.summaryLine())
		for _, line := range t.Abstract {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	return b.String()
}

func (t ThemeReport) summaryLine() string {
	if t.Skipped {
		return fmt.Sprintf("%d documents, skipped", t.Documents)
	}
	line := fmt.Sprintf("%d documents, %d sentences", t.Documents, t.Sentences)
	if t.Score > 0 {
		line += fmt.Sprintf(", score %.3f", t.Score)
	}
	return line
}

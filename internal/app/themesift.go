// Package app wires the themesift pipeline together, separate from CLI concerns.
//
// Processing Pipeline:
//  1. load and filter the corpus (loadDocuments)
//  2. optionally strip HTML from record content (cleanContent)
//  3. cut documents into sentences and assign them to themes
//  4. weigh documents and sentences with TF-IDF
//  5. summarize every eligible theme (MMR) and build the report
//  6. optionally rank the abstracts against a search query
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chriscorrea/themesift/internal/classify"
	"github.com/chriscorrea/themesift/internal/corpus"
	"github.com/chriscorrea/themesift/internal/counter"
	"github.com/chriscorrea/themesift/internal/extract"
	"github.com/chriscorrea/themesift/internal/segment"
	"github.com/chriscorrea/themesift/internal/spinner"
	"github.com/chriscorrea/themesift/internal/tfidf"
	"github.com/chriscorrea/themesift/internal/theme"
)

// OutputFormat defines the output format for results
type OutputFormat int

const (
	// markdown output format (default)
	Markdown OutputFormat = iota
	// plaintext output format
	Text
	// JSON output format
	JSON
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case Markdown:
		return "Markdown"
	case Text:
		return "Text"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// Config holds all configuration options for a themesift run.
type Config struct {
	Sources  []string            // corpus files, URLs, or "-" for stdin
	Themes   []string            // theme names, each also its own keyword
	Keywords map[string][]string // extra keywords per theme

	Boundaries []string // sentence-closing tokens; nil means segment.DefaultBoundaries
	Ignorable  []string // skipped tokens; nil means segment.DefaultIgnorable

	PenaltyWeight  *float64               // MMR lambda; nil means theme.DefaultPenaltyWeight
	MinDocuments   int                    // smallest theme that gets an abstract
	CountingMethod counter.CountingMethod // unit of the abstract budget
	Matcher        classify.Matcher       // keyword matching; nil means exact
	Workers        int                    // themes summarized concurrently

	Filter     corpus.Filter // time window and child-section filtering
	CleanHTML  bool          // strip HTML markup from record content
	IncludeAll bool          // keep all page text when cleaning, not just the main article

	SearchQuery  string       // rank abstracts against this query and drop non-matching themes
	OutputFormat OutputFormat // output format (md/txt/json)
	Quiet        bool         // suppress progress output
	Debug        bool
}

// Run executes the pipeline and renders the report in cfg.OutputFormat.
//
// ctx allows for cancellation of corpus downloads and theme summarization.
func Run(ctx context.Context, cfg Config) (string, error) {
	report, err := Analyze(ctx, cfg)
	if err != nil {
		return "", err
	}
	return report.Render(cfg.OutputFormat)
}

// Analyze runs the pipeline and returns the report without rendering it.
func Analyze(ctx context.Context, cfg Config) (*Report, error) {
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources provided")
	}

	reg := theme.NewRegistry(cfg.Themes, cfg.Keywords)
	if reg.Len() == 0 {
		return nil, fmt.Errorf("no themes configured")
	}

	start := time.Now()

	// step 1: load and filter the corpus
	docs, err := corpus.LoadAll(ctx, cfg.Sources, cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	// step 2: strip markup
	if cfg.CleanHTML {
		if err := cleanContent(docs, cfg.IncludeAll); err != nil {
			return nil, err
		}
	}

	report, err := summarize(ctx, cfg, reg, docs)
	if err != nil {
		return nil, err
	}

	// step 6: rank abstracts against the search query
	if query := strings.TrimSpace(cfg.SearchQuery); query != "" {
		report.Query = query
		report.Themes = rankThemes(report.Themes, query)
	}

	slog.Debug("Run complete", "runID", report.RunID, "themes", len(report.Themes), "elapsed", time.Since(start))
	return report, nil
}

// Summarize runs steps 3 to 5 over documents that are already loaded.
// The registry is reset first, so reg itself is never filled.
func Summarize(ctx context.Context, cfg Config, reg *theme.Registry, docs []*corpus.Document) (*Report, error) {
	return summarize(ctx, cfg, reg, docs)
}

func summarize(ctx context.Context, cfg Config, reg *theme.Registry, docs []*corpus.Document) (*Report, error) {
	textCounter, err := counter.NewCounter(cfg.CountingMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", cfg.CountingMethod, err)
	}

	boundaries := cfg.Boundaries
	if boundaries == nil {
		boundaries = segment.DefaultBoundaries
	}
	ignorable := cfg.Ignorable
	if ignorable == nil {
		ignorable = segment.DefaultIgnorable
	}

	for _, doc := range docs {
		doc.ResetDerived()
	}
	reg = reg.Reset()

	// step 3: segment and classify
	sentences := segment.New(boundaries, ignorable).SegmentAll(docs)
	classify.NewClassifier(cfg.Matcher, ignorable).Classify(reg, docs)
	slog.Debug("Corpus prepared", "documents", len(docs), "sentences", sentences)

	// step 4: weigh at both granularities with independent statistics
	tfidf.WeighDocuments(docs)
	tfidf.WeighSentences(docs)

	// step 5: summarize
	var sp *spinner.Spinner
	if !cfg.Quiet && spinner.Enabled(os.Stderr) {
		sp = spinner.New(ctx, os.Stderr, "Summarizing themes")
		sp.Start()
		defer sp.Stop()
	}

	opts := []theme.Option{
		theme.WithCounter(textCounter),
		theme.WithProgress(func(done, total int) {
			if sp != nil {
				sp.Progress(done, total)
			}
		}),
	}
	if cfg.PenaltyWeight != nil {
		opts = append(opts, theme.WithPenaltyWeight(*cfg.PenaltyWeight))
	}
	if cfg.MinDocuments > 0 {
		opts = append(opts, theme.WithMinDocuments(cfg.MinDocuments))
	}
	summarizer := theme.NewSummarizer(opts...)

	if err := summarizer.Summarize(ctx, reg, cfg.Workers); err != nil {
		return nil, fmt.Errorf("failed to summarize themes: %w", err)
	}

	return newReport(uuid.NewString(), docs, reg, summarizer), nil
}

// cleanContent replaces HTML record content with its plain text.
func cleanContent(docs []*corpus.Document, includeAll bool) error {
	cleaned := 0
	for _, doc := range docs {
		if !extract.LooksLikeHTML(doc.Content) {
			continue
		}
		text, err := extract.PlainText(doc.Content, includeAll)
		if err != nil {
			return fmt.Errorf("failed to clean content of document %q: %w", doc.ID, err)
		}
		doc.Content = text
		cleaned++
	}
	slog.Debug("Content cleaned", "documents", cleaned)
	return nil
}

package theme

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/chriscorrea/themesift/internal/counter"
	"github.com/chriscorrea/themesift/internal/similarity"
)

const (
	// DefaultPenaltyWeight is the MMR lambda: how strongly redundancy with
	// already picked sentences is penalized against centrality.
	DefaultPenaltyWeight = 0.2

	// DefaultMinDocuments is the smallest theme that gets an abstract.
	DefaultMinDocuments = 2
)

// Summarizer builds extractive abstracts for themes.
type Summarizer struct {
	penaltyWeight float64
	minDocuments  int
	counter       counter.Counter
	progress      func(done, total int)
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithPenaltyWeight sets the MMR lambda.
func WithPenaltyWeight(lambda float64) Option {
	return func(s *Summarizer) {
		s.penaltyWeight = lambda
	}
}

// WithMinDocuments sets the member count below which a theme is skipped.
func WithMinDocuments(n int) Option {
	return func(s *Summarizer) {
		s.minDocuments = n
	}
}

// WithCounter sets the unit used for the abstract length budget.
func WithCounter(c counter.Counter) Option {
	return func(s *Summarizer) {
		if c != nil {
			s.counter = c
		}
	}
}

// WithProgress registers a callback invoked after each theme is finished.
// Calls may come from several goroutines but are serialized.
func WithProgress(fn func(done, total int)) Option {
	return func(s *Summarizer) {
		s.progress = fn
	}
}

// NewSummarizer creates a Summarizer with default settings overridden by opts.
func NewSummarizer(opts ...Option) *Summarizer {
	s := &Summarizer{
		penaltyWeight: DefaultPenaltyWeight,
		minDocuments:  DefaultMinDocuments,
		counter:       counter.NewCharCounter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Eligible reports whether t has enough member documents to be summarized.
func (s *Summarizer) Eligible(t *Theme) bool {
	return t.Len() >= s.minDocuments
}

// Summarize evaluates the abstract of every eligible theme in reg.
// Themes are independent, so up to workers of them are evaluated at once
// (workers < 1 means one). Ineligible themes are skipped silently.
func (s *Summarizer) Summarize(ctx context.Context, reg *Registry, workers int) error {
	if workers < 1 {
		workers = 1
	}

	themes := reg.Themes()
	slog.Debug("Evaluating abstracts", "themes", len(themes), "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu   sync.Mutex
		done int
	)
	finish := func() {
		if s.progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		s.progress(done, len(themes))
	}

	for _, t := range themes {
		slog.Debug("Theme collected", "theme", t.ID, "documents", t.Len())

		if !s.Eligible(t) {
			finish()
			continue
		}

		if err := gctx.Err(); err != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.EvaluateAbstract(t)
			slog.Debug("Abstract evaluated", "theme", t.ID, "sentences", len(t.Sentences), "picked", len(t.Picked), "budget", t.Budget)
			finish()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// EvaluateAbstract rebuilds t's sentence list, similarity matrix, centrality
// scores and abstract, and returns the abstract.
func (s *Summarizer) EvaluateAbstract(t *Theme) string {
	t.Sentences = t.Sentences[:0]
	for _, doc := range t.Docs {
		t.Sentences = append(t.Sentences, doc.Sentences...)
	}

	t.SimMatrix = similarityMatrix(t)
	t.Centroids = centroids(t.SimMatrix, len(t.Sentences))
	t.CentralityRank = rankDescending(t.Centroids)
	t.Budget = s.budget(t)
	t.Picked = nil
	t.Abstract = s.selectDiverse(t)
	t.Evaluated = true

	return t.Abstract
}

// similarityMatrix fills the upper triangle (diagonal included) and lets the
// symmetric storage mirror it.
func similarityMatrix(t *Theme) *mat.SymDense {
	n := len(t.Sentences)
	if n == 0 {
		return nil
	}

	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, similarity.Sentences(t.Sentences[i], t.Sentences[j]))
		}
	}
	return m
}

// centroids returns the mean of every matrix row.
func centroids(m *mat.SymDense, n int) []float64 {
	out := make([]float64, n)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		mat.Row(row, i, m)
		out[i] = stat.Mean(row, nil)
	}
	return out
}

// budget is the average member content length, dividing by at least one.
func (s *Summarizer) budget(t *Theme) float64 {
	var total float64
	for _, doc := range t.Docs {
		total += float64(s.counter.Count(doc.Content))
	}
	return total / float64(max(len(t.Docs), 1))
}

// selectDiverse runs the MMR loop. It iterates once per sentence in centrality
// order, but every iteration re-ranks all sentences by
//
//	(1-λ)·centroid - λ·mean similarity to the picked sentences
//
// and appends the best unpicked one. The loop ends once the abstract reaches
// the budget or every sentence is picked.
func (s *Summarizer) selectDiverse(t *Theme) string {
	n := len(t.Sentences)
	picked := make(map[int]struct{}, n)
	redundancy := make([]float64, n)
	scores := make([]float64, n)
	lambda := s.penaltyWeight

	var abs strings.Builder

	for range t.CentralityRank {
		for i := 0; i < n; i++ {
			var sum float64
			for _, p := range t.Picked {
				sum += t.SimMatrix.At(i, p)
			}
			redundancy[i] = sum / float64(max(len(t.Picked), 1))
			scores[i] = (1-lambda)*t.Centroids[i] - lambda*redundancy[i]
		}

		for _, i := range rankDescending(scores) {
			if _, ok := picked[i]; ok {
				continue
			}
			picked[i] = struct{}{}
			t.Picked = append(t.Picked, i)

			abs.WriteString(t.Sentences[i].Text())
			if !strings.HasSuffix(abs.String(), "\n") {
				abs.WriteByte('\n')
			}
			break
		}

		if float64(s.counter.Count(abs.String())) >= t.Budget {
			break
		}
	}

	return abs.String()
}

// rankDescending returns indices ordered by descending value; equal values
// keep ascending index order.
func rankDescending(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})
	return idx
}

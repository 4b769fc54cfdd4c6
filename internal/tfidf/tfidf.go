// Package tfidf provides TF-IDF (Term Frequency-Inverse Document Frequency) weighting
// over pre-tokenized units.
//
// A unit is anything with a token sequence: a whole document or a single sentence.
// The corpus pre-calculates raw term counts and unit frequencies once, then produces
// a sparse, L2-normalized weight map per unit.
//
// The weighting combines:
//   - Term Frequency (TF): raw count of a term in the unit
//   - Inverse Document Frequency (IDF): log2(total units / units containing the term)
//
// Terms present in every unit get an IDF of zero and are left out of the maps.
//
// Usage Example:
//
//	corpus := tfidf.NewCorpus([][]string{{"a", "b"}, {"b", "c"}})
//	weights := corpus.Weights(0)
package tfidf

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/chriscorrea/themesift/internal/corpus"
)

// epsilon is the magnitude below which a weight is treated as zero.
const epsilon = 1e-12

// Corpus holds unit term counts and pre-calculated unit frequencies.
type Corpus struct {
	TermCounts     []map[string]float64 // raw term counts per unit
	UnitFrequency  map[string]int       // number of units containing each term
	TotalUnits     int                  // total number of units
	vocabularySize int
}

// NewCorpus creates a TF-IDF corpus from unit token sequences.
// Statistics are computed once; Weights is then cheap per unit.
func NewCorpus(units [][]string) *Corpus {
	c := &Corpus{
		TermCounts:    make([]map[string]float64, len(units)),
		UnitFrequency: make(map[string]int),
		TotalUnits:    len(units),
	}

	if len(units) == 0 {
		slog.Debug("Empty unit collection provided")
		return c
	}

	for i, tokens := range units {
		counts := countTerms(tokens)
		c.TermCounts[i] = counts
		for term := range counts {
			c.UnitFrequency[term]++
		}
	}
	c.vocabularySize = len(c.UnitFrequency)

	slog.Debug("TF-IDF corpus created", "units", c.TotalUnits, "vocabulary", c.vocabularySize)
	return c
}

// VocabularySize returns the number of distinct terms across all units.
func (c *Corpus) VocabularySize() int {
	return c.vocabularySize
}

// IDF returns log2(total units / units containing term), or 0 for unknown terms.
func (c *Corpus) IDF(term string) float64 {
	df := c.UnitFrequency[term]
	if df == 0 {
		return 0
	}
	return math.Log2(float64(c.TotalUnits) / float64(df))
}

// Weights returns the sparse, L2-normalized TF-IDF map of unit i.
// An out-of-range index yields an empty map.
func (c *Corpus) Weights(i int) map[string]float64 {
	if i < 0 || i >= len(c.TermCounts) {
		slog.Debug("Invalid unit index", "unitIndex", i, "totalUnits", c.TotalUnits)
		return map[string]float64{}
	}

	counts := c.TermCounts[i]
	terms := make([]string, 0, len(counts))
	values := make([]float64, 0, len(counts))
	for term, tf := range counts {
		w := tf * c.IDF(term)
		if math.Abs(w) <= epsilon {
			continue
		}
		terms = append(terms, term)
		values = append(values, w)
	}

	weights := make(map[string]float64, len(terms))
	if len(values) == 0 {
		return weights
	}

	norm := floats.Norm(values, 2)
	if norm > 0 {
		floats.Scale(1/norm, values)
	}
	for j, term := range terms {
		weights[term] = values[j]
	}
	return weights
}

// Weigh computes weight maps for every unit in one pass.
func Weigh(units [][]string) []map[string]float64 {
	c := NewCorpus(units)
	out := make([]map[string]float64, len(units))
	for i := range units {
		out[i] = c.Weights(i)
	}
	return out
}

// WeighDocuments fills the TFIDF map of every document using document-level statistics.
func WeighDocuments(docs []*corpus.Document) {
	units := make([][]string, len(docs))
	for i, doc := range docs {
		units[i] = doc.Parse
	}
	for i, w := range Weigh(units) {
		docs[i].TFIDF = w
	}
}

// WeighSentences fills the TFIDF map of every sentence of every document using
// statistics over the whole sentence collection, independent of WeighDocuments.
func WeighSentences(docs []*corpus.Document) {
	var sentences []*corpus.Sentence
	for _, doc := range docs {
		sentences = append(sentences, doc.Sentences...)
	}
	units := make([][]string, len(sentences))
	for i, sen := range sentences {
		units[i] = sen.Parse
	}
	for i, w := range Weigh(units) {
		sentences[i].TFIDF = w
	}
}

// countTerms returns the raw count of each token.
func countTerms(tokens []string) map[string]float64 {
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}

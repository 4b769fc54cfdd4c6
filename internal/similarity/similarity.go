// Package similarity scores how alike two sentences are from their TF-IDF maps.
package similarity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/chriscorrea/themesift/internal/corpus"
)

// Similarity compares two sparse weight maps over their shared terms.
//
// The shared terms are sorted so both vectors line up, and the score is
//
//	dot(a, b) / (sqrt(|a|) * sqrt(|b|))
//
// where |v| is the L2 norm. This is not a true cosine (that would divide by
// |a|*|b|); the normalization is kept as is so scores match existing abstracts.
// Maps sharing no term score exactly 0. The result is symmetric in a and b.
func Similarity(a, b map[string]float64) float64 {
	// iterate the smaller map
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	shared := make([]string, 0, len(small))
	for term := range small {
		if _, ok := large[term]; ok {
			shared = append(shared, term)
		}
	}
	if len(shared) == 0 {
		return 0
	}
	sort.Strings(shared)

	va := make([]float64, len(shared))
	vb := make([]float64, len(shared))
	for i, term := range shared {
		va[i] = a[term]
		vb[i] = b[term]
	}

	denom := math.Sqrt(floats.Norm(va, 2)) * math.Sqrt(floats.Norm(vb, 2))
	if denom == 0 {
		return 0
	}
	return floats.Dot(va, vb) / denom
}

// Sentences compares two sentences by their TF-IDF maps.
func Sentences(a, b *corpus.Sentence) float64 {
	return Similarity(a.TFIDF, b.TFIDF)
}

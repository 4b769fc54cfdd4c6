package tfidf

import (
	"math"
	"testing"
	"time"

	"github.com/chriscorrea/themesift/internal/corpus"
)

func TestNewCorpus(t *testing.T) {
	tests := []struct {
		name      string
		units     [][]string
		wantUnits int
		wantVocab int
	}{
		{
			name:      "empty corpus",
			units:     [][]string{},
			wantUnits: 0,
			wantVocab: 0,
		},
		{
			name:      "single unit",
			units:     [][]string{{"hello", "world"}},
			wantUnits: 1,
			wantVocab: 2,
		},
		{
			name:      "multiple units",
			units:     [][]string{{"hello", "world"}, {"goodbye", "world"}, {"hello", "goodbye"}},
			wantUnits: 3,
			wantVocab: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCorpus(tt.units)
			if c.TotalUnits != tt.wantUnits {
				t.Errorf("NewCorpus() total units = %d, want %d", c.TotalUnits, tt.wantUnits)
			}
			if c.VocabularySize() != tt.wantVocab {
				t.Errorf("NewCorpus() vocabulary = %d, want %d", c.VocabularySize(), tt.wantVocab)
			}
		})
	}
}

func TestWeights(t *testing.T) {
	units := [][]string{
		{"fox", "fox", "dog"},
		{"dog", "cat"},
		{"dog", "bird"},
		{"dog"},
	}
	c := NewCorpus(units)

	t.Run("term in every unit is dropped", func(t *testing.T) {
		for i := range units {
			if _, ok := c.Weights(i)["dog"]; ok {
				t.Errorf("unit %d carries a weight for a term present in every unit", i)
			}
		}
	})

	t.Run("single remaining term normalizes to one", func(t *testing.T) {
		w := c.Weights(0)
		if len(w) != 1 {
			t.Fatalf("Weights(0) has %d terms, want 1", len(w))
		}
		if math.Abs(w["fox"]-1) > 1e-9 {
			t.Errorf("Weights(0)[fox] = %f, want 1", w["fox"])
		}
	})

	t.Run("unit with only common terms is empty", func(t *testing.T) {
		if w := c.Weights(3); len(w) != 0 {
			t.Errorf("Weights(3) = %v, want empty", w)
		}
	})

	t.Run("invalid index", func(t *testing.T) {
		if w := c.Weights(10); len(w) != 0 {
			t.Errorf("Weights(10) = %v, want empty", w)
		}
	})

	t.Run("idf is log2", func(t *testing.T) {
		want := math.Log2(4.0 / 1.0)
		if got := c.IDF("fox"); math.Abs(got-want) > 1e-12 {
			t.Errorf("IDF(fox) = %f, want %f", got, want)
		}
		if got := c.IDF("unknown"); got != 0 {
			t.Errorf("IDF(unknown) = %f, want 0", got)
		}
	})
}

func TestWeights_NormalizedAndRarerTermsHeavier(t *testing.T) {
	units := [][]string{
		{"rare", "common"},
		{"common", "x"},
		{"common", "y"},
		{"z"},
	}
	w := Weigh(units)[0]

	var sumSq float64
	for _, v := range w {
		sumSq += v * v
	}
	if math.Abs(sumSq-1) > 1e-9 {
		t.Errorf("squared norm = %f, want 1", sumSq)
	}
	if w["rare"] <= w["common"] {
		t.Errorf("rare weight %f should exceed common weight %f", w["rare"], w["common"])
	}
}

func TestWeigh_Sparsity(t *testing.T) {
	units := [][]string{
		{"a", "b", "c"},
		{"c", "d"},
		{"e"},
		{},
	}
	for i, w := range Weigh(units) {
		present := make(map[string]bool)
		for _, tok := range units[i] {
			present[tok] = true
		}
		for term := range w {
			if !present[term] {
				t.Errorf("unit %d carries weight for absent term %q", i, term)
			}
		}
	}
}

func TestWeighDocumentsAndSentences(t *testing.T) {
	docA := corpus.NewDocument("a", time.Now(), "", "", []string{"x", "y", "z"})
	docB := corpus.NewDocument("b", time.Now(), "", "", []string{"x", "q", "r"})

	senA1 := corpus.NewSentence("a")
	senA1.Parse = []string{"x", "y"}
	senA2 := corpus.NewSentence("a")
	senA2.Parse = []string{"z", "w"}
	docA.AddSentence(senA1)
	docA.AddSentence(senA2)

	senB := corpus.NewSentence("b")
	senB.Parse = []string{"x", "q"}
	docB.AddSentence(senB)

	docs := []*corpus.Document{docA, docB}
	WeighDocuments(docs)
	WeighSentences(docs)

	// x is in both documents, so it has no document-level weight
	if _, ok := docA.TFIDF["x"]; ok {
		t.Error("document-level map carries a term present in every document")
	}
	// x is in two of three sentences, so it keeps a sentence-level weight
	if _, ok := senA1.TFIDF["x"]; !ok {
		t.Error("sentence-level map lost a term absent from one sentence")
	}
	if _, ok := senA2.TFIDF["x"]; ok {
		t.Error("sentence-level map carries a term absent from the sentence")
	}
}

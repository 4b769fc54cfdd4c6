// Package theme holds topical clusters of documents and builds their abstracts.
//
// A Registry maps theme names to Themes and to the keywords that pull documents
// into them. Themes are filled by the rough classifier and summarized by a
// Summarizer, which picks central yet mutually diverse sentences (MMR) until the
// abstract is as long as an average member document.
package theme

import (
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/chriscorrea/themesift/internal/corpus"
)

// Theme is a cluster of documents sharing a keyword, plus the results of its
// latest abstraction pass.
type Theme struct {
	ID   string             // theme name, also its seed keyword
	Docs []*corpus.Document // member documents in insertion order

	Sentences      []*corpus.Sentence // union of member sentences, rebuilt per pass
	SimMatrix      *mat.SymDense      // pairwise sentence similarity; nil when there are no sentences
	Centroids      []float64          // mean similarity of each sentence to all sentences
	CentralityRank []int              // sentence indices by descending centroid, ties by index
	Picked         []int              // sentence indices in the order they joined the abstract
	Budget         float64            // target abstract length in counter units
	Abstract       string             // selected sentences, one per line
	Evaluated      bool               // an abstraction pass has run

	docIDs map[string]struct{}
}

// New creates an empty theme.
func New(id string) *Theme {
	return &Theme{
		ID:     id,
		docIDs: make(map[string]struct{}),
	}
}

// AddDoc adds doc to the theme unless a document with the same id is already a member.
// It reports whether the document was added.
func (t *Theme) AddDoc(doc *corpus.Document) bool {
	if _, ok := t.docIDs[doc.ID]; ok {
		return false
	}
	t.docIDs[doc.ID] = struct{}{}
	t.Docs = append(t.Docs, doc)
	return true
}

// Has reports whether a document with docID is a member.
func (t *Theme) Has(docID string) bool {
	_, ok := t.docIDs[docID]
	return ok
}

// Len returns the number of member documents.
func (t *Theme) Len() int {
	return len(t.Docs)
}

// AbstractLines returns the selected sentences in pick order, one entry per
// sentence. A sentence may contain newline tokens of its own, so the entries
// come from Picked rather than from splitting Abstract.
func (t *Theme) AbstractLines() []string {
	if len(t.Picked) == 0 {
		return nil
	}
	lines := make([]string, 0, len(t.Picked))
	for _, i := range t.Picked {
		lines = append(lines, strings.TrimSuffix(t.Sentences[i].Text(), "\n"))
	}
	return lines
}

// Registry maps theme names to themes and keyword sets.
// Names keep their configured order.
type Registry struct {
	names    []string
	keywords map[string][]string
	themes   map[string]*Theme
}

// NewRegistry creates a registry with one empty theme per distinct, non-blank name.
// Every theme's keyword set contains its own name followed by any extra keywords.
func NewRegistry(names []string, extra map[string][]string) *Registry {
	r := &Registry{
		keywords: make(map[string][]string, len(names)),
		themes:   make(map[string]*Theme, len(names)),
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := r.themes[name]; dup {
			continue
		}
		r.names = append(r.names, name)
		r.themes[name] = New(name)

		kws := []string{name}
		seen := map[string]struct{}{name: {}}
		for _, kw := range extra[name] {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			kws = append(kws, kw)
		}
		r.keywords[name] = kws
	}

	return r
}

// Reset returns a fresh registry with the same names and keywords and empty
// themes. The receiver is left untouched.
func (r *Registry) Reset() *Registry {
	fresh := &Registry{
		names:    make([]string, len(r.names)),
		keywords: make(map[string][]string, len(r.keywords)),
		themes:   make(map[string]*Theme, len(r.names)),
	}
	copy(fresh.names, r.names)
	for _, name := range r.names {
		kws := make([]string, len(r.keywords[name]))
		copy(kws, r.keywords[name])
		fresh.keywords[name] = kws
		fresh.themes[name] = New(name)
	}
	return fresh
}

// Names returns the theme names in configured order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Keywords returns the keyword set of a theme.
func (r *Registry) Keywords(name string) []string {
	return r.keywords[name]
}

// Get returns the theme with the given name.
func (r *Registry) Get(name string) (*Theme, bool) {
	t, ok := r.themes[name]
	return t, ok
}

// Themes returns all themes in configured order.
func (r *Registry) Themes() []*Theme {
	out := make([]*Theme, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.themes[name])
	}
	return out
}

// Len returns the number of themes.
func (r *Registry) Len() int {
	return len(r.names)
}

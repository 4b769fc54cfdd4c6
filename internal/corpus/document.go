// Package corpus provides the tokenized document store used by themesift.
//
// A Document is built once from an upstream Record (already tokenized) and is
// enriched in place by later stages: the segmenter attaches Sentences, the
// classifier records theme ids and the TF-IDF engine fills the weight maps.
//
// Usage Example:
//
//	docs, err := corpus.Load(ctx, "articles.jsonl", corpus.Filter{SkipChildren: true})
//	for _, doc := range docs {
//		fmt.Println(doc.ID, len(doc.Parse))
//	}
package corpus

import (
	"strings"
	"time"
)

// Document is a single timestamped, pre-tokenized text.
type Document struct {
	ID      string    // upstream identifier
	Time    time.Time // publication time
	Title   string    // title followed by the secondary title
	Content string    // full content text
	Parse   []string  // ordered token sequence

	TFIDF     map[string]float64 // document-level weights
	Sentences []*Sentence        // sentences owned by this document

	themeIDs   []string
	themeIDSet map[string]struct{}
}

// NewDocument creates a Document from its identity fields.
func NewDocument(id string, ts time.Time, title, content string, parse []string) *Document {
	return &Document{
		ID:         id,
		Time:       ts,
		Title:      title,
		Content:    content,
		Parse:      parse,
		TFIDF:      map[string]float64{},
		themeIDSet: make(map[string]struct{}),
	}
}

// AddThemeID records that the document was assigned to a theme.
// Adding the same theme twice has no effect.
func (d *Document) AddThemeID(themeID string) {
	if d.themeIDSet == nil {
		d.themeIDSet = make(map[string]struct{})
	}
	if _, ok := d.themeIDSet[themeID]; ok {
		return
	}
	d.themeIDSet[themeID] = struct{}{}
	d.themeIDs = append(d.themeIDs, themeID)
}

// ThemeIDs returns the assigned theme ids in assignment order.
func (d *Document) ThemeIDs() []string {
	out := make([]string, len(d.themeIDs))
	copy(out, d.themeIDs)
	return out
}

// HasTheme reports whether the document was assigned to themeID.
func (d *Document) HasTheme(themeID string) bool {
	_, ok := d.themeIDSet[themeID]
	return ok
}

// AddSentence attaches a finalized sentence, setting its sequence index.
func (d *Document) AddSentence(s *Sentence) {
	s.Seq = len(d.Sentences)
	d.Sentences = append(d.Sentences, s)
}

// ResetDerived drops sentences, theme ids and weights so the document can be
// run through the pipeline again.
func (d *Document) ResetDerived() {
	d.TFIDF = map[string]float64{}
	d.Sentences = nil
	d.themeIDs = nil
	d.themeIDSet = make(map[string]struct{})
}

// Sentence is a run of tokens cut from a single document.
type Sentence struct {
	DocID    string             // owning document
	Parse    []string           // ordered tokens
	TFIDF    map[string]float64 // sentence-level weights
	Seq      int                // index within the owning document
	ThemeVec []float64          // reserved; always nil
}

// NewSentence creates an empty sentence belonging to docID.
func NewSentence(docID string) *Sentence {
	return &Sentence{
		DocID: docID,
		TFIDF: map[string]float64{},
	}
}

// AppendWord appends a token to the sentence.
func (s *Sentence) AppendWord(word string) {
	s.Parse = append(s.Parse, word)
}

// Len returns the number of tokens in the sentence.
func (s *Sentence) Len() int {
	return len(s.Parse)
}

// Text reconstructs the sentence by concatenating its tokens in order.
func (s *Sentence) Text() string {
	return strings.Join(s.Parse, "")
}

// Package segment cuts a document's token stream into sentences.
//
// Sentences close on boundary tokens (or at the document's last token) once
// they hold more than MinSentenceTokens tokens. Shorter runs are never
// emitted on their own: at a boundary they keep accumulating into the next
// sentence, and at the end of the document they are dropped. Ignorable tokens
// are skipped entirely.
//
// Usage Example:
//
//	seg := segment.New(segment.DefaultBoundaries, segment.DefaultIgnorable)
//	sentences := seg.Segment(doc)
package segment

import (
	"log/slog"

	"github.com/chriscorrea/themesift/internal/corpus"
)

// MinSentenceTokens is the largest token count a sentence may have and still be discarded.
const MinSentenceTokens = 2

// DefaultBoundaries are the sentence-closing tokens for Chinese text.
var DefaultBoundaries = []string{"。", "\n", "；", "！", "？"}

// DefaultIgnorable holds whitespace-like tokens that are skipped.
var DefaultIgnorable = []string{"\u3000"}

// Segmenter splits documents into sentences.
type Segmenter struct {
	boundaries map[string]struct{}
	ignorable  map[string]struct{}
}

// New creates a Segmenter from boundary and ignorable token lists.
func New(boundaries, ignorable []string) *Segmenter {
	return &Segmenter{
		boundaries: toSet(boundaries),
		ignorable:  toSet(ignorable),
	}
}

// IsIgnorable reports whether token is skipped during segmentation.
func (s *Segmenter) IsIgnorable(token string) bool {
	_, ok := s.ignorable[token]
	return ok
}

// IsBoundary reports whether token closes a sentence.
func (s *Segmenter) IsBoundary(token string) bool {
	_, ok := s.boundaries[token]
	return ok
}

// Segment cuts doc.Parse into sentences, attaches them to doc and returns
// the newly attached sentences.
func (s *Segmenter) Segment(doc *corpus.Document) []*corpus.Sentence {
	start := len(doc.Sentences)
	last := len(doc.Parse) - 1
	sen := corpus.NewSentence(doc.ID)

	for w, word := range doc.Parse {
		if s.IsIgnorable(word) {
			continue
		}
		sen.AppendWord(word)

		if (s.IsBoundary(word) || w == last) && sen.Len() > MinSentenceTokens {
			doc.AddSentence(sen)
			sen = corpus.NewSentence(doc.ID)
		}
	}

	slog.Debug("Document segmented", "docID", doc.ID, "tokens", len(doc.Parse), "sentences", len(doc.Sentences)-start)
	return doc.Sentences[start:]
}

// SegmentAll segments every document and returns the total sentence count.
func (s *Segmenter) SegmentAll(docs []*corpus.Document) int {
	total := 0
	for _, doc := range docs {
		total += len(s.Segment(doc))
	}
	return total
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

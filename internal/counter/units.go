package counter

import (
	"strings"
	"unicode/utf8"
)

// CharCounter counts Unicode code points, so a CJK character is one unit.
type CharCounter struct{}

// NewCharCounter returns the default budget counter.
func NewCharCounter() Counter {
	return CharCounter{}
}

func (CharCounter) Count(text string) int { return utf8.RuneCountInString(text) }
func (CharCounter) Name() string          { return "characters" }

// WordCounter counts whitespace-separated runs. Pre-tokenized CJK text
// without spaces counts as a single word per run.
type WordCounter struct{}

// NewWordCounter returns a counter for space-delimited corpora.
func NewWordCounter() Counter {
	return WordCounter{}
}

func (WordCounter) Count(text string) int { return len(strings.Fields(text)) }
func (WordCounter) Name() string          { return "words" }

// Package classify performs rough clustering: documents join every theme whose
// keywords appear among their tokens.
//
// Matching is pluggable. ExactMatcher compares tokens verbatim, which is what
// pre-tokenized Chinese corpora need. StemMatcher folds case and reduces English
// words to their snowball stem so "Floods" and "flooding" both reach "flood".
package classify

import (
	"log/slog"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/chriscorrea/themesift/internal/corpus"
	"github.com/chriscorrea/themesift/internal/theme"
)

// Matcher maps a token or keyword to the key it is compared by.
// Two strings match when their keys are equal.
type Matcher interface {
	Key(token string) string
	Name() string
}

// ExactMatcher matches tokens by exact equality.
type ExactMatcher struct{}

// Key returns the token unchanged.
func (ExactMatcher) Key(token string) string { return token }

// Name returns "exact".
func (ExactMatcher) Name() string { return "exact" }

// StemMatcher matches tokens by their lowercased English snowball stem.
type StemMatcher struct{}

// Key returns the stem of the lowercased token, or the lowercased token when it
// cannot be stemmed.
func (StemMatcher) Key(token string) string {
	lower := strings.ToLower(token)
	stemmed, err := snowball.Stem(lower, "english", true)
	if err != nil || stemmed == "" {
		return lower
	}
	return stemmed
}

// Name returns "stem".
func (StemMatcher) Name() string { return "stem" }

// ParseMatcher maps a config or flag value to a Matcher.
// The empty string selects ExactMatcher.
func ParseMatcher(name string) (Matcher, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exact":
		return ExactMatcher{}, true
	case "stem", "stemmed":
		return StemMatcher{}, true
	default:
		return nil, false
	}
}

// Classifier assigns documents to themes by keyword.
type Classifier struct {
	matcher   Matcher
	ignorable map[string]struct{}
}

// NewClassifier creates a Classifier. A nil matcher means ExactMatcher.
// Ignorable tokens are never matched against keywords.
func NewClassifier(m Matcher, ignorable []string) *Classifier {
	if m == nil {
		m = ExactMatcher{}
	}
	set := make(map[string]struct{}, len(ignorable))
	for _, tok := range ignorable {
		set[tok] = struct{}{}
	}
	return &Classifier{
		matcher:   m,
		ignorable: set,
	}
}

// Classify adds every document to each theme of reg that one of its tokens
// matches, and records the theme id on the document. A document may join
// several themes and joins each at most once.
func (c *Classifier) Classify(reg *theme.Registry, docs []*corpus.Document) {
	index := c.keywordIndex(reg)

	assigned := 0
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc.Parse))
		for _, tok := range doc.Parse {
			if _, skip := c.ignorable[tok]; skip {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}

			for _, name := range index[c.matcher.Key(tok)] {
				t, _ := reg.Get(name)
				if t.AddDoc(doc) {
					assigned++
				}
				doc.AddThemeID(name)
			}
		}
	}

	slog.Debug("Documents classified", "documents", len(docs), "themes", reg.Len(), "assignments", assigned, "matcher", c.matcher.Name())
}

// keywordIndex maps each keyword key to the themes it belongs to, in registry order.
func (c *Classifier) keywordIndex(reg *theme.Registry) map[string][]string {
	index := make(map[string][]string)
	for _, name := range reg.Names() {
		for _, kw := range reg.Keywords(name) {
			key := c.matcher.Key(kw)
			if containsString(index[key], name) {
				continue
			}
			index[key] = append(index[key], name)
		}
	}
	return index
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

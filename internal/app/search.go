package app

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/chriscorrea/bm25md"
)

// rankThemes scores each summarized theme's abstract against query with BM25md,
// drops themes that do not match at all and orders the rest by descending score.
// The theme id is indexed as a heading so a query naming the theme ranks it up.
func rankThemes(themes []ThemeReport, query string) []ThemeReport {
	candidates := make([]ThemeReport, 0, len(themes))
	for _, t := range themes {
		if !t.Skipped && len(t.Abstract) > 0 {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return candidates
	}

	corpus := bm25md.NewCorpus(bm25md.WithTokenizer(bm25md.TokenizerFunc(searchTokens)))
	parser := bm25md.NewMarkdownFieldParser()
	for i, t := range candidates {
		text := abstractMarkdown(t)
		corpus.AddDocument(bm25md.Document{
			ID:       i,
			Fields:   parser.ParseDocument(text),
			Original: text,
		})
	}

	ranked := make([]ThemeReport, 0, len(candidates))
	for i, t := range candidates {
		t.Score = corpus.Score(query, i)
		if t.Score <= 0 {
			slog.Debug("Theme does not match query", "theme", t.ID, "query", query)
			continue
		}
		ranked = append(ranked, t)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	slog.Debug("Themes ranked", "query", query, "candidates", len(candidates), "matched", len(ranked))
	return ranked
}

func abstractMarkdown(t ThemeReport) string {
	return fmt.Sprintf("# %s\n\n%s\n", t.ID, strings.Join(t.Abstract, "\n\n"))
}

// searchTokens extends bm25md's default tokenizer to scripts written without
// spaces. Han, kana and hangul runs become overlapping rune bigrams (a lone
// rune stays a unigram), so "无人机" matches inside "无人机在城市上空飞行".
// Everything else goes through bm25md.DefaultTokenizer.
func searchTokens(text string) []string {
	var (
		tokens []string
		run    []rune
		rest   strings.Builder
	)
	flush := func() {
		switch len(run) {
		case 0:
		case 1:
			tokens = append(tokens, string(run))
		default:
			for i := 0; i+1 < len(run); i++ {
				tokens = append(tokens, string(run[i:i+2]))
			}
		}
		run = run[:0]
	}

	for _, r := range text {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			run = append(run, r)
			rest.WriteByte(' ')
			continue
		}
		flush()
		rest.WriteRune(r)
	}
	flush()

	return append(tokens, bm25md.DefaultTokenizer{}.Tokenize(rest.String())...)
}

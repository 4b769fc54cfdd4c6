package counter

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenEncoding is the tiktoken encoding used for token budgets.
const TokenEncoding = "cl100k_base"

// loadEncoding fetches the BPE ranks once per process. The first call may
// download them, and a pipeline may build several counters per run.
var loadEncoding = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	slog.Debug("Loading tiktoken encoding", "encoding", TokenEncoding)
	return tiktoken.GetEncoding(TokenEncoding)
})

// TokenCounter measures abstracts and documents in tiktoken tokens.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex // Summarize counts from several goroutines
}

// NewTokenCounter returns a counter sharing the process-wide encoding.
func NewTokenCounter() (Counter, error) {
	encoding, err := loadEncoding()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", TokenEncoding, err)
	}
	return &TokenCounter{encoding: encoding}, nil
}

// Count returns the token length of text.
func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	tc.mu.RLock()
	defer tc.mu.RUnlock()

	// no special tokens are allowed or disallowed
	n := len(tc.encoding.Encode(text, nil, nil))
	slog.Debug("Token count", "runes", CharCounter{}.Count(text), "tokens", n)
	return n
}

func (tc *TokenCounter) Name() string {
	return "tokens (" + TokenEncoding + ")"
}

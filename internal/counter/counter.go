// Package counter measures text length in configurable units.
//
// The abstract budget of a theme is the average length of its member documents,
// and the abstract grows until its own length reaches that budget. Both sides are
// measured with the same Counter. Characters (Unicode code points) is the default;
// words and tiktoken tokens are available for corpora where those units read better.
//
// Usage Example:
//
//	c, err := counter.NewCounter(counter.Characters)
//	n := c.Count("无人机起飞。")
//	// n == 6
package counter

import (
	"fmt"
	"strings"
)

// Counter defines the interface for different text counting strategies.
type Counter interface {
	// Count returns the number of units (characters, words, or tokens) in given text.
	Count(text string) int

	// Name returns a human-readable name for this counting method (for logging)
	Name() string
}

// CountingMethod represents the different available counting strategies.
type CountingMethod int

const (
	// Characters counts Unicode code points (default)
	Characters CountingMethod = iota
	// Words counts words using whitespace splitting
	Words
	// Tokens uses tiktoken with cl100k_base encoding
	Tokens
)

// String returns the string representation of the counting method.
func (cm CountingMethod) String() string {
	switch cm {
	case Tokens:
		return "tokens"
	case Words:
		return "words"
	case Characters:
		return "characters"
	default:
		return "unknown"
	}
}

// ParseCountingMethod maps a config or flag value to a CountingMethod.
// The empty string selects Characters.
func ParseCountingMethod(s string) (CountingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "characters", "chars":
		return Characters, nil
	case "words":
		return Words, nil
	case "tokens":
		return Tokens, nil
	default:
		return Characters, fmt.Errorf("unknown counting method %q", s)
	}
}

// NewCounter creates a new Counter instance based on the specified method.
// Returns an error if the counter cannot be initialized (e.g., tiktoken encoding fails).
func NewCounter(method CountingMethod) (Counter, error) {
	switch method {
	case Tokens:
		return NewTokenCounter()
	case Words:
		return NewWordCounter(), nil
	default:
		return NewCharCounter(), nil
	}
}

package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Record is one upstream corpus entry as it appears on the wire.
// Pointer fields distinguish an absent field from an empty one.
type Record struct {
	ID       json.RawMessage `json:"_id"`
	Time     *time.Time      `json:"time"`
	Title    *string         `json:"title"`
	SecTitle *string         `json:"secTitle"`
	Content  *string         `json:"content"`
	Parse    []string        `json:"parse"`
	MasterID string          `json:"masterId"`
}

// Filter selects which records become documents.
type Filter struct {
	From         time.Time // inclusive lower bound; zero means unbounded
	To           time.Time // exclusive upper bound; zero means unbounded
	SkipChildren bool      // drop records that belong to a master record
}

// Keep reports whether a document with the given time and master id passes the filter.
func (f Filter) Keep(ts time.Time, masterID string) bool {
	if f.SkipChildren && masterID != "" {
		return false
	}
	if !f.From.IsZero() && ts.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !ts.Before(f.To) {
		return false
	}
	return true
}

// Decode reads records from r. Both a JSON array of records and a stream of
// JSON values (JSON Lines) are accepted.
func Decode(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	dec := json.NewDecoder(br)
	var records []Record

	if first == '[' {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to read corpus array: %w", err)
		}
		for dec.More() {
			var rec Record
			if err := dec.Decode(&rec); err != nil {
				return nil, &InputError{Index: len(records), Reason: fmt.Sprintf("malformed record: %v", err)}
			}
			records = append(records, rec)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to close corpus array: %w", err)
		}
		return records, nil
	}

	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &InputError{Index: len(records), Reason: fmt.Sprintf("malformed record: %v", err)}
		}
		records = append(records, rec)
	}

	return records, nil
}

// peekNonSpace returns the first non-whitespace byte without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		return b, br.UnreadByte()
	}
}

// Build validates records and converts the ones passing filter into Documents,
// preserving source order. A record missing _id, time, content or parse, or
// repeating an earlier id, fails the whole build with an *InputError.
func Build(records []Record, filter Filter) ([]*Document, error) {
	docs := make([]*Document, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	skipped := 0

	for i, rec := range records {
		id, err := recordID(rec.ID)
		if err != nil {
			return nil, &InputError{Index: i, Field: "_id", Reason: err.Error()}
		}
		if rec.Time == nil {
			return nil, &InputError{Index: i, DocID: id, Field: "time", Reason: "missing"}
		}
		if rec.Content == nil {
			return nil, &InputError{Index: i, DocID: id, Field: "content", Reason: "missing"}
		}
		if rec.Parse == nil {
			return nil, &InputError{Index: i, DocID: id, Field: "parse", Reason: "missing"}
		}
		if _, dup := seen[id]; dup {
			return nil, &InputError{Index: i, DocID: id, Field: "_id", Reason: "duplicate id"}
		}
		seen[id] = struct{}{}

		if !filter.Keep(*rec.Time, rec.MasterID) {
			skipped++
			continue
		}

		title := deref(rec.Title) + deref(rec.SecTitle)
		docs = append(docs, NewDocument(id, *rec.Time, title, *rec.Content, rec.Parse))
	}

	slog.Debug("Corpus built", "records", len(records), "documents", len(docs), "filtered", skipped)
	return docs, nil
}

// recordID accepts string and numeric ids.
func recordID(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", errors.New("missing")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("invalid string id: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			return "", errors.New("empty")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number")
	}
	return n.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

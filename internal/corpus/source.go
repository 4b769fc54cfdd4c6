package corpus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Corpus size limits to prevent memory overload
const (
	MaxFileSizeBytes = 200 * 1024 * 1024 // 200MB limit for corpus files and stdin
	MaxHTTPSizeBytes = 200 * 1024 * 1024 // 200MB limit for HTTP corpora (may not have Content-Length)
)

// HTTPRequestTimeout bounds a whole corpus download.
const HTTPRequestTimeout = 60 * time.Second

var (
	httpDialTimeout           = HTTPRequestTimeout / 6
	httpTLSTimeout            = HTTPRequestTimeout / 6
	httpResponseHeaderTimeout = HTTPRequestTimeout / 2
)

// limitedReadCloser wraps an io.ReadCloser to enforce size limits
type limitedReadCloser struct {
	io.ReadCloser
	N      int64  // max bytes remaining
	source string // for error messages
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		// a source of exactly the limit is fine; only trailing data is an error
		var extra [1]byte
		m, err := l.ReadCloser.Read(extra[:])
		if m > 0 {
			return 0, fmt.Errorf("corpus from %q exceeds size limit", l.source)
		}
		return 0, err
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// httpClient is shared by all corpus downloads and is safe for concurrent use.
var httpClient = &http.Client{
	Timeout: HTTPRequestTimeout,
	Transport: &http.Transport{
		Dial: (&net.Dialer{
			Timeout: httpDialTimeout,
		}).Dial,
		TLSHandshakeTimeout:   httpTLSTimeout,
		ResponseHeaderTimeout: httpResponseHeaderTimeout,
		DisableKeepAlives:     true,
	},
}

// Open returns a reader for a corpus source:
//   - "-" reads from standard input
//   - URLs starting with "http://" or "https://" are fetched via HTTP GET
//   - everything else is treated as a local file path
func Open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch {
	case source == "-":
		return &limitedReadCloser{
			ReadCloser: io.NopCloser(os.Stdin),
			N:          MaxFileSizeBytes,
			source:     "stdin",
		}, nil
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return openURL(ctx, source)
	default:
		return openFile(source)
	}
}

// Load opens source, decodes its records and builds the filtered documents.
func Load(ctx context.Context, source string, filter Filter) ([]*Document, error) {
	return LoadAll(ctx, []string{source}, filter)
}

// LoadAll reads the records of every source in order and builds them as one
// corpus, so ids must be unique across sources.
func LoadAll(ctx context.Context, sources []string, filter Filter) ([]*Document, error) {
	var records []Record
	for _, source := range sources {
		recs, err := readRecords(ctx, source)
		if err != nil {
			return nil, err
		}
		slog.Debug("Corpus source read", "source", source, "records", len(recs))
		records = append(records, recs...)
	}
	return Build(records, filter)
}

func readRecords(ctx context.Context, source string) ([]Record, error) {
	reader, err := Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	records, err := Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode corpus %q: %w", source, err)
	}
	return records, nil
}

func openURL(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %q: %w", url, err)
	}
	req.Header.Set("User-Agent", "themesift/0.1")
	req.Header.Set("Accept", "application/json, application/x-ndjson")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch corpus %q: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("corpus request failed for URL %q: status %d %s", url, resp.StatusCode, resp.Status)
	}

	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil && size > MaxHTTPSizeBytes {
			resp.Body.Close()
			return nil, fmt.Errorf("corpus too large (%d bytes > %d bytes limit)", size, MaxHTTPSizeBytes)
		}
	}

	return &limitedReadCloser{
		ReadCloser: resp.Body,
		N:          MaxHTTPSizeBytes,
		source:     url,
	}, nil
}

func openFile(path string) (io.ReadCloser, error) {
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("corpus file %q does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access corpus file %q: %w", path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("corpus path %q is a directory", path)
	}
	if fileInfo.Size() > MaxFileSizeBytes {
		return nil, fmt.Errorf("corpus file %q is too large (%d bytes > %d bytes limit)",
			path, fileInfo.Size(), MaxFileSizeBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file %q: %w", path, err)
	}
	return file, nil
}

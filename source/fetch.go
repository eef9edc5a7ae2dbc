package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultUserAgent is sent with remote requests. Some image hosts refuse
// clients that do not look like a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultMaxBytes caps the size of fetched content.
const DefaultMaxBytes int64 = 256 << 20

// Fetcher reads references fully into memory.
type Fetcher struct {
	// Client performs remote requests. Nil uses a client with a 30s timeout.
	Client *http.Client

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// MaxBytes overrides DefaultMaxBytes.
	MaxBytes int64
}

var defaultClient = &http.Client{Timeout: 30 * time.Second}

// Fetch reads the content of a resolved reference: a local path or an
// http(s) URL.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	scheme, _ := split(ref)
	switch scheme {
	case "":
		return f.readFile(ref, limit)
	case "http", "https":
		return f.get(ctx, ref, limit)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ref)
	}
}

func (f *Fetcher) readFile(name string, limit int64) ([]byte, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer file.Close()
	return readAll(file, limit)
}

func (f *Fetcher) get(ctx context.Context, ref string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	ua := f.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	client := f.Client
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnreachable, ref, resp.Status)
	}
	if resp.ContentLength > limit {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}
	return readAll(resp.Body, limit)
}

func readAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}

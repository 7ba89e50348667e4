// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/assessor/core"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	// DefaultFetchTimeout bounds a single page fetch.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultUserAgent is sent with every fetch. Job boards commonly refuse
	// requests without a browser-like agent.
	DefaultUserAgent = "Mozilla/5.0 (compatible; assessor/1.0)"

	defaultMaxBodyBytes = 2 << 20
)

// Fetcher downloads a page and returns its visible text.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	limiter      *rate.Limiter
	userAgent    string
	maxBodyBytes int64
	logger       *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the per-fetch timeout. Default is 10s.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout is used as is.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithRateLimit caps outbound fetches at one every interval with the given burst.
func WithRateLimit(interval time.Duration, burst int) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(rate.Every(interval), max(burst, 1))
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read. Default is 2 MiB.
func WithMaxBodyBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// WithFetchLogger sets a custom logger.
// Default is slog.Default().
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher creates a fetcher with a 10s timeout and a limit of 5 fetches
// per second.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{Timeout: DefaultFetchTimeout},
		limiter:      rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		userAgent:    DefaultUserAgent,
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "fetcher")
	return f
}

// FetchPageText GETs url and returns the text content of the page with
// script and style elements removed and whitespace collapsed. Every
// failure wraps core.ErrEnrichmentFetch.
func (f *Fetcher) FetchPageText(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrEnrichmentFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrEnrichmentFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrEnrichmentFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %s", core.ErrEnrichmentFetch, url, resp.Status)
	}

	text, err := visibleText(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrEnrichmentFetch, err)
	}
	f.logger.Debug("fetched page", "url", url, "chars", len(text), "took", time.Since(start))
	return text, nil
}

// visibleText tokenizes HTML and joins its text nodes, skipping the
// contents of script, style, noscript and template elements.
func visibleText(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var (
		b       strings.Builder
		skipped int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return strings.Join(strings.Fields(b.String()), " "), nil
		case html.StartTagToken:
			if name, _ := z.TagName(); hidden(name) {
				skipped++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); hidden(name) && skipped > 0 {
				skipped--
			}
		case html.TextToken:
			if skipped == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func hidden(tag []byte) bool {
	switch string(tag) {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

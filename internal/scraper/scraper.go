package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/acta-lineup/internal/lineup"
	"github.com/pfrederiksen/acta-lineup/internal/logger"
)

const (
	// URLMarker must appear in every match report URL
	URLMarker      = "fcf.cat/acta"
	UserAgent      = "acta-lineup/1.0 (github.com/pfrederiksen/acta-lineup)"
	DefaultTimeout = 15 * time.Second
	MaxBodySize    = int64(5 * 1024 * 1024)
)

// Fetcher retrieves raw document bytes for a URL
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches documents over HTTP with a single timeout and no retries
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher. A zero timeout means DefaultTimeout and an
// empty user agent means UserAgent.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = UserAgent
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// FetchBytes performs a GET and returns the body. Transport errors, timeouts,
// non-2xx statuses and bodies over MaxBodySize are returned as *FetchError.
func (f *HTTPFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	// One byte past the cap tells a full-size page from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > MaxBodySize {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("response exceeds %d bytes", MaxBodySize)}
	}
	return body, nil
}

// ValidateURL rejects empty URLs and URLs that are not match reports
func ValidateURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return &InputError{Msg: "URL is required"}
	}
	if !strings.Contains(url, URLMarker) {
		return &InputError{Msg: "Invalid URL. Must be from " + URLMarker}
	}
	return nil
}

// Scraper runs the fetch -> parse -> extract -> validate pipeline
type Scraper struct {
	fetcher    Fetcher
	strategies []Strategy
	extractor  *Extractor
	log        *logger.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithFetcher replaces the default HTTP fetcher
func WithFetcher(f Fetcher) Option {
	return func(s *Scraper) {
		s.fetcher = f
	}
}

// WithLogger sets the logger used for pipeline diagnostics
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) {
		s.log = l
	}
}

// WithStrategies sets the extraction strategy chain
func WithStrategies(strategies ...Strategy) Option {
	return func(s *Scraper) {
		s.strategies = strategies
	}
}

// New creates a Scraper with an HTTP fetcher and the default strategies
func New(opts ...Option) *Scraper {
	s := &Scraper{log: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(DefaultTimeout, UserAgent)
	}
	s.extractor = NewExtractor(s.log, s.strategies...)
	return s
}

// FetchRoster validates the URL, fetches the document and extracts its roster.
// Errors match ErrInvalidInput, ErrNotFetchable or ErrUnrecognizedDocument.
func (s *Scraper) FetchRoster(ctx context.Context, url string) (*lineup.Roster, error) {
	if err := ValidateURL(url); err != nil {
		return nil, err
	}
	url = strings.TrimSpace(url)
	fields := logger.Fields{"url": url}

	start := time.Now()
	body, err := s.fetcher.FetchBytes(ctx, url)
	logger.RecordTiming("scrape.fetch", time.Since(start))
	if err != nil {
		if !errors.Is(err, ErrNotFetchable) {
			err = &FetchError{URL: url, Err: err}
		}
		logger.IncrCounter("scrape.fetch_failed")
		s.log.Warn("fetch failed", logger.Fields{"url": url, "error": err.Error()})
		return nil, err
	}

	roster, err := s.extractor.ExtractBytes(body)
	if err != nil {
		logger.IncrCounter("scrape.unrecognized")
		s.log.Warn("document not recognized", logger.Fields{"url": url, "bytes": len(body), "error": err.Error()})
		return nil, err
	}

	logger.IncrCounter("scrape.success")
	fields["home"] = roster.HomeTeam.Name
	fields["away"] = roster.AwayTeam.Name
	fields["players"] = len(roster.HomeTeam.Players) + len(roster.AwayTeam.Players)
	s.log.Info("roster extracted", fields)

	return roster, nil
}

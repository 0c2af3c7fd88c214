// Package culler finds dead links in a bar.
package culler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bars/internal/logging"
	"github.com/nikbrunner/bars/internal/model"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "ok"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check result for a single bookmark.
type Result struct {
	Bookmark   model.Bookmark
	Status     Status
	StatusCode int    // 0 if the connection failed
	Error      string // short reason for unreachable URLs
}

// Options tunes a check run.
type Options struct {
	Concurrency    int           // parallel requests, defaults to 8
	Timeout        time.Duration // per request, defaults to 10s
	ExcludeDomains []string      // 404s here mean "possibly private", not dead
	Client         *http.Client  // optional, for tests
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

// CheckURLs checks bookmark URLs concurrently. Results keep the input order.
// Cancelling ctx stops outstanding requests; their results are Unreachable.
func CheckURLs(ctx context.Context, bookmarks []model.Bookmark, opts Options, onProgress ProgressFunc) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	exclude := make(map[string]bool, len(opts.ExcludeDomains))
	for _, domain := range opts.ExcludeDomains {
		exclude[strings.ToLower(domain)] = true
	}

	logger := logging.FromContext(ctx)
	results := make([]Result, len(bookmarks))
	var progressMu sync.Mutex
	completed := 0

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range bookmarks {
		g.Go(func() error {
			results[i] = checkURL(ctx, client, bookmarks[i], exclude)
			logger.Debug().
				Str("url", bookmarks[i].URL).
				Stringer("status", results[i].Status).
				Int("code", results[i].StatusCode).
				Msg("checked")
			if onProgress != nil {
				progressMu.Lock()
				completed++
				onProgress(completed, len(bookmarks))
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// checkURL tries HEAD and falls back to GET for servers that reject HEAD.
func checkURL(ctx context.Context, client *http.Client, bookmark model.Bookmark, exclude map[string]bool) Result {
	result := Result{Bookmark: bookmark}

	resp, err := request(ctx, client, http.MethodHead, bookmark.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = request(ctx, client, http.MethodGet, bookmark.URL)
	}
	if err != nil {
		result.Status = Unreachable
		result.Error = normalizeError(err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isExcludedDomain(bookmark.URL, exclude) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 403, 5xx and friends may be temporary or need a login.
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}
	return result
}

func request(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// isExcludedDomain reports whether the URL's host is an excluded domain or
// a subdomain of one.
func isExcludedDomain(rawURL string, exclude map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for domain := range exclude {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError maps verbose transport errors to short categories.
func normalizeError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "unsupported protocol scheme"):
		return "Not a web URL"
	default:
		return err.Error()
	}
}

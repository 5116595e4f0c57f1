// Package scraper refreshes the flavor catalog from the shop's collection page.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	maxPageBytes = 8 << 20
)

var defaultBackoffs = []time.Duration{0, 500 * time.Millisecond, 1 * time.Second, 2 * time.Second}

// ---------- HTTP with retry ----------

// Fetcher performs GETs with a bounded retry on network errors, 5xx and 429.
type Fetcher struct {
	Client   *http.Client
	Backoffs []time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout, Transport: transport},
		Backoffs: defaultBackoffs,
	}
}

func (f *Fetcher) do(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	backoffs := f.Backoffs
	if len(backoffs) == 0 {
		backoffs = []time.Duration{0}
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for i, d := range backoffs {
		if d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", accept)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("server error: %s", resp.Status)
			if i < len(backoffs)-1 {
				continue
			}
			return nil, lastErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(b))
		}
		return resp, nil
	}
	return nil, lastErr
}

// Fetch returns the page body and the final URL after redirects, which is the
// base for relative links.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, *url.URL, error) {
	resp, err := f.do(ctx, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", nil, err
	}
	return string(b), resp.Request.URL, nil
}

// Download returns the body of rawURL.
func (f *Fetcher) Download(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.do(ctx, rawURL, "image/*,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}

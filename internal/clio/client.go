// Package clio fetches raw records from the practice-management API's
// collection endpoints and CSV report exports.
//
// The upstream response shape is not stable across deployments: report
// routes, date-range parameter names and pagination metadata all vary, so
// fetching is organized as ordered candidate lists consumed lazily with a
// short-circuit on first success.
package clio

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

const DefaultBaseURL = "https://app.clio.com/api/v4"

const (
	defaultTimeout  = 30 * time.Second
	defaultPageSize = 200
	// Hard cap on pages fetched per collection call. Upstream paging
	// metadata has been observed to lie; this keeps a bad total_pages from
	// turning into an unbounded loop.
	defaultMaxPages = 25
)

// RecordKind selects one of the upstream data categories.
type RecordKind string

const (
	KindTime         RecordKind = "time"
	KindRevenue      RecordKind = "revenue-payments"
	KindProductivity RecordKind = "productivity"
)

// DateRange bounds a fetch. Both ends are inclusive calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Options tune a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
	MaxPages int
}

// Client talks to the upstream API with bearer authentication supplied by an
// oauth2 token source.
type Client struct {
	baseURL  string
	http     *http.Client
	pageSize int
	maxPages int
}

// NewClient builds a Client around the given token source.
func NewClient(src oauth2.TokenSource, opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: src,
				Base:   pooledTransport(),
			},
		},
		pageSize: pageSize,
		maxPages: maxPages,
	}
}

// pooledTransport keeps connections warm across the burst of variant and
// pagination requests a single dashboard load produces.
func pooledTransport() *http.Transport {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

// FetchRecords fetches all raw records of a kind for the date range. Report
// exports are tried first; kinds without a report route go straight to the
// collection endpoints.
func (c *Client) FetchRecords(ctx context.Context, kind RecordKind, dr DateRange) ([]core.Record, error) {
	switch kind {
	case KindRevenue:
		return c.fetchReport(ctx, "revenue", revenueReportPaths, dr, revenueParamExtras)
	case KindProductivity:
		return c.fetchReport(ctx, "productivity", productivityReportPaths, dr, nil)
	case KindTime:
		return c.fetchReport(ctx, "time entries", timeEntriesReportPaths, dr, timeEntriesParamExtras)
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}

// get issues one GET and returns the body, converting non-2xx statuses to
// *StatusError. The caller decides whether a status is retryable.
func (c *Client) get(ctx context.Context, path string, params url.Values, accept string) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", u, err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", u, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        u,
			Body:       truncate(string(body), 200),
		}
	}
	return body, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

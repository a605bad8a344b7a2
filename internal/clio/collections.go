package clio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

// FetchTimeEntries reads the time_entries collection since the range start,
// with the user expanded so the name column survives normalization.
func (c *Client) FetchTimeEntries(ctx context.Context, dr DateRange) ([]core.Record, error) {
	return c.fetchCollection(ctx, "/time_entries.json", url.Values{
		"since":  {dr.Start.Format("2006-01-02")},
		"fields": {"user{id,name},date,quantity,price"},
	})
}

// FetchPaymentActivities reads payment-typed activities since the range start.
func (c *Client) FetchPaymentActivities(ctx context.Context, dr DateRange) ([]core.Record, error) {
	return c.fetchCollection(ctx, "/activities.json", url.Values{
		"since": {dr.Start.Format("2006-01-02")},
		"type":  {"Payment"},
	})
}

// FetchAllocations reads payment allocations for the range.
func (c *Client) FetchAllocations(ctx context.Context, dr DateRange) ([]core.Record, error) {
	return c.fetchCollection(ctx, "/allocations.json", url.Values{
		"start_date": {dr.Start.Format("2006-01-02")},
		"end_date":   {dr.End.Format("2006-01-02")},
	})
}

// fetchCollection pages through a JSON collection endpoint. Pagination is
// necessarily sequential: whether page N+1 exists depends on page N's size
// and metadata. The loop stops when a short page arrives, the reported
// total_pages is reached, or the safety cap trips.
func (c *Client) fetchCollection(ctx context.Context, path string, params url.Values) ([]core.Record, error) {
	var all []core.Record

	for page := 1; page <= c.maxPages; page++ {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.pageSize))

		body, err := c.get(ctx, path, q, "application/json")
		if err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", path, page, err)
		}

		records, meta, err := decodeEnvelope(body)
		if err != nil {
			return nil, fmt.Errorf("decode %s page %d: %w", path, page, err)
		}
		all = append(all, records...)

		if len(records) < c.pageSize {
			break
		}
		if meta.totalPages > 0 && page >= meta.totalPages {
			break
		}
	}

	slog.DebugContext(ctx, "Collection fetched", "path", path, "records", len(all))
	return all, nil
}

type pageMeta struct {
	totalPages int
}

// envelopeExtractors is the chain of known response-body shapes, tried in
// order. Different endpoints (and proxy layers in front of them) disagree on
// the envelope, so each extractor attempts one shape and falls through.
var envelopeExtractors = []func(raw json.RawMessage) ([]core.Record, bool){
	func(raw json.RawMessage) ([]core.Record, bool) { // {"data": [...]}
		var env struct {
			Data []core.Record `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
			return env.Data, true
		}
		return nil, false
	},
	func(raw json.RawMessage) ([]core.Record, bool) { // {"records": [...]}
		var env struct {
			Records []core.Record `json:"records"`
		}
		if err := json.Unmarshal(raw, &env); err == nil && env.Records != nil {
			return env.Records, true
		}
		return nil, false
	},
	func(raw json.RawMessage) ([]core.Record, bool) { // bare [...]
		var list []core.Record
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, true
		}
		return nil, false
	},
}

func decodeEnvelope(body []byte) ([]core.Record, pageMeta, error) {
	var meta pageMeta

	var metaEnv struct {
		Meta struct {
			Paging struct {
				TotalPages int `json:"total_pages"`
			} `json:"paging"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &metaEnv); err == nil {
		meta.totalPages = metaEnv.Meta.Paging.TotalPages
		if meta.totalPages == 0 {
			meta.totalPages = metaEnv.Meta.TotalPages
		}
	}

	for _, extract := range envelopeExtractors {
		if records, ok := extract(body); ok {
			return records, meta, nil
		}
	}
	return nil, meta, fmt.Errorf("unrecognized response envelope")
}

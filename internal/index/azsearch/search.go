package azsearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kailas-cloud/evidex/internal/index"
)

type searchRequest struct {
	Search                string        `json:"search,omitempty"`
	Filter                string        `json:"filter,omitempty"`
	Select                string        `json:"select,omitempty"`
	Top                   int           `json:"top,omitempty"`
	Count                 bool          `json:"count,omitempty"`
	QueryType             string        `json:"queryType,omitempty"`
	SemanticConfiguration string        `json:"semanticConfiguration,omitempty"`
	Captions              string        `json:"captions,omitempty"`
	VectorQueries         []vectorQuery `json:"vectorQueries,omitempty"`
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	K      int       `json:"k"`
	Fields string    `json:"fields"`
	Vector []float32 `json:"vector"`
}

type searchResponse struct {
	Count *int64           `json:"@odata.count"`
	Value []map[string]any `json:"value"`
}

// Search runs a keyword query.
func (c *Client) Search(ctx context.Context, q *index.TextQuery) (*index.Result, error) {
	return c.search(ctx, q.IndexName, searchRequest{
		Search:    q.SearchText,
		Filter:    q.Filter,
		Select:    strings.Join(q.Select, ","),
		Top:       q.Top,
		Count:     q.Count,
		QueryType: "simple",
	})
}

// SearchSemantic runs the index's semantic ranker with extractive captions.
func (c *Client) SearchSemantic(ctx context.Context, q *index.SemanticQuery) (*index.Result, error) {
	return c.search(ctx, q.IndexName, searchRequest{
		Search:                q.SearchText,
		Select:                strings.Join(q.Select, ","),
		Top:                   q.Top,
		QueryType:             "semantic",
		SemanticConfiguration: q.Configuration,
		Captions:              "extractive",
	})
}

// SearchVector runs nearest-neighbor search over a vector field.
func (c *Client) SearchVector(ctx context.Context, q *index.VectorQuery) (*index.Result, error) {
	return c.search(ctx, q.IndexName, searchRequest{
		Search: "*",
		Select: strings.Join(q.Select, ","),
		VectorQueries: []vectorQuery{{
			Kind:   "vector",
			K:      q.K,
			Fields: q.Fields,
			Vector: q.Vector,
		}},
	})
}

func (c *Client) search(ctx context.Context, indexName string, body searchRequest) (*index.Result, error) {
	if indexName == "" {
		return nil, &index.Error{Op: index.OpSearch, Err: fmt.Errorf("index name is required")}
	}

	var resp searchResponse
	if err := c.do(ctx, index.OpSearch, http.MethodPost, c.docsURL(indexName, "search"), body, &resp); err != nil {
		return nil, err
	}

	res := &index.Result{Hits: make([]index.Hit, 0, len(resp.Value))}
	for _, raw := range resp.Value {
		res.Hits = append(res.Hits, parseHit(raw))
	}
	if resp.Count != nil {
		res.Total = int(*resp.Count)
	} else {
		res.Total = len(res.Hits)
	}
	return res, nil
}

// parseHit splits a raw document into system fields and selected fields.
func parseHit(raw map[string]any) index.Hit {
	h := index.Hit{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case "@search.score":
			h.Score, _ = v.(float64)
		case "@search.rerankerScore":
			h.RerankerScore, _ = v.(float64)
		case "@search.captions":
			h.Captions = parseCaptions(v)
		default:
			if strings.HasPrefix(k, "@") {
				continue
			}
			h.Fields[k] = v
		}
	}
	return h
}

func parseCaptions(v any) []index.Caption {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	captions := make([]index.Caption, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var c index.Caption
		c.Text, _ = m["text"].(string)
		c.Highlights, _ = m["highlights"].(string)
		captions = append(captions, c)
	}
	return captions
}

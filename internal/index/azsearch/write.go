package azsearch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/evidex/internal/index"
)

type indexBatchRequest struct {
	Value []map[string]any `json:"value"`
}

type indexBatchResponse struct {
	Value []struct {
		Key          string `json:"key"`
		Succeeded    bool   `json:"status"`
		StatusCode   int    `json:"statusCode"`
		ErrorMessage string `json:"errorMessage"`
	} `json:"value"`
}

// Apply submits a batch of document actions to the index.
func (c *Client) Apply(ctx context.Context, indexName string, actions []index.Action) ([]index.ActionResult, error) {
	if indexName == "" {
		return nil, &index.Error{Op: index.OpApply, Err: fmt.Errorf("index name is required")}
	}
	if len(actions) == 0 {
		return nil, nil
	}

	body := indexBatchRequest{Value: make([]map[string]any, 0, len(actions))}
	for _, a := range actions {
		doc := make(map[string]any, len(a.Doc)+1)
		for k, v := range a.Doc {
			doc[k] = v
		}
		doc["@search.action"] = string(a.Type)
		body.Value = append(body.Value, doc)
	}

	var resp indexBatchResponse
	if err := c.do(ctx, index.OpApply, http.MethodPost, c.docsURL(indexName, "index"), body, &resp); err != nil {
		return nil, err
	}

	results := make([]index.ActionResult, 0, len(resp.Value))
	for _, v := range resp.Value {
		results = append(results, index.ActionResult{
			Key:        v.Key,
			Succeeded:  v.Succeeded,
			StatusCode: v.StatusCode,
			Message:    v.ErrorMessage,
		})
	}
	return results, nil
}

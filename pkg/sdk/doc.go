// Package evidex provides an embeddable Go client for the evidence search
// service: the same search, ingestion, and lifecycle operations the HTTP
// API exposes, wired in-process against the search index and object store.
//
//	client, _ := evidex.New(ctx,
//	    evidex.WithSearchService("https://svc.search.windows.net", apiKey),
//	    evidex.WithRedis("localhost:6379", ""),
//	)
//	defer client.Close()
//
//	results, _ := client.Search().Query(ctx, evidex.SearchRequest{
//	    SearchText: "youth literacy",
//	    Domain:     "education",
//	})
//
// The object store and model provider are optional: without
// WithObjectStore the document lifecycle operations return an error,
// without WithOpenAI vector search and metadata extraction do.
package evidex

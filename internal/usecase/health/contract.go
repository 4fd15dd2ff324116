package health

import "context"

// IndexPinger checks search index service availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

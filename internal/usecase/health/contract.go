package health

import "context"

// StorePinger checks cache/rate-limit store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// SearchPinger checks search engine availability.
type SearchPinger interface {
	Ping(ctx context.Context) error
}

package answer

import (
	"context"

	"github.com/contractops/slaquery/internal/domain"
)

// Generator produces a completion for one system+user prompt pair.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, domain.TokenUsage, error)
}

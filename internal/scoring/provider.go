// Package scoring supplies the external per-bar signal score consumed by the
// score threshold policy. The engine treats the score as opaque.
package scoring

import (
	"context"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Provider returns one scalar score for a bar given its feature vector.
// Implementations must be safe for concurrent use; the optimizer shares one
// provider across parallel runs.
type Provider interface {
	Score(ctx context.Context, bar types.Bar, features []float64) (float64, error)
}

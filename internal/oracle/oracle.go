// Package oracle is the boundary to the external scoring models. The core
// treats them as opaque: two synchronous calls per observation, no retry,
// and any failure drops that single observation.
package oracle

import (
	"context"

	"github.com/organ-c/storepulse/internal/observation"
	"github.com/organ-c/storepulse/internal/risk"
)

type Oracle interface {
	// Assess returns the anomaly verdict for one observation.
	Assess(ctx context.Context, obs observation.Observation) (risk.Assessment, error)
	// Cluster returns the behavioral cluster id for one observation.
	Cluster(ctx context.Context, obs observation.Observation) (int, error)
}

// Package predictor defines the pluggable backend contract the router
// dispatches to, and the draft result each backend produces before the
// router stamps elapsed time and caches it.
package predictor

import (
	"context"

	"github.com/aetherime/aetherime/pkg/protocol"
)

// Draft is an engine's raw prediction output, before the router adds
// timing and inserts it into the cache.
type Draft struct {
	GhostText  string
	Candidates []string
	Confidence float64
	Source     protocol.Source
}

// Engine is implemented by every predictor backend: the heuristic, the
// local model runner, and the remote host. Each engine is used both as a
// possible primary and, in the heuristic's case, as the universal
// fallback when a primary engine errors.
type Engine interface {
	Predict(ctx context.Context, req protocol.PredictRequest, mode protocol.Mode) (Draft, error)
}

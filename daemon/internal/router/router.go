// Package router implements the prediction request dispatcher: mode
// normalization and coercion, primary/fallback backend dispatch, latency
// measurement, and the insertion-ordered result cache.
package router

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aetherime/aetherime/internal/predictor"
	"github.com/aetherime/aetherime/pkg/protocol"
)

// Router holds a primary engine (which may equal the fallback), a
// heuristic fallback, a default mode, an enabled flag, and the result
// cache. It is safe for concurrent use by any number of daemon
// connections.
type Router struct {
	primary     predictor.Engine
	fallback    predictor.Engine
	defaultMode protocol.Mode
	enabled     bool
	cache       *cache
}

// New constructs a Router. primary may be the same value as fallback.
func New(primary, fallback predictor.Engine, defaultMode protocol.Mode, enabled bool, cacheCapacity int) *Router {
	return &Router{
		primary:     primary,
		fallback:    fallback,
		defaultMode: defaultMode,
		enabled:     enabled,
		cache:       newCache(cacheCapacity),
	}
}

func emptyResponse(source protocol.Source) protocol.PredictResponse {
	return protocol.PredictResponse{
		GhostText:  "",
		Candidates: []string{},
		Confidence: 0,
		Source:     source,
		ElapsedMs:  0,
	}
}

// Predict runs the full router pipeline described in §4.5: disabled
// short-circuit, field normalization, effective-mode coercion, cache
// lookup, primary-with-fallback dispatch, and cache insertion.
func (r *Router) Predict(ctx context.Context, req protocol.PredictRequest) protocol.PredictResponse {
	if !r.enabled {
		return emptyResponse(protocol.SourceLocalNext)
	}

	if req.MaxTokens == 0 {
		req.MaxTokens = protocol.DefaultMaxTokens
	}
	if req.LatencyBudgetMs == 0 {
		req.LatencyBudgetMs = protocol.DefaultLatencyBudgetMs
	}

	if strings.TrimSpace(req.Prefix) == "" {
		return emptyResponse(protocol.SourceLocalNext)
	}

	mode := effectiveMode(req)

	key := keyFor(req, mode)
	if hit, ok := r.cache.get(key); ok {
		return hit
	}

	start := time.Now()
	draft, err := r.primary.Predict(ctx, req, mode)
	if err != nil {
		slog.Warn("primary predictor failed, falling back to heuristic", "error", err)
		draft, err = r.fallback.Predict(ctx, req, mode)
		if err != nil {
			slog.Warn("fallback predictor failed", "error", err)
			draft = predictor.Draft{Candidates: []string{}, Source: sourceForMode(mode)}
		}
	}
	elapsed := time.Since(start)

	resp := protocol.PredictResponse{
		GhostText:  draft.GhostText,
		Candidates: draft.Candidates,
		Confidence: draft.Confidence,
		Source:     draft.Source,
		ElapsedMs:  uint64(elapsed.Milliseconds()),
	}
	if resp.Candidates == nil {
		resp.Candidates = []string{}
	}

	r.cache.insert(key, resp)
	return resp
}

// effectiveMode applies the wire default (an absent mode field means fim,
// per §6) and then coerces a fim request with an empty-trimmed suffix down
// to next. The daemon's configured default_mode does not influence this
// coercion; see §9 open question (1) and DESIGN.md.
func effectiveMode(req protocol.PredictRequest) protocol.Mode {
	mode := req.Mode
	if mode == "" {
		mode = protocol.ModeFim
	}
	if mode == protocol.ModeFim && strings.TrimSpace(req.Suffix) == "" {
		return protocol.ModeNext
	}
	return mode
}

func sourceForMode(mode protocol.Mode) protocol.Source {
	if mode == protocol.ModeFim {
		return protocol.SourceLocalFim
	}
	return protocol.SourceLocalNext
}

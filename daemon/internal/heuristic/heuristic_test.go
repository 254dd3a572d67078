package heuristic

import (
	"context"
	"testing"

	"github.com/aetherime/aetherime/pkg/protocol"
)

func TestPredictNextZhTriggerMatch(t *testing.T) {
	e := New()
	draft, err := e.Predict(context.Background(), protocol.PredictRequest{
		Prefix:   "你好",
		Language: protocol.LanguageZh,
	}, protocol.ModeNext)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if draft.GhostText != "，很高兴见到你" {
		t.Fatalf("ghost_text = %q, want 你好 continuation", draft.GhostText)
	}
	if draft.Confidence != confidenceNext || draft.Source != protocol.SourceLocalNext {
		t.Fatalf("got confidence=%v source=%v", draft.Confidence, draft.Source)
	}
}

func TestPredictNextZhSpecialEndingFallback(t *testing.T) {
	e := New()
	draft, _ := e.Predict(context.Background(), protocol.PredictRequest{
		Prefix:   "我",
		Language: protocol.LanguageZh,
	}, protocol.ModeNext)
	if draft.GhostText != "们" {
		t.Fatalf("ghost_text = %q, want 们 from the special-ending table", draft.GhostText)
	}
}

func TestPredictNextEnTriggerMatch(t *testing.T) {
	e := New()
	draft, _ := e.Predict(context.Background(), protocol.PredictRequest{
		Prefix:   "Thank you for",
		Language: protocol.LanguageEn,
	}, protocol.ModeNext)
	if draft.GhostText != " your help" {
		t.Fatalf("ghost_text = %q, want ' your help'", draft.GhostText)
	}
	if len(draft.Candidates) != 3 {
		t.Fatalf("candidates = %v, want ghost + 2 canned", draft.Candidates)
	}
}

func TestPredictNextNoMatchReturnsEmptyGhostWithConfidence(t *testing.T) {
	e := New()
	draft, _ := e.Predict(context.Background(), protocol.PredictRequest{
		Prefix:   "completely unrelated text",
		Language: protocol.LanguageEn,
	}, protocol.ModeNext)
	if draft.GhostText != "" {
		t.Fatalf("ghost_text = %q, want empty", draft.GhostText)
	}
	if len(draft.Candidates) != 0 {
		t.Fatalf("candidates = %v, want empty", draft.Candidates)
	}
	if draft.Confidence != confidenceNext {
		t.Fatalf("confidence = %v, want %v even on no match", draft.Confidence, confidenceNext)
	}
}

func TestPredictFimZhPatternMatch(t *testing.T) {
	e := New()
	draft, _ := e.Predict(context.Background(), protocol.PredictRequest{
		Prefix:   "我",
		Suffix:   "吃饭",
		Language: protocol.LanguageZh,
		Mode:     protocol.ModeFim,
	}, protocol.ModeFim)
	if draft.GhostText != "们一起去" {
		t.Fatalf("ghost_text = %q, want 们一起去", draft.GhostText)
	}
	if draft.Source != protocol.SourceLocalFim || draft.Confidence != confidenceFim {
		t.Fatalf("got source=%v confidence=%v", draft.Source, draft.Confidence)
	}
}

func TestPredictFimEnFallbackWhenNoPatternMatches(t *testing.T) {
	e := New()
	draft, _ := e.Predict(context.Background(), protocol.PredictRequest{
		Prefix:   "nothing matches here",
		Suffix:   "either",
		Language: protocol.LanguageEn,
		Mode:     protocol.ModeFim,
	}, protocol.ModeFim)
	if draft.GhostText != " " {
		t.Fatalf("ghost_text = %q, want the single-space en fallback", draft.GhostText)
	}
	if len(draft.Candidates) != 0 {
		t.Fatalf("candidates = %v, want empty for a blank fallback", draft.Candidates)
	}
}

func TestPredictFimZhFallbackWhenNoPatternMatches(t *testing.T) {
	e := New()
	draft, _ := e.Predict(context.Background(), protocol.PredictRequest{
		Prefix:   "nothing",
		Suffix:   "matches",
		Language: protocol.LanguageZh,
		Mode:     protocol.ModeFim,
	}, protocol.ModeFim)
	if draft.GhostText != "先" {
		t.Fatalf("ghost_text = %q, want the zh fallback 先", draft.GhostText)
	}
	if len(draft.Candidates) != 1 {
		t.Fatalf("candidates = %v, want [先]", draft.Candidates)
	}
}

func TestPredictNeverErrors(t *testing.T) {
	e := New()
	if _, err := e.Predict(context.Background(), protocol.PredictRequest{}, protocol.ModeNext); err != nil {
		t.Fatalf("heuristic engine must never error, got %v", err)
	}
}

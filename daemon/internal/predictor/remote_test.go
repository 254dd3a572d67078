package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aetherime/aetherime/internal/config"
	"github.com/aetherime/aetherime/pkg/protocol"
)

func TestNewRemoteHostRequiresHostAndModel(t *testing.T) {
	if _, err := NewRemoteHost(&config.ModelConfig{OllamaModel: "m"}); err == nil {
		t.Fatal("expected error for missing ollama_host")
	}
	if _, err := NewRemoteHost(&config.ModelConfig{OllamaHost: "http://x"}); err == nil {
		t.Fatal("expected error for missing ollama_model")
	}
}

func TestRemoteHostPredictSanitizesOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{
				"role":    "assistant",
				"content": "我今天心情很好，今天天气也不错",
			},
		})
	}))
	defer srv.Close()

	rh, err := NewRemoteHost(&config.ModelConfig{OllamaHost: srv.URL, OllamaModel: "test-model"})
	if err != nil {
		t.Fatalf("NewRemoteHost: %v", err)
	}

	req := protocol.PredictRequest{
		Prefix: "我今天",
		Suffix: "很好",
		Mode:   protocol.ModeFim,
	}
	draft, err := rh.Predict(context.Background(), req, protocol.ModeFim)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if draft.GhostText != "心情" {
		t.Fatalf("ghost_text = %q, want 心情", draft.GhostText)
	}
	if draft.Source != protocol.SourceLocalFim {
		t.Fatalf("source = %v, want local_fim", draft.Source)
	}
}

func TestRemoteHostPredictErrorsOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	rh, _ := NewRemoteHost(&config.ModelConfig{OllamaHost: srv.URL, OllamaModel: "test-model"})
	_, err := rh.Predict(context.Background(), protocol.PredictRequest{Prefix: "hi"}, protocol.ModeNext)
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestRemoteHostPredictErrorsOnEmptySanitizedOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "```\n```"},
		})
	}))
	defer srv.Close()

	rh, _ := NewRemoteHost(&config.ModelConfig{OllamaHost: srv.URL, OllamaModel: "test-model"})
	_, err := rh.Predict(context.Background(), protocol.PredictRequest{Prefix: "hi"}, protocol.ModeNext)
	if err == nil {
		t.Fatal("expected error on empty sanitized output")
	}
}

func TestSanitizeOutputIsIdempotent(t *testing.T) {
	req := protocol.PredictRequest{Prefix: "我今天", Suffix: "很好"}
	once := sanitizeOutput("我今天心情很好，今天天气也不错", req)
	twice := sanitizeOutput(once, req)
	if once != twice {
		t.Fatalf("sanitizeOutput not idempotent: %q then %q", once, twice)
	}
}

func TestSanitizeOutputStripsBackticksAndQuotes(t *testing.T) {
	req := protocol.PredictRequest{}
	got := sanitizeOutput("`\"hello world\"`", req)
	if got != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestSanitizeOutputTruncatesAtNewline(t *testing.T) {
	req := protocol.PredictRequest{}
	got := sanitizeOutput("first line\nsecond line", req)
	if got != "first line" {
		t.Fatalf("got %q, want %q", got, "first line")
	}
}

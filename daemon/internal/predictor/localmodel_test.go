package predictor

import (
	"testing"

	"github.com/aetherime/aetherime/internal/config"
)

func TestNewLocalModelRequiresModelPath(t *testing.T) {
	if _, err := NewLocalModel(&config.ModelConfig{}); err == nil {
		t.Fatal("expected error for missing model_path")
	}
}

func TestNewLocalModelDefaultsCliPath(t *testing.T) {
	lm, err := NewLocalModel(&config.ModelConfig{ModelPath: "/models/tiny.gguf"})
	if err != nil {
		t.Fatalf("NewLocalModel: %v", err)
	}
	if lm.cliPath != "llama-cli" {
		t.Fatalf("cliPath = %q, want default llama-cli", lm.cliPath)
	}
}

func TestNewLocalModelHonorsConfiguredCliPath(t *testing.T) {
	lm, err := NewLocalModel(&config.ModelConfig{ModelPath: "/models/tiny.gguf", LlamaCliPath: "/usr/local/bin/llama-cli"})
	if err != nil {
		t.Fatalf("NewLocalModel: %v", err)
	}
	if lm.cliPath != "/usr/local/bin/llama-cli" {
		t.Fatalf("cliPath = %q, want configured path", lm.cliPath)
	}
}

func TestFimPromptWrapsPrefixAndSuffix(t *testing.T) {
	got := fimPrompt("hello ", " world")
	want := "<fim_prefix>hello <fim_suffix> world<fim_middle>"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNextPromptIsThePrefixUnchanged(t *testing.T) {
	if got := nextPrompt("hello there"); got != "hello there" {
		t.Fatalf("got %q, want passthrough", got)
	}
}

func TestFirstNonEmptyTrimmedLineSkipsBlankLines(t *testing.T) {
	got := firstNonEmptyTrimmedLine("\n\n   \n  hello world  \nsecond line\n")
	if got != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestFirstNonEmptyTrimmedLineEmptyInput(t *testing.T) {
	if got := firstNonEmptyTrimmedLine("   \n\n"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

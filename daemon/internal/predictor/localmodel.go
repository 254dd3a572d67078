package predictor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aetherime/aetherime/internal/config"
	"github.com/aetherime/aetherime/pkg/protocol"
)

const localConfidence = 0.66

// LocalModel invokes an external CLI model runner (e.g. llama-cli) as a
// subprocess for each request. The concrete process arguments are the
// narrow collaborator boundary the daemon core depends on; this struct
// only shapes the prompt and reads the first non-empty line of stdout.
type LocalModel struct {
	cliPath     string
	modelPath   string
	ctxLen      int
	temperature float64
	topP        float64
}

// NewLocalModel returns a LocalModel runner, or an error if modelPath is
// unset (the daemon demotes to the heuristic in that case; see buildRouter
// in cmd/aetherimed).
func NewLocalModel(cfg *config.ModelConfig) (*LocalModel, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model.model_path is not configured")
	}
	cliPath := cfg.LlamaCliPath
	if cliPath == "" {
		cliPath = "llama-cli"
	}
	return &LocalModel{
		cliPath:     cliPath,
		modelPath:   cfg.ModelPath,
		ctxLen:      cfg.CtxLen,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}, nil
}

// Predict implements predictor.Engine.
func (m *LocalModel) Predict(ctx context.Context, req protocol.PredictRequest, mode protocol.Mode) (Draft, error) {
	prompt := nextPrompt(req.Prefix)
	source := protocol.SourceLocalNext
	if mode == protocol.ModeFim {
		prompt = fimPrompt(req.Prefix, req.Suffix)
		source = protocol.SourceLocalFim
	}

	budget := time.Duration(req.LatencyBudgetMs) * time.Millisecond
	if budget <= 0 {
		budget = protocol.DefaultLatencyBudgetMs * time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = protocol.DefaultMaxTokens
	}

	args := []string{
		"-m", m.modelPath,
		"-n", strconv.Itoa(int(maxTokens)),
		"-c", strconv.Itoa(m.ctxLen),
		"--temp", strconv.FormatFloat(m.temperature, 'f', -1, 64),
		"--top-p", strconv.FormatFloat(m.topP, 'f', -1, 64),
		"-p", prompt,
	}

	cmd := exec.CommandContext(runCtx, m.cliPath, args...)
	out, err := cmd.Output()
	if err != nil {
		return Draft{}, fmt.Errorf("local model runner: %w", err)
	}

	ghost := firstNonEmptyTrimmedLine(string(out))
	if ghost == "" {
		return Draft{}, errors.New("local model runner: empty output")
	}

	return Draft{
		GhostText:  ghost,
		Candidates: []string{ghost},
		Confidence: localConfidence,
		Source:     source,
	}, nil
}

func nextPrompt(prefix string) string {
	return prefix
}

func fimPrompt(prefix, suffix string) string {
	return "<fim_prefix>" + prefix + "<fim_suffix>" + suffix + "<fim_middle>"
}

func firstNonEmptyTrimmedLine(s string) string {
	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line
		}
	}
	return ""
}

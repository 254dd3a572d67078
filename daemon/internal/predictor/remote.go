package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aetherime/aetherime/internal/config"
	"github.com/aetherime/aetherime/pkg/protocol"
)

const (
	remoteConfidence = 0.71
	systemInstruction = "You are a ghost-text completion engine for a text editor. " +
		"Continue the user's text naturally and concisely. Output only the continuation, nothing else."
)

// RemoteHost posts chat completions to an HTTP model host (e.g. Ollama).
// The HTTP request/response shape itself is the narrow collaborator
// boundary the daemon core depends on; everything past the raw message
// content is this package's concern (sanitization, source tagging).
type RemoteHost struct {
	host        string
	model       string
	temperature float64
	topP        float64
	client      *http.Client
}

// NewRemoteHost returns a RemoteHost, or an error if host or model is unset.
func NewRemoteHost(cfg *config.ModelConfig) (*RemoteHost, error) {
	if cfg.OllamaHost == "" {
		return nil, errors.New("model.ollama_host is not configured")
	}
	if cfg.OllamaModel == "" {
		return nil, errors.New("model.ollama_model is not configured")
	}
	return &RemoteHost{
		host:        cfg.OllamaHost,
		model:       cfg.OllamaModel,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Messages []chatMessage `json:"messages"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Predict implements predictor.Engine.
func (r *RemoteHost) Predict(ctx context.Context, req protocol.PredictRequest, mode protocol.Mode) (Draft, error) {
	source := protocol.SourceLocalNext
	if mode == protocol.ModeFim {
		source = protocol.SourceLocalFim
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = protocol.DefaultMaxTokens
	}
	numPredict := int(maxTokens)
	if numPredict < 1 {
		numPredict = 1
	}

	reqBody := chatRequest{
		Model:  r.model,
		Stream: false,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: r.userPrompt(req, mode)},
		},
		Options: chatOptions{
			Temperature: r.temperature,
			TopP:        r.topP,
			NumPredict:  numPredict,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return Draft{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", r.host+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return Draft{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return Draft{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Draft{}, err
	}
	if resp.StatusCode != 200 {
		return Draft{}, fmt.Errorf("remote host error (status %d): %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Draft{}, fmt.Errorf("remote host: failed to parse response: %w", err)
	}

	ghost := sanitizeOutput(result.Message.Content, req)
	if ghost == "" {
		return Draft{}, errors.New("remote host: empty sanitized output")
	}

	return Draft{
		GhostText:  ghost,
		Candidates: []string{ghost},
		Confidence: remoteConfidence,
		Source:     source,
	}, nil
}

func (r *RemoteHost) userPrompt(req protocol.PredictRequest, mode protocol.Mode) string {
	var sb strings.Builder
	sb.WriteString("language: ")
	sb.WriteString(string(req.Language))
	sb.WriteString("\n")
	sb.WriteString(req.Prefix)
	if mode == protocol.ModeFim && req.Suffix != "" {
		sb.WriteString("\n[suffix]: ")
		sb.WriteString(req.Suffix)
	}
	return sb.String()
}

// sanitizeOutput implements the §4.4 sanitization pipeline:
//  1. trim, strip surrounding backticks/quotes, re-trim
//  2. strip the request prefix if the text begins with it byte-exact
//  3. truncate at the first occurrence of the request suffix, if non-empty
//  4. truncate at the first newline
//  5. final trim
//
// The steps are repeated until a pass leaves the text unchanged, so the
// result is idempotent for a fixed (prefix, suffix). Every pass that
// changes the text shortens it, so the loop terminates.
func sanitizeOutput(text string, req protocol.PredictRequest) string {
	s := text
	for {
		prev := s
		s = strings.TrimSpace(s)
		s = strings.Trim(s, "`\"'")
		s = strings.TrimSpace(s)

		if req.Prefix != "" && strings.HasPrefix(s, req.Prefix) {
			s = s[len(req.Prefix):]
		}

		if req.Suffix != "" {
			if idx := strings.Index(s, req.Suffix); idx >= 0 {
				s = s[:idx]
			}
		}

		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[:idx]
		}

		s = strings.TrimSpace(s)
		if s == prev {
			return s
		}
	}
}

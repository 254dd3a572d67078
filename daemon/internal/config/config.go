// Package config loads the prediction daemon's TOML configuration, with
// every section optional and defaulted, per the daemon's external
// configuration contract.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the daemon's full configuration. All sections are optional;
// Load fills in any missing section with its documented default.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Predict  PredictConfig  `toml:"predict"`
	Model    ModelConfig    `toml:"model"`
	Privacy  PrivacyConfig  `toml:"privacy"`
	UI       UIConfig       `toml:"ui"`
	Hotkey   HotkeyConfig   `toml:"hotkey"`
}

type ServerConfig struct {
	SocketPath       string `toml:"socket_path"`
	RequestTimeoutMs uint64 `toml:"request_timeout_ms"`
}

type PredictConfig struct {
	Enable         bool   `toml:"enable"`
	TriggerDelayMs uint64 `toml:"trigger_delay_ms"`
	MaxTokens      uint32 `toml:"max_tokens"`
	CacheCapacity  int    `toml:"cache_capacity"`
}

// Backend names the predictor implementation the router should dispatch
// to as its primary engine.
type Backend string

const (
	BackendHeuristic Backend = "heuristic"
	BackendLlamaCpp  Backend = "llamacpp"
	BackendOllama    Backend = "ollama"
)

type ModelConfig struct {
	Backend      Backend  `toml:"backend"`
	Mode         string   `toml:"mode"`
	ModelPath    string   `toml:"model_path"`
	OllamaHost   string   `toml:"ollama_host"`
	OllamaModel  string   `toml:"ollama_model"`
	CtxLen       int      `toml:"ctx_len"`
	Temperature  float64  `toml:"temperature"`
	TopP         float64  `toml:"top_p"`
	LlamaCliPath string   `toml:"llama_cli_path"`
}

type PrivacyConfig struct {
	LocalOnly     bool   `toml:"local_only"`
	CloudEndpoint string `toml:"cloud_endpoint"`
}

// UIConfig and HotkeyConfig are opaque to the daemon core; they are
// loaded and round-tripped for the front-end's benefit only.
type UIConfig struct {
	Theme string `toml:"theme"`
}

type HotkeyConfig struct {
	Accept       string `toml:"accept"`
	TogglePredict string `toml:"toggle_predict"`
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			SocketPath:       "/tmp/aetherime.sock",
			RequestTimeoutMs: 120,
		},
		Predict: PredictConfig{
			Enable:         true,
			TriggerDelayMs: 35,
			MaxTokens:      12,
			CacheCapacity:  512,
		},
		Model: ModelConfig{
			Backend:      BackendHeuristic,
			Mode:         "fim",
			OllamaHost:   "http://127.0.0.1:11434",
			CtxLen:       1024,
			Temperature:  0.2,
			TopP:         0.9,
			LlamaCliPath: "llama-cli",
		},
		Privacy: PrivacyConfig{
			LocalOnly: true,
		},
		UI: UIConfig{
			Theme: "deep-ocean",
		},
		Hotkey: HotkeyConfig{
			Accept:        "Tab",
			TogglePredict: "Ctrl+;",
		},
	}
}

// Path resolves the configuration file path.
// Priority: $AETHERIME_CONFIG > ~/.config/aetherime/config.toml.
func Path() string {
	if p := os.Getenv("AETHERIME_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "aetherime-config", "config.toml")
	}
	return filepath.Join(home, ".config", "aetherime", "config.toml")
}

// Load reads the configuration file at Path(), applying defaults for any
// field the file leaves unset. A missing file is not an error: it yields
// the full default configuration.
func Load() (*Config, error) {
	path := Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

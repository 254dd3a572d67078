// Package ipc implements the prediction daemon's Unix domain socket
// server: line-framed JSON request/response, per-request timeout racing,
// and config introspection actions alongside predict/ping.
package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/aetherime/aetherime/internal/config"
	"github.com/aetherime/aetherime/internal/router"
	"github.com/aetherime/aetherime/pkg/protocol"
)

// RouterBuilder constructs a fresh router and the config it was built
// from. The daemon calls it once at startup and again on every
// "config_reload" request.
type RouterBuilder func() (*router.Router, *config.Config, error)

// Server listens on a Unix domain socket for daemon requests.
type Server struct {
	listener net.Listener
	sockPath string
	build    RouterBuilder

	mu               sync.RWMutex
	router           *router.Router
	cfg              *config.Config
	requestTimeoutMs uint64
}

// NewServer binds sockPath (creating its parent directory and removing
// any stale socket file first) and builds the initial router via build.
func NewServer(sockPath string, build RouterBuilder) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(sockPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}

	r, cfg, err := build()
	if err != nil {
		listener.Close()
		return nil, err
	}

	return &Server{
		listener:         listener,
		sockPath:         sockPath,
		build:            build,
		router:           r,
		cfg:              cfg,
		requestTimeoutMs: cfg.Server.RequestTimeoutMs,
	}, nil
}

// Addr returns the server's bound socket address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections indefinitely, handling each on its own
// goroutine against the shared router.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() error {
	err := s.listener.Close()
	os.Remove(s.sockPath)
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := bytesTrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req protocol.DaemonRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, protocol.DaemonResponse{
				Type:  protocol.ResponseError,
				Error: &protocol.ErrorBody{Code: protocol.ErrInvalidRequest, Message: err.Error()},
			})
			continue
		}

		resp := s.dispatch(&req)
		s.writeResponse(conn, resp)
	}
}

func (s *Server) dispatch(req *protocol.DaemonRequest) protocol.DaemonResponse {
	switch req.Type {
	case protocol.RequestPing:
		return protocol.DaemonResponse{ID: req.ID, Type: protocol.ResponsePong}

	case protocol.RequestPredict:
		return s.dispatchPredict(req)

	case protocol.RequestConfigGet:
		s.mu.RLock()
		cfg := s.cfg
		s.mu.RUnlock()
		return protocol.DaemonResponse{ID: req.ID, Type: protocol.ResponseConfig, Config: cfg}

	case protocol.RequestConfigDefaults:
		return protocol.DaemonResponse{ID: req.ID, Type: protocol.ResponseConfig, Config: config.Default()}

	case protocol.RequestConfigValidate:
		s.mu.RLock()
		cfg := s.cfg
		s.mu.RUnlock()
		return protocol.DaemonResponse{ID: req.ID, Type: protocol.ResponseConfig, Config: validate(cfg)}

	case protocol.RequestConfigReload:
		s.reload()
		s.mu.RLock()
		cfg := s.cfg
		s.mu.RUnlock()
		return protocol.DaemonResponse{ID: req.ID, Type: protocol.ResponseConfig, Config: cfg}

	default:
		return protocol.DaemonResponse{
			ID:   req.ID,
			Type: protocol.ResponseError,
			Error: &protocol.ErrorBody{
				Code:    protocol.ErrInvalidRequest,
				Message: "unknown request type: " + string(req.Type),
			},
		}
	}
}

func (s *Server) dispatchPredict(req *protocol.DaemonRequest) protocol.DaemonResponse {
	s.mu.RLock()
	r := s.router
	serverTimeout := s.requestTimeoutMs
	s.mu.RUnlock()

	effectiveMs := serverTimeout
	if req.LatencyBudgetMs > effectiveMs {
		effectiveMs = req.LatencyBudgetMs
	}
	if effectiveMs < 1 {
		effectiveMs = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(effectiveMs)*time.Millisecond)
	defer cancel()

	done := make(chan protocol.PredictResponse, 1)
	go func() {
		done <- r.Predict(ctx, req.PredictRequest)
	}()

	select {
	case resp := <-done:
		return protocol.DaemonResponse{ID: req.ID, Type: protocol.ResponsePredict, PredictResponse: &resp}
	case <-ctx.Done():
		return protocol.DaemonResponse{
			ID:   req.ID,
			Type: protocol.ResponseError,
			Error: &protocol.ErrorBody{
				Code:    protocol.ErrTimeout,
				Message: "prediction exceeded " + strconv.FormatUint(effectiveMs, 10) + "ms",
			},
		}
	}
}

// reload rebuilds the router from the on-disk config and swaps it in
// under the write lock. A failed reload leaves the running router and
// config untouched.
func (s *Server) reload() {
	r, cfg, err := s.build()
	if err != nil {
		slog.Error("config reload failed", "error", err)
		return
	}
	s.mu.Lock()
	s.router = r
	s.cfg = cfg
	s.requestTimeoutMs = cfg.Server.RequestTimeoutMs
	s.mu.Unlock()
	slog.Info("router reloaded")
}

func (s *Server) writeResponse(conn net.Conn, resp protocol.DaemonResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		return
	}
	conn.Write(append(data, '\n'))
}

// validate returns human-readable configuration warnings. It never
// errors; an invalid backend configuration is a running-degraded state,
// not a daemon-fatal one, since the router already demotes to heuristic.
func validate(cfg *config.Config) []string {
	var warnings []string
	if cfg.Model.Backend == config.BackendLlamaCpp && cfg.Model.ModelPath == "" {
		warnings = append(warnings, "model.backend is llamacpp but model.model_path is empty; falling back to heuristic")
	}
	if cfg.Model.Backend == config.BackendOllama && (cfg.Model.OllamaHost == "" || cfg.Model.OllamaModel == "") {
		warnings = append(warnings, "model.backend is ollama but ollama_host/ollama_model is empty; falling back to heuristic")
	}
	if warnings == nil {
		warnings = []string{}
	}
	return warnings
}

func bytesTrimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpaceByte(b[start]) {
		start++
	}
	for end > start && isSpaceByte(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

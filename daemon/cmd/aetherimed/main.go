// Command aetherimed is the prediction daemon. It listens on a Unix
// domain socket for predict/ping/config requests from the input method
// front end, dispatching each predict request to a configured backend
// (heuristic, a local llama.cpp-style subprocess, or a remote Ollama-style
// HTTP host) with a heuristic fallback on backend failure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/aetherime/aetherime/internal/config"
	"github.com/aetherime/aetherime/internal/heuristic"
	"github.com/aetherime/aetherime/internal/ipc"
	"github.com/aetherime/aetherime/internal/predictor"
	"github.com/aetherime/aetherime/internal/router"
	"github.com/aetherime/aetherime/pkg/protocol"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *showVersion {
		fmt.Println("aetherimed", version)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	srv, err := ipc.NewServer(cfg.Server.SocketPath, buildRouter)
	if err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	slog.Info("aetherimed ready", "socket", srv.Addr().String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(); err != nil {
			if isUseOfClosedConn(err) {
				return nil
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		return srv.Close()
	})

	if err := g.Wait(); err != nil {
		slog.Error("daemon exited with error", "error", err)
		os.Exit(1)
	}
}

// buildRouter loads the on-disk config, constructs the configured primary
// predictor backend, and demotes to the heuristic on any init failure
// (missing model path, unreachable host config, etc). It is passed to
// ipc.NewServer as the RouterBuilder and re-invoked on every config_reload.
func buildRouter() (*router.Router, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	fallback := heuristic.New()
	var primary predictor.Engine = fallback

	switch cfg.Model.Backend {
	case config.BackendLlamaCpp:
		lm, err := predictor.NewLocalModel(&cfg.Model)
		if err != nil {
			slog.Warn("local model backend unavailable, demoting to heuristic", "error", err)
		} else {
			primary = lm
		}
	case config.BackendOllama:
		rh, err := predictor.NewRemoteHost(&cfg.Model)
		if err != nil {
			slog.Warn("remote host backend unavailable, demoting to heuristic", "error", err)
		} else {
			primary = rh
		}
	case config.BackendHeuristic, "":
		// primary already set to the heuristic fallback
	default:
		slog.Warn("unknown model.backend, using heuristic", "backend", cfg.Model.Backend)
	}

	defaultMode := protocol.Mode(cfg.Model.Mode)
	r := router.New(primary, fallback, defaultMode, cfg.Predict.Enable, cfg.Predict.CacheCapacity)
	return r, cfg, nil
}

func isUseOfClosedConn(err error) bool {
	return errors.Is(err, os.ErrClosed) || errors.Is(err, net.ErrClosed)
}

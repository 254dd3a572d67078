// Command shurufa-engine is the baseline completion engine.
// It listens on a TCP loopback port for line-framed suggest/cancel
// requests and replies with frequency-trie completions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	defaults "github.com/aetherime/shurufa/default"
	"github.com/aetherime/shurufa/baseline"
	"github.com/aetherime/shurufa/trie"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const defaultPort = "48080"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *showVersion {
		fmt.Println("shurufa-engine", Version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	addr := "127.0.0.1:" + resolvePort()

	tr := trie.New()
	for word, freq := range defaults.SeedWords() {
		tr.Insert(word, freq)
	}
	engine := baseline.New(tr)

	srv, err := NewServer(addr, engine)
	if err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("ready", "addr", srv.Addr().String())
		return srv.Serve()
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		return srv.Close()
	})

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func resolvePort() string {
	if port := os.Getenv("SHURUFA_ENGINE_PORT"); port != "" {
		return port
	}
	return defaultPort
}

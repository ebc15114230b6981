// Command oscmdmcp is the server binary: three subcommands exposing the
// command executor, the filesystem tools, or both together, each runnable
// over stdio, SSE, or streamable HTTP. It mirrors main.go's role in the
// teacher repository — flag parsing, component wiring, signal-driven
// shutdown — rebuilt on cobra instead of the standard library's flag
// package; the teacher's own go.mod does not declare cobra.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/relaytools/oscmd-mcp/internal/applog"
	"github.com/relaytools/oscmd-mcp/internal/config"
	"github.com/relaytools/oscmd-mcp/internal/executor"
	"github.com/relaytools/oscmd-mcp/internal/fsops"
	"github.com/relaytools/oscmd-mcp/internal/metrics"
	"github.com/relaytools/oscmd-mcp/internal/outputstore"
	"github.com/relaytools/oscmd-mcp/internal/procmanager"
	"github.com/relaytools/oscmd-mcp/internal/transport"
)

// serverFlags mirrors the CLI surface's --mode/--host/--port/--path/--web-path
// flags, shared by all three subcommands.
type serverFlags struct {
	mode    string
	host    string
	port    string
	path    string
	webPath string
}

func registerServerFlags(cmd *cobra.Command, f *serverFlags) {
	fl := cmd.Flags()
	fl.StringVar(&f.mode, "mode", "stdio", "transport mode: stdio, sse, or http")
	fl.StringVar(&f.host, "host", "localhost", "host to bind in sse/http mode")
	fl.StringVar(&f.port, "port", "8080", "port to bind in sse/http mode")
	fl.StringVar(&f.path, "path", "/mcp", "base path for the MCP endpoint in sse/http mode")
	fl.StringVar(&f.webPath, "web-path", "/metrics", "base path for the metrics endpoint in sse mode")
}

// components bundles every dependency-injected building block a subcommand
// might need, constructed once from the resolved Config.
type components struct {
	logger   *applog.Logger
	cfg      *config.Config
	live     *config.Live
	store    *outputstore.Store
	manager  *procmanager.Manager
	executor *executor.Executor
	fsSvc    *fsops.Service
	recorder *metrics.Recorder
}

// buildComponents loads configuration and constructs the shared runtime
// graph every subcommand wires a subset of, following the same
// load-once-and-inject pattern internal/config documents. consoleToStderr
// must be true in stdio mode, so log lines never collide with MCP protocol
// frames on stdout.
func buildComponents(consoleToStderr bool) (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	console := os.Stdout
	if consoleToStderr {
		console = os.Stderr
	}
	logger := applog.New(applog.Options{
		Console:  console,
		FilePath: cfg.LogFilePath,
		Level:    slog.LevelInfo,
	})

	store, err := outputstore.New(cfg.OutputStoragePath)
	if err != nil {
		return nil, fmt.Errorf("initializing output store: %w", err)
	}

	recorder := metrics.New()
	manager := procmanager.New(store, procmanager.Config{
		RetentionInterval: time.Second,
		RetentionSeconds:  cfg.RetentionSeconds,
		DefaultEncoding:   cfg.DefaultEncoding,
	})
	manager.SetMetrics(recorder)

	ex := executor.New(manager, store, cfg.AllowedCommands)

	var fsSvc *fsops.Service
	if len(cfg.AllowedDirs) > 0 {
		fsSvc, err = fsops.New(cfg.AllowedDirs)
		if err != nil {
			return nil, fmt.Errorf("initializing filesystem service: %w", err)
		}
	}

	live := config.NewLive(cfg)

	return &components{
		logger:   logger,
		cfg:      cfg,
		live:     live,
		store:    store,
		manager:  manager,
		executor: ex,
		fsSvc:    fsSvc,
		recorder: recorder,
	}, nil
}

// runServer drives Serve until a termination signal arrives, then shuts
// down gracefully — mirroring main.go's signal-channel shutdown but via
// context cancellation into transport.Serve's own bounded shutdown grace,
// rather than a second forced-exit timer goroutine racing the real one.
func runServer(mcpServer *server.MCPServer, f *serverFlags, c *components) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if c.cfg.ConfigFilePath != "" {
		if err := config.WatchLive(ctx, c.cfg, c.live, c.logger.Logger); err != nil {
			c.logger.Warn("config hot-reload watcher failed to start", "error", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		c.logger.Info("shutdown signal received")
		cancel()
	}()

	tcfg := transport.Config{
		Mode:    transport.Mode(f.mode),
		Host:    f.host,
		Port:    f.port,
		Path:    f.path,
		WebPath: f.webPath,
	}
	if f.mode != string(transport.ModeStdio) {
		tcfg.Metrics = c.recorder.Handler()
	}

	return transport.Serve(ctx, mcpServer, tcfg)
}

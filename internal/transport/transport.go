// Package transport selects and runs one of the three MCP transports the
// CLI supports — stdio, SSE, or streamable HTTP — and drives a bounded
// graceful shutdown when the caller's context is canceled, mirroring
// main.go's mode switch and sse_server.go's shutdown sequencing in the
// teacher repository, but without its package-level shutdown globals: the
// caller owns cancellation via context.Context.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

// Mode selects which MCP transport Serve runs.
type Mode string

const (
	ModeStdio Mode = "stdio"
	ModeSSE   Mode = "sse"
	ModeHTTP  Mode = "http"
)

// Config configures Serve. Host/Port/Path/WebPath are only meaningful for
// the network-listening modes (SSE, HTTP).
type Config struct {
	Mode     Mode
	Host     string
	Port     string
	Path     string        // base path for the MCP endpoint, default "/mcp"
	WebPath  string        // base path the metrics handler is mounted under, default "/metrics"
	Shutdown time.Duration // grace period for in-flight requests once ctx is canceled
	Metrics  http.Handler  // optional; served under WebPath in SSE mode only (HTTP mode does not serve it)
}

const defaultShutdown = 10 * time.Second

// Serve runs mcpServer under the selected transport until ctx is canceled
// (network modes) or the transport's own loop ends (stdio, which has no
// mid-stream cancellation point beyond EOF on stdin — mirroring the
// teacher's own stdio path, which relies on process exit rather than a
// live cancel).
func Serve(ctx context.Context, mcpServer *server.MCPServer, cfg Config) error {
	switch cfg.Mode {
	case ModeStdio, "":
		return server.ServeStdio(mcpServer)
	case ModeSSE:
		return serveSSE(ctx, mcpServer, cfg)
	case ModeHTTP:
		return serveHTTP(ctx, mcpServer, cfg)
	default:
		return fmt.Errorf("transport: unknown mode %q", cfg.Mode)
	}
}

func (c Config) addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c Config) basePath() string {
	if c.Path != "" {
		return c.Path
	}
	return "/mcp"
}

func (c Config) webPath() string {
	if c.WebPath != "" {
		return c.WebPath
	}
	return "/metrics"
}

// withMetrics wraps handler so requests under cfg.webPath() go to
// cfg.Metrics instead, when one was configured. A no-op otherwise.
func (c Config) withMetrics(handler http.Handler) http.Handler {
	if c.Metrics == nil {
		return handler
	}
	mux := http.NewServeMux()
	mux.Handle(c.webPath(), c.Metrics)
	mux.Handle("/", handler)
	return mux
}

func (c Config) shutdownGrace() time.Duration {
	if c.Shutdown > 0 {
		return c.Shutdown
	}
	return defaultShutdown
}

func serveSSE(ctx context.Context, mcpServer *server.MCPServer, cfg Config) error {
	sseServer := server.NewSSEServer(mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://%s", cfg.addr())),
		server.WithStaticBasePath(cfg.basePath()),
		server.WithKeepAlive(true),
	)

	httpServer := &http.Server{
		Addr:    cfg.addr(),
		Handler: cfg.withMetrics(sseServer),
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("transport: sse server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownGrace())
		defer cancel()
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("transport: sse shutdown error: %w", err)
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("transport: http shutdown error: %w", err)
		}
		return nil
	}
}

func serveHTTP(ctx context.Context, mcpServer *server.MCPServer, cfg Config) error {
	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath(cfg.basePath()),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(cfg.addr()); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("transport: http server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownGrace())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("transport: http shutdown error: %w", err)
		}
		return nil
	}
}

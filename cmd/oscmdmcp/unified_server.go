package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/relaytools/oscmd-mcp/internal/config"
	"github.com/relaytools/oscmd-mcp/internal/dashboard"
	"github.com/relaytools/oscmd-mcp/internal/fsops"
	"github.com/relaytools/oscmd-mcp/internal/mcptools"
	"github.com/relaytools/oscmd-mcp/internal/transport"
)

// newUnifiedServerCmd exposes both tool surfaces together and, in network
// modes, the terminal dashboard — mirroring main.go's combined server plus
// --tui flag, but with the dashboard unconditionally disallowed in stdio
// mode since stdio mode's stdin/stdout already belong to the MCP protocol
// frames, leaving no terminal free for a curses UI.
func newUnifiedServerCmd() *cobra.Command {
	var f serverFlags
	var dashboardEnabled bool
	cmd := &cobra.Command{
		Use:   "unified-server",
		Short: "Run the command-execution and filesystem MCP tools together",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(f.mode == "stdio")
			if err != nil {
				return err
			}

			s := server.NewMCPServer("oscmdmcp", version, server.WithToolCapabilities(false))
			mcptools.Register(s, c.executor)
			if c.fsSvc != nil {
				fsops.Register(s, c.fsSvc)
			}

			runDashboard := dashboardEnabled && f.mode != string(transport.ModeStdio)
			if runDashboard {
				return runUnifiedWithDashboard(s, &f, c)
			}

			c.logger.Info("unified server starting", "mode", f.mode, "dashboard", false)
			return runServer(s, &f, c)
		},
	}
	registerServerFlags(cmd, &f)
	cmd.Flags().BoolVar(&dashboardEnabled, "dashboard", true, "run the terminal dashboard (sse/http modes only)")
	return cmd
}

// runUnifiedWithDashboard runs the transport and the dashboard side by
// side: whichever exits first (dashboard quit, signal, transport error)
// triggers a coordinated shutdown of the other, the same mutual-shutdown
// relationship main.go's TUI-exit-triggers-server-shutdown path has.
func runUnifiedWithDashboard(s *server.MCPServer, f *serverFlags, c *components) error {
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

	app := dashboard.New(c.executor, c.logger.Ring)

	serveErr := make(chan error, 1)
	go func() {
		tcfg := transport.Config{
			Mode:    transport.Mode(f.mode),
			Host:    f.host,
			Port:    f.port,
			Path:    f.path,
			WebPath: f.webPath,
			Metrics: c.recorder.Handler(),
		}
		serveErr <- transport.Serve(ctx, s, tcfg)
	}()

	dashboardErr := make(chan error, 1)
	go func() {
		dashboardErr <- app.Run()
		cancel()
	}()

	c.logger.Info("unified server starting", "mode", f.mode, "dashboard", true)

	select {
	case err := <-serveErr:
		app.Stop()
		<-dashboardErr
		return err
	case <-dashboardErr:
		cancel()
		return <-serveErr
	}
}

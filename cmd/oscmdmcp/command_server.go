package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/relaytools/oscmd-mcp/internal/mcptools"
)

// newCommandServerCmd exposes only the command-execution tool surface
// (command_execute, command_bg_start, command_ps_*), for deployments that
// don't want filesystem access bound at all.
func newCommandServerCmd() *cobra.Command {
	var f serverFlags
	cmd := &cobra.Command{
		Use:   "command-server",
		Short: "Run the command-execution MCP tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(f.mode == "stdio")
			if err != nil {
				return err
			}

			s := server.NewMCPServer("oscmdmcp-command", version, server.WithToolCapabilities(false))
			mcptools.Register(s, c.executor)

			c.logger.Info("command server starting", "mode", f.mode)
			return runServer(s, &f, c)
		},
	}
	registerServerFlags(cmd, &f)
	return cmd
}

package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/relaytools/oscmd-mcp/internal/fsops"
)

// newFilesystemServerCmd exposes only the filesystem tool surface
// (fs_read_file, fs_write_file, fs_list_directory, fs_search_files,
// fs_file_info), scoped to ALLOWED_DIRS.
func newFilesystemServerCmd() *cobra.Command {
	var f serverFlags
	cmd := &cobra.Command{
		Use:   "filesystem-server",
		Short: "Run the filesystem MCP tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(f.mode == "stdio")
			if err != nil {
				return err
			}
			if c.fsSvc == nil {
				return fmt.Errorf("ALLOWED_DIRS must name at least one directory to run filesystem-server")
			}

			s := server.NewMCPServer("oscmdmcp-filesystem", version, server.WithToolCapabilities(false))
			fsops.Register(s, c.fsSvc)

			c.logger.Info("filesystem server starting", "mode", f.mode, "allowed_dirs", c.fsSvc.AllowedDirectories())
			return runServer(s, &f, c)
		},
	}
	registerServerFlags(cmd, &f)
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "oscmdmcp",
		Short:         "Sandboxed command execution and filesystem access over MCP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCommandServerCmd())
	root.AddCommand(newFilesystemServerCmd())
	root.AddCommand(newUnifiedServerCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "oscmdmcp %s\n", version)
			return nil
		},
	}
}

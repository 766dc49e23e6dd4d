package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/zonetile/internal/mcp"
)

func newMCPCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: "Start the MCP server on stdio. It forwards tool calls to a running daemon.\n\n" +
			"Example (Claude Code):\n  claude mcp add zonetile -- zonetile mcp serve",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol; logs go to stderr.
			logger := g.logger(os.Stderr, "warn")
			server := mcp.NewServer(g.client(), logger)
			if err := server.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
				return err
			}
			return nil
		},
	})
	return cmd
}

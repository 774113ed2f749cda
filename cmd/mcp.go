package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluekornchips/gandalf/internal/logging"
	"github.com/bluekornchips/gandalf/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI tool integration.

This is typically spawned by an AI tool rather than run by hand.
The server communicates over stdio; logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return fmt.Errorf("failed to build engine: %w", err)
		}

		log := logging.Setup()
		if stop, err := eng.WatchKeywords(); err != nil {
			log.Warn().Err(err).Msg("manifest watcher unavailable, keyword cache relies on TTL")
		} else {
			defer stop()
		}

		server := mcp.NewServer(eng, log)
		return server.Run(cmd.Context())
	},
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpmerge/cmd"
	"github.com/thoreinstein/mcpmerge/internal/logging"
	"github.com/thoreinstein/mcpmerge/internal/rag"
)

func init() {
	serveCmd.Flags().StringVar(&queryURL, "url", "",
		"query endpoint (default: query.url from config)")
	serveCmd.Flags().IntVar(&queryTopK, "top-k", 0,
		"number of passages to retrieve (default: query.top_k from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an MCP server exposing the query tool on stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout with a single
"query" tool that relays questions to the knowledge service.

This is the command an installed mcpServers entry launches, for example:

  mcpmerge ~/.claude.json fcm-rag '{"command":"mcpmerge","args":["serve"]}'

Logs go to stderr so they never interleave with protocol messages.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(c *cobra.Command, _ []string) error {
	client, err := newRAGClient()
	if err != nil {
		return err
	}

	logger := logging.FromContext(c.Context())
	logger.Info("serving on stdio", "url", logging.MaskURL(client.URL()))

	srv := rag.NewServer("mcpmerge-rag", cmd.Version, client, logger)
	return srv.Serve(c.Context(), c.InOrStdin(), c.OutOrStdout())
}

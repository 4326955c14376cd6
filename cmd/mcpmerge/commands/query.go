package commands

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpmerge/internal/config"
	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
	"github.com/thoreinstein/mcpmerge/internal/logging"
	"github.com/thoreinstein/mcpmerge/internal/rag"
)

var (
	queryURL  string
	queryTopK int
)

func init() {
	queryCmd.Flags().StringVar(&queryURL, "url", "",
		"query endpoint (default: query.url from config)")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0,
		"number of passages to retrieve (default: query.top_k from config)")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask the knowledge service a question",
	Long: `Send a question to the retrieval service and print its JSON answer.

The request body is {"question": <question>, "topK": <n>}. The endpoint
defaults to query.url from the config file, MCPMERGE_QUERY_URL, or
FCM_RAG_URL, in that order.`,
	Example: `  # Ask with defaults
  mcpmerge query "How do I request access to staging?"

  # Against another endpoint
  mcpmerge query --url http://rag.internal:3000/query --top-k 10 "expense policy"

See Also: mcpmerge serve, mcpmerge config show`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	client, err := newRAGClient()
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	logger := logging.FromContext(cmd.Context())
	logger.Debug("sending query", "url", logging.MaskURL(client.URL()), "chars", len(question))

	answer, err := client.Query(cmd.Context(), question)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuestion) {
			return apperrors.NewUserError(err, "")
		}
		return apperrors.NewSystemError(err, "Check that the query service is running at "+client.URL())
	}

	text, err := rag.Indent(answer)
	if err != nil {
		return errors.Wrap(err, "formatting answer")
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// newRAGClient builds a client from the loaded config and the query flags.
func newRAGClient() (*rag.Client, error) {
	c, err := loadedConfig()
	if err != nil {
		return nil, err
	}

	rc := rag.Config{
		URL:     c.Query.URL,
		TopK:    c.Query.TopK,
		Timeout: c.Query.Timeout,
	}
	if queryURL != "" {
		if err := config.ValidateURL(queryURL); err != nil {
			return nil, apperrors.NewUserError(err, "")
		}
		rc.URL = queryURL
	}
	if queryTopK != 0 {
		if queryTopK < 0 {
			return nil, apperrors.NewUserError(errors.Newf("--top-k must be positive, got %d", queryTopK), "")
		}
		rc.TopK = queryTopK
	}
	client, err := rag.NewClient(rc)
	if err != nil {
		return nil, apperrors.NewConfigError(err)
	}
	return client, nil
}

package rag

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
	"github.com/thoreinstein/mcpmerge/internal/logging"
)

// QueryToolName is the single tool exposed by Server.
const QueryToolName = "query"

const queryToolDescription = "Ask a question to the RAG knowledge base. Use this tool to search " +
	"for information about processes, policies, onboarding, and other company knowledge."

// Querier is the subset of Client used by Server.
type Querier interface {
	Query(ctx context.Context, question string) (json.RawMessage, error)
}

// QueryInput is the argument object of the query tool.
type QueryInput struct {
	Question string `json:"question" jsonschema:"The question to ask the knowledge base"`
}

// Server exposes the query relay as an MCP tool. Protocol handling
// (initialize, tools/list, tools/call, framing) is done by the SDK server.
type Server struct {
	sdk    *mcpsdk.Server
	client Querier
	logger *slog.Logger
}

// NewServer creates a Server that relays tool calls to client.
func NewServer(name, version string, client Querier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	s := &Server{client: client, logger: logger}
	s.sdk = mcpsdk.NewServer(&mcpsdk.Implementation{Name: name, Version: version}, nil)
	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        QueryToolName,
		Description: queryToolDescription,
	}, s.query)
	return s
}

// Connect starts a session over t without blocking, for transports other
// than a byte stream.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.sdk.Connect(ctx, t, nil)
}

// Serve speaks newline-delimited JSON-RPC over in and out until the client
// disconnects or ctx is cancelled. When in is an io.ReadCloser it is closed
// as the session ends so a pending read returns; out is never closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader, ok := in.(io.ReadCloser)
	if !ok {
		reader = io.NopCloser(in)
	}
	t := &mcpsdk.IOTransport{
		Reader: reader,
		Writer: nopWriteCloser{out},
	}
	err := s.sdk.Run(ctx, t)
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		return nil
	default:
		return errors.Mark(errors.Wrap(err, "serving MCP session"), apperrors.ErrFilesystem)
	}
}

// query relays one tool call. Relay failures are returned as tool results
// with IsError set so the calling model sees the message.
func (s *Server) query(ctx context.Context, _ *mcpsdk.CallToolRequest, in QueryInput) (*mcpsdk.CallToolResult, any, error) {
	s.logger.Debug("tool call", "tool", QueryToolName)

	answer, err := s.client.Query(ctx, in.Question)
	if err != nil {
		s.logger.Warn("query failed", "error", err)
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
			IsError: true,
		}, nil, nil
	}

	text, err := Indent(answer)
	if err != nil {
		text = string(answer)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}, nil, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

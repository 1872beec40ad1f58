// Package mcpserver exposes the session tool catalog over the Model Context
// Protocol, on stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/jonwraymond/dataexec/exec"
	"github.com/jonwraymond/dataexec/tools"
)

const (
	serverName             = "dataexec"
	defaultShutdownTimeout = 5 * time.Second
)

// DefaultHTTPAddr is the listen address used for the HTTP transport when
// none is configured.
const DefaultHTTPAddr = "localhost:8001"

// DefaultVersion is reported to clients when Options.Version is empty.
const DefaultVersion = "dev"

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves the streamable HTTP transport at /mcp.
	TransportHTTP TransportKind = "http"
)

// ErrUnsupportedTransport is returned for an unknown transport kind.
var ErrUnsupportedTransport = errors.New("mcpserver: unsupported transport")

// ParseTransport returns the transport kind called name. Empty means stdio.
func ParseTransport(name string) (TransportKind, error) {
	switch TransportKind(name) {
	case "", TransportStdio:
		return TransportStdio, nil
	case TransportHTTP:
		return TransportHTTP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTransport, name)
	}
}

// Catalog is the tool source the server publishes.
type Catalog interface {
	ListTools(ctx context.Context) ([]model.Tool, error)
	Execute(ctx context.Context, toolID string, args map[string]any) (string, error)
}

// Options configures a Server.
type Options struct {
	// Version is reported in the server's implementation info.
	Version string

	// HTTPAddr is the listen address for TransportHTTP.
	// Default: DefaultHTTPAddr
	HTTPAddr string

	// Logger receives one event per tool call.
	// Default: disabled
	Logger *zerolog.Logger
}

// Server publishes a Catalog as MCP tools.
type Server struct {
	mcpServer *mcp.Server
	catalog   Catalog
	log       zerolog.Logger
	opts      Options
}

// New registers every catalog tool on a new MCP server.
func New(catalog Catalog, opts Options) (*Server, error) {
	if catalog == nil {
		return nil, errors.New("mcpserver: catalog is required")
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.HTTPAddr == "" {
		opts.HTTPAddr = DefaultHTTPAddr
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: opts.Version}, nil),
		catalog:   catalog,
		log:       logger,
		opts:      opts,
	}

	list, err := catalog.ListTools(context.Background())
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	for _, tool := range list {
		t := tool.Tool
		s.mcpServer.AddTool(&t, s.handler(toolID(tool)))
	}
	return s, nil
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Serve runs the server on the given transport kind until ctx is done.
func (s *Server) Serve(ctx context.Context, kind TransportKind) error {
	switch kind {
	case TransportStdio, "":
		return s.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return s.ListenAndServe(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedTransport, kind)
	}
}

// Run serves a single client session over transport. Cancellation of ctx
// is a clean shutdown.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler: the streamable MCP endpoint at /mcp and
// a health check at /mcp/health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil))
	mux.HandleFunc("/mcp/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe serves Handler on Options.HTTPAddr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.HTTPAddr, err)
	}
	return s.serveListener(ctx, listener)
}

func (s *Server) serveListener(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", listener.Addr().String()).Msg("serving MCP over HTTP")

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

func (s *Server) handler(id string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(fmt.Errorf("%w: arguments must be a JSON object: %v", exec.ErrInvalidArgument, err)), nil
			}
		}

		start := time.Now()
		out, err := s.catalog.Execute(ctx, id, args)
		event := s.log.Debug()
		if err != nil {
			event = s.log.Warn().Err(err)
		}
		event.Str("tool", id).Dur("elapsed", time.Since(start)).Msg("tool call")

		if err != nil {
			return errorResult(err), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out}},
		}, nil
	}
}

// Error categories reported for failures that are not load or execution
// errors.
const (
	categoryInvalidRequest = "InvalidRequest"
	categoryInternal       = "InternalError"
)

// errorResult reports err as tool error content, keeping the facade's
// category in both the text and the structured content.
func errorResult(err error) *mcp.CallToolResult {
	category, message := categoryInternal, err.Error()
	var execErr *exec.Error
	switch {
	case errors.As(err, &execErr):
		category, message = string(execErr.Category), execErr.Message
	case errors.Is(err, exec.ErrInvalidArgument),
		errors.Is(err, exec.ErrUnknownOperation),
		errors.Is(err, tools.ErrToolNotFound),
		errors.Is(err, tools.ErrInvalidToolID):
		category = categoryInvalidRequest
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: category + ": " + message}},
		StructuredContent: map[string]any{
			"category": category,
			"message":  message,
		},
	}
}

func toolID(tool model.Tool) string {
	if tool.Namespace == "" {
		return tool.Name
	}
	return tool.Namespace + ":" + tool.Name
}

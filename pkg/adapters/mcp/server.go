package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const paramsURI = "arbor://run/params"

// Loader is the part of arbor.Loader the MCP server reads from.
type Loader interface {
	List(ctx context.Context) ([]string, error)
	Resolve(ctx context.Context, names ...string) (domain.Tree, error)
}

// SetsResponse lists the available parameter sets.
type SetsResponse struct {
	Names []string `json:"names" jsonschema_description:"Parameter set names known to the store"`
}

// ResolveResponse is the merged and resolved tree for a list of names.
type ResolveResponse struct {
	Names   []string       `json:"names" jsonschema_description:"Names that were merged, in order"`
	RunName string         `json:"run_name" jsonschema_description:"Run name a session would use"`
	Params  map[string]any `json:"params" jsonschema_description:"Resolved parameters"`
}

// ParameterResponse is a single value from the active run.
type ParameterResponse struct {
	Path  string `json:"path" jsonschema_description:"Slash separated path that was looked up"`
	Found bool   `json:"found" jsonschema_description:"Whether the path exists"`
	Value any    `json:"value,omitempty" jsonschema_description:"Value at path"`
}

// RunResponse describes the active run.
type RunResponse struct {
	Run   string   `json:"run" jsonschema_description:"Run name"`
	Names []string `json:"names" jsonschema_description:"Parameter sets the run was loaded from"`
	Stamp string   `json:"stamp" jsonschema_description:"Current time in run log format"`
}

// LogResponse acknowledges an appended log line.
type LogResponse struct {
	Run  string `json:"run"`
	Line string `json:"line"`
}

// Server exposes parameter sets and an active run as an MCP Server.
type Server struct {
	loader    Loader
	session   *session.Session
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSession exposes an active run through the run_info, get_parameter
// and append_log tools.
func WithSession(s *session.Session) Option {
	return func(srv *Server) {
		srv.session = s
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(srv *Server) {
		srv.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(loader Loader, opts ...Option) *Server {
	s := &Server{
		loader:    loader,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: list_sets
	s.mcpServer.AddTool(mcp.NewTool("list_sets",
		mcp.WithDescription("List the parameter sets available in the store."),
		mcp.WithOutputSchema[SetsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListSets))

	// TOOL: resolve
	s.mcpServer.AddTool(mcp.NewTool("resolve",
		mcp.WithDescription("Merge parameter sets in order and resolve includes and references."),
		mcp.WithString("names", mcp.Required(), mcp.Description("Comma separated parameter set names")),
		mcp.WithOutputSchema[ResolveResponse](),
	), mcp.NewStructuredToolHandler(s.handleResolve))

	if s.session == nil {
		return
	}

	// TOOL: run_info
	s.mcpServer.AddTool(mcp.NewTool("run_info",
		mcp.WithDescription("Describe the active run."),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleRunInfo))

	// TOOL: get_parameter
	s.mcpServer.AddTool(mcp.NewTool("get_parameter",
		mcp.WithDescription("Read one value of the active run's parameters."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Slash separated path, e.g. optim/lr")),
		mcp.WithOutputSchema[ParameterResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetParameter))

	// TOOL: append_log
	s.mcpServer.AddTool(mcp.NewTool("append_log",
		mcp.WithDescription("Append a timestamped line to the active run's log."),
		mcp.WithString("line", mcp.Required(), mcp.Description("Text to log")),
		mcp.WithOutputSchema[LogResponse](),
	), mcp.NewStructuredToolHandler(s.handleAppendLog))
}

func (s *Server) handleListSets(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SetsResponse, error) {
	names, err := s.loader.List(ctx)
	if err != nil {
		return SetsResponse{}, fmt.Errorf("list failed: %w", err)
	}
	return SetsResponse{Names: names}, nil
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ResolveResponse, error) {
	raw, _ := args["names"].(string)
	var names []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	tree, err := s.loader.Resolve(ctx, names...)
	if err != nil {
		s.logger.Warn("MCP Resolve failed", "names", names, "error", err)
		return ResolveResponse{}, fmt.Errorf("resolve failed: %w", err)
	}
	return ResolveResponse{
		Names:   names,
		RunName: session.DeriveRunName(tree),
		Params:  tree.Plain(),
	}, nil
}

func (s *Server) handleRunInfo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	return RunResponse{
		Run:   s.session.RunName(),
		Names: s.session.Names(),
		Stamp: s.session.Stamp(),
	}, nil
}

func (s *Server) handleGetParameter(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ParameterResponse, error) {
	raw, _ := args["path"].(string)
	raw = strings.Trim(raw, "/")
	var path []string
	if raw != "" {
		path = strings.Split(raw, "/")
	}

	v, ok := s.session.Lookup(path...)
	if tree, isTree := v.(domain.Tree); isTree {
		v = tree.Plain()
	}
	return ParameterResponse{Path: raw, Found: ok, Value: v}, nil
}

func (s *Server) handleAppendLog(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LogResponse, error) {
	line, _ := args["line"].(string)
	if line == "" {
		return LogResponse{}, errors.New("line cannot be empty")
	}
	if err := s.session.Log(ctx, line); err != nil {
		return LogResponse{}, err
	}
	return LogResponse{Run: s.session.RunName(), Line: line}, nil
}

func (s *Server) registerResources() {
	if s.session == nil {
		return
	}
	// EXPOSE: arbor://run/params
	s.mcpServer.AddResource(mcp.NewResource(paramsURI, "Active Run Parameters",
		mcp.WithMIMEType("application/json"),
	), s.readParams)
}

func (s *Server) readParams(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.session.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to encode parameters: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      paramsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// Package mcp exposes schema validation as Model Context Protocol tools.
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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/shape"
	"github.com/aretw0/shape/internal/logging"
	"github.com/aretw0/shape/pkg/adapters/file"
	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/schema"
)

const schemaURIPrefix = "shape://schemas/"

// Server wraps a schema registry and exposes it as an MCP server.
type Server struct {
	registry  ports.SchemaRegistry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server over the registry.
func NewServer(registry ports.SchemaRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		registry:  registry,
		logger:    logger,
		mcpServer: server.NewMCPServer("shape-mcp", strings.TrimSpace(shape.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on the given port until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate",
		mcp.WithDescription("Validate a JSON object against a stored schema (by name) or an inline shorthand schema. "+
			"Returns isValid, the error tree of the first violation, and the normalized data."),
		mcp.WithString("data", mcp.Required(), mcp.Description("JSON object to validate")),
		mcp.WithString("schema_name", mcp.Description("Name of a stored schema")),
		mcp.WithString("schema", mcp.Description("Inline shorthand schema as a JSON object; used when schema_name is empty")),
		mcp.WithBoolean("whitelist", mcp.Description("Remove properties the schema does not declare (default true)")),
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List the names of stored schemas."),
	), s.handleListSchemas)

	s.mcpServer.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Get the compiled form of a stored schema."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schema name")),
	), s.handleGetSchema)
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := request.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	obj, err := file.DecodeData([]byte(data), true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var opts []shape.Option
	if args := request.GetArguments(); args != nil {
		if _, ok := args["whitelist"]; ok {
			opts = append(opts, shape.WithWhitelist(request.GetBool("whitelist", true)))
		}
	}

	var res shape.Result
	if name := request.GetString("schema_name", ""); name != "" {
		res, err = s.registry.Validate(ctx, name, obj, opts...)
	} else {
		inline := request.GetString("schema", "")
		if inline == "" {
			return mcp.NewToolResultError("either schema_name or schema is required"), nil
		}
		var raw *schema.Raw
		raw, err = schema.ParseJSON([]byte(inline))
		if err == nil {
			res, err = s.registry.ValidateInline(raw, obj, opts...)
		}
	}
	if err != nil {
		if !errors.Is(err, ports.ErrSchemaNotFound) {
			s.logger.Warn("MCP validate failed", "error", err)
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(res)
}

func (s *Server) handleListSchemas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.registry.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	return jsonResult(names)
}

func (s *Server) handleGetSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.registry.Get(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v.Schema())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(schemaURIPrefix+"{name}", "Stored schema",
		mcp.WithTemplateDescription("Shorthand definition of a stored schema"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readSchemaResource)
}

func (s *Server) readSchemaResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	name := strings.TrimPrefix(uri, schemaURIPrefix)
	if name == uri || name == "" {
		return nil, fmt.Errorf("unsupported resource %q", uri)
	}

	v, err := s.registry.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(v.Raw())
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

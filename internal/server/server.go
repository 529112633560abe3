// Package server exposes the intelligence service over the Model Context
// Protocol. It declares the tool and resource surface, translates tool
// arguments into service calls, and wraps every outcome in the response
// envelope. All domain work happens below in internal/intel; this package
// owns only the rim.
package server

import (
	"context"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"fintel/internal/config"
	"fintel/internal/intel"
	"fintel/internal/logging"
)

// ============================================================================
// SERVER
// ============================================================================

// Server is the MCP rim around the intelligence service. Construct with New,
// then run exactly one of ServeStdio or ListenHTTP.
type Server struct {
	svc  *intel.Service
	cfg  *config.Config
	mcp  *server.MCPServer
	http *server.StreamableHTTPServer

	listening atomic.Bool
	tools     int
}

// New builds the MCP server and registers the full tool and resource
// surface. The config supplies the advertised name, version, and transport.
func New(svc *intel.Service, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Server{
		svc: svc,
		cfg: cfg,
		mcp: server.NewMCPServer(
			cfg.Name,
			cfg.Version,
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(true, true),
			server.WithRecovery(),
		),
	}
	s.http = server.NewStreamableHTTPServer(s.mcp)

	s.registerSearchTools()
	s.registerCompanyTools()
	s.registerAnalysisTools()
	s.registerLocationTools()
	s.registerAdvisorTools()
	s.registerResources()

	logging.Server("MCP surface ready: %d tools registered", s.tools)
	return s
}

// ToolCount reports how many tools are registered.
func (s *Server) ToolCount() int {
	return s.tools
}

// addTool registers a tool with a dispatch wrapper that times every call
// and records error envelopes in the server log.
func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	name := tool.Name
	s.mcp.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		timer := logging.StartTimer(logging.CategoryServer, name)
		result, err := handler(ctx, request)
		timer.Stop()
		if result != nil && result.IsError {
			logging.ServerWarn("%s returned an error envelope", name)
		}
		return result, err
	})
	s.tools++
}

// ============================================================================
// TRANSPORTS
// ============================================================================

// ServeStdio runs the server over stdin/stdout until the stream closes.
func (s *Server) ServeStdio() error {
	logging.Server("Serving MCP over stdio")
	return server.ServeStdio(s.mcp)
}

// ListenHTTP runs the streamable HTTP transport on addr. It blocks until
// the listener fails or Shutdown is called.
func (s *Server) ListenHTTP(addr string) error {
	s.listening.Store(true)
	logging.Server("Serving MCP over streamable HTTP on %s", addr)
	return s.http.Start(addr)
}

// Shutdown stops the HTTP transport, waiting for in-flight requests until
// ctx expires. It is a no-op unless ListenHTTP was called.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.listening.Load() {
		return nil
	}
	logging.Server("MCP server shutting down")
	return s.http.Shutdown(ctx)
}

// Package mcp exposes project scanning, context generation and token
// estimation over the Model Context Protocol, on stdio or streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"

	cfhttp "github.com/Strob0t/ContextForge/internal/adapter/http"
	cfotel "github.com/Strob0t/ContextForge/internal/adapter/otel"
	"github.com/Strob0t/ContextForge/internal/domain/scan"
	"github.com/Strob0t/ContextForge/internal/domain/tokens"
	"github.com/Strob0t/ContextForge/internal/middleware"
	"github.com/Strob0t/ContextForge/internal/port/rulestore"
)

// serverInstructions primes MCP clients on what this server does.
const serverInstructions = `ContextForge generates LLM context documents for software projects.

Typical flow:
1. scan_project on a project directory to see detected languages and standards.
2. generate_context to produce the context markdown, usually saved as LLM_CONTEXT.md.
3. show_copy_instructions for per-LLM usage directions.
4. estimate_tokens and optimize_context on the saved file to manage its size.

Paths are resolved on the machine running this server.`

// ServerConfig holds the MCP server identity and transport settings.
type ServerConfig struct {
	Addr       string
	Name       string
	Version    string
	CORSOrigin string
	APIKey     string
	RateRPS    float64 // per-client requests/sec on /mcp, 0 disables
	RateBurst  int
}

// Scanner runs project scans.
type Scanner interface {
	Scan(ctx context.Context, path string) (*scan.Report, error)
}

// Generator renders context documents.
type Generator interface {
	Generate(ctx context.Context, path, projectName string) (string, error)
}

// Estimator estimates and optimizes token usage for context files.
type Estimator interface {
	EstimateFile(ctx context.Context, path string) (*tokens.Estimate, error)
	OptimizeFile(ctx context.Context, path string) (*tokens.Optimization, error)
}

// InstructionsProvider serves the copy instructions document.
type InstructionsProvider interface {
	CopyInstructions() string
}

// ServerDeps carries the services the MCP handlers call. Nil fields turn
// the corresponding tools into error results instead of panics.
type ServerDeps struct {
	Scanner      Scanner
	Generator    Generator
	Estimator    Estimator
	Instructions InstructionsProvider
	Rules        rulestore.Source
	Metrics      *cfotel.Metrics
}

// Server hosts the ContextForge MCP tools.
type Server struct {
	cfg         ServerConfig
	deps        ServerDeps
	mcpServer   *mcpserver.MCPServer
	httpSrv     *http.Server
	addr        net.Addr
	stopCleanup func()
}

// NewServer builds the MCP server and registers all tools and resources.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{cfg: cfg, deps: deps}
	s.mcpServer = mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions(serverInstructions),
		mcpserver.WithToolHandlerMiddleware(s.instrumentTool),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin/stdout until ctx is cancelled. Logging
// must go to stderr in this mode; stdout carries the protocol.
func (s *Server) ServeStdio(ctx context.Context) error {
	slog.Info("mcp server listening on stdio")
	return mcpserver.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
}

// Start serves MCP over streamable HTTP on cfg.Addr and returns once the
// listener is bound.
func (s *Server) Start() error {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(cfhttp.Logger)
	router.Use(cfhttp.SecurityHeaders)
	router.Use(cfhttp.CORS(s.cfg.CORSOrigin))
	router.Use(cfotel.HTTPMiddleware(s.cfg.Name))

	router.Get("/health", s.handleHealth)

	endpoint := http.Handler(AuthMiddleware(s.cfg.APIKey, mcpserver.NewStreamableHTTPServer(s.mcpServer)))
	if s.cfg.RateRPS > 0 {
		rl := middleware.NewRateLimiter(s.cfg.RateRPS, s.cfg.RateBurst)
		s.stopCleanup = rl.StartCleanup(time.Minute, 10*time.Minute)
		endpoint = rl.Handler(endpoint)
	}
	router.Mount("/mcp", endpoint)

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("mcp: listen %s: %w", s.cfg.Addr, err)
	}
	s.addr = ln.Addr()

	s.httpSrv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mcp http server failed", "error", err)
		}
	}()

	slog.Info("mcp server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listen address, or "" before Start. With a :0
// config it carries the port the kernel picked.
func (s *Server) Addr() string {
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

// Stop gracefully shuts down the HTTP transport. Safe to call without a
// prior Start.
func (s *Server) Stop(ctx context.Context) error {
	if s.stopCleanup != nil {
		s.stopCleanup()
		s.stopCleanup = nil
	}
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"status":"ok","version":%q}`, s.cfg.Version)
}

package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	cfmcp "github.com/Strob0t/ContextForge/internal/adapter/mcp"
	"github.com/Strob0t/ContextForge/internal/domain/scan"
	"github.com/Strob0t/ContextForge/internal/domain/tokens"
)

// --- Mocks ---

type mockScanner struct {
	report *scan.Report
	err    error
}

func (m *mockScanner) Scan(_ context.Context, _ string) (*scan.Report, error) {
	return m.report, m.err
}

type mockGenerator struct {
	doc string
	err error
}

func (m *mockGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return m.doc, m.err
}

type mockEstimator struct {
	est *tokens.Estimate
	opt *tokens.Optimization
	err error
}

func (m *mockEstimator) EstimateFile(_ context.Context, _ string) (*tokens.Estimate, error) {
	return m.est, m.err
}

func (m *mockEstimator) OptimizeFile(_ context.Context, _ string) (*tokens.Optimization, error) {
	return m.opt, m.err
}

type mockInstructions struct{}

func (mockInstructions) CopyInstructions() string { return "# Using Your Generated Context" }

func sampleReport() *scan.Report {
	primary := "python"
	det := &scan.Detections{}
	det.Add("python", scan.LanguageMatch{
		Confidence:   0.7,
		MatchedFiles: []string{"main.py"},
		Description:  "Python project",
	})
	return &scan.Report{
		Path:            "/tmp/demo",
		ProjectName:     "demo",
		FilesFound:      []string{"main.py"},
		Detected:        det,
		PrimaryLanguage: &primary,
		Confidence:      0.7,
		Standards:       []string{"coding-standards/python.md"},
		MandatoryFiles: &scan.MandatoryReport{
			Required: []string{}, Present: []string{}, Missing: []string{}, AllPresent: true,
		},
		TotalFiles: 1,
	}
}

func callTool(t *testing.T, s *cfmcp.Server, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	tools := s.MCPServer().ListTools()
	tool, ok := tools[name]
	if !ok {
		t.Fatalf("%s tool not found", name)
	}
	result, err := tool.Handler(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result content")
	}
	text, ok := result.Content[0].(mcplib.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	return text.Text
}

// --- Tests ---

func TestNewServer(t *testing.T) {
	cfg := cfmcp.ServerConfig{
		Addr:    ":8117",
		Name:    "test-server",
		Version: "0.1.0",
	}
	s := cfmcp.NewServer(cfg, cfmcp.ServerDeps{})
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
	if s.MCPServer() == nil {
		t.Fatal("MCPServer() returned nil")
	}
}

func TestServerStartStop(t *testing.T) {
	cfg := cfmcp.ServerConfig{
		Addr:    ":0",
		Name:    "test-server",
		Version: "0.1.0",
	}
	s := cfmcp.NewServer(cfg, cfmcp.ServerDeps{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, cfmcp.ServerDeps{})
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop without Start failed: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	cfg := cfmcp.ServerConfig{Addr: "127.0.0.1:0", Name: "test-server", Version: "2.3.4"}
	s := cfmcp.NewServer(cfg, cfmcp.ServerDeps{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" || body.Version != "2.3.4" {
		t.Fatalf("unexpected health body %+v", body)
	}
}

func TestRateLimitedEndpoint(t *testing.T) {
	cfg := cfmcp.ServerConfig{
		Addr:      "127.0.0.1:0",
		Name:      "test-server",
		Version:   "0.1.0",
		RateRPS:   1,
		RateBurst: 1,
	}
	s := cfmcp.NewServer(cfg, cfmcp.ServerDeps{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	post := func() int {
		resp, err := http.Post("http://"+s.Addr()+"/mcp", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("POST /mcp: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode
	}

	if code := post(); code == http.StatusTooManyRequests {
		t.Fatal("first request should pass the limiter")
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", code)
	}
}

func TestToolRegistration(t *testing.T) {
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, cfmcp.ServerDeps{})

	tools := s.MCPServer().ListTools()
	if len(tools) != 5 {
		t.Fatalf("expected 5 tools, got %d", len(tools))
	}

	expectedTools := map[string]bool{
		"scan_project":           false,
		"generate_context":       false,
		"show_copy_instructions": false,
		"estimate_tokens":        false,
		"optimize_context":       false,
	}
	for name := range tools {
		if _, ok := expectedTools[name]; ok {
			expectedTools[name] = true
		} else {
			t.Errorf("unexpected tool: %s", name)
		}
	}
	for name, found := range expectedTools {
		if !found {
			t.Errorf("expected tool %q not registered", name)
		}
	}
}

func TestHandleScanProject(t *testing.T) {
	deps := cfmcp.ServerDeps{Scanner: &mockScanner{report: sampleReport()}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	result := callTool(t, s, "scan_project", map[string]any{"path": "/tmp/demo"})
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}

	var report scan.Report
	if err := json.Unmarshal([]byte(resultText(t, result)), &report); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if report.Primary() != "python" {
		t.Errorf("expected primary python, got %q", report.Primary())
	}
	if report.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", report.Confidence)
	}
}

func TestHandleScanProjectFailure(t *testing.T) {
	deps := cfmcp.ServerDeps{Scanner: &mockScanner{err: errors.New("no such directory")}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	result := callTool(t, s, "scan_project", map[string]any{"path": "/does/not/exist"})
	// Scan failures travel in-band, not as protocol errors.
	if result.IsError {
		t.Fatalf("expected in-band error, got error result: %v", result.Content)
	}

	var er scan.ErrorReport
	if err := json.Unmarshal([]byte(resultText(t, result)), &er); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if er.Path != "/does/not/exist" {
		t.Errorf("expected resolved path, got %q", er.Path)
	}
	if er.Error != "no such directory" {
		t.Errorf("unexpected error text: %q", er.Error)
	}
}

func TestHandleScanProjectMissingArg(t *testing.T) {
	deps := cfmcp.ServerDeps{Scanner: &mockScanner{report: sampleReport()}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	result := callTool(t, s, "scan_project", nil)
	if !result.IsError {
		t.Fatal("expected error result for missing path")
	}
}

func TestHandleGenerateContext(t *testing.T) {
	doc := "# LLM Context - demo\n\ncontent"
	deps := cfmcp.ServerDeps{Generator: &mockGenerator{doc: doc}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	result := callTool(t, s, "generate_context", map[string]any{
		"path":         "/tmp/demo",
		"project_name": "demo",
	})
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}
	if got := resultText(t, result); got != doc {
		t.Errorf("expected document text, got %q", got)
	}
}

func TestHandleGenerateContextScanFailure(t *testing.T) {
	deps := cfmcp.ServerDeps{Generator: &mockGenerator{err: errors.New("path does not exist: /x")}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	result := callTool(t, s, "generate_context", map[string]any{"path": "/x"})
	if result.IsError {
		t.Fatalf("expected in-band error text, got error result: %v", result.Content)
	}
	got := resultText(t, result)
	if !strings.HasPrefix(got, "Error: Cannot generate context - ") {
		t.Errorf("unexpected failure text: %q", got)
	}
}

func TestHandleShowCopyInstructions(t *testing.T) {
	deps := cfmcp.ServerDeps{Instructions: mockInstructions{}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	result := callTool(t, s, "show_copy_instructions", nil)
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}
	if got := resultText(t, result); got != "# Using Your Generated Context" {
		t.Errorf("unexpected instructions: %q", got)
	}
}

func TestHandleEstimateTokens(t *testing.T) {
	deps := cfmcp.ServerDeps{Estimator: &mockEstimator{
		est: &tokens.Estimate{File: "LLM_CONTEXT.md", EstimatedTokens: 1200, Potential: "medium"},
	}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	result := callTool(t, s, "estimate_tokens", map[string]any{"context_file": "LLM_CONTEXT.md"})
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}

	var est tokens.Estimate
	if err := json.Unmarshal([]byte(resultText(t, result)), &est); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if est.EstimatedTokens != 1200 {
		t.Errorf("expected 1200 tokens, got %d", est.EstimatedTokens)
	}
}

func TestHandleEstimateTokensMissingFile(t *testing.T) {
	deps := cfmcp.ServerDeps{Estimator: &mockEstimator{err: errors.New("File not found: gone.md")}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	result := callTool(t, s, "estimate_tokens", map[string]any{"context_file": "gone.md"})
	if result.IsError {
		t.Fatalf("expected in-band error, got error result: %v", result.Content)
	}

	var ee tokens.ErrorEstimate
	if err := json.Unmarshal([]byte(resultText(t, result)), &ee); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if ee.Error != "File not found: gone.md" {
		t.Errorf("unexpected error text: %q", ee.Error)
	}
	if ee.EstimatedTokens != 0 {
		t.Errorf("expected 0 tokens, got %d", ee.EstimatedTokens)
	}
}

func TestHandleOptimizeContext(t *testing.T) {
	deps := cfmcp.ServerDeps{Estimator: &mockEstimator{
		opt: &tokens.Optimization{
			File:          "LLM_CONTEXT.md",
			CurrentTokens: 6000,
			Suggestions: []tokens.Suggestion{
				{Type: "repetition", Priority: "high", TokenSavings: 120},
			},
			PotentialSavings: 120,
			Difficulty:       "easy",
		},
	}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	result := callTool(t, s, "optimize_context", map[string]any{"context_file": "LLM_CONTEXT.md"})
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}

	var opt tokens.Optimization
	if err := json.Unmarshal([]byte(resultText(t, result)), &opt); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if opt.PotentialSavings != 120 {
		t.Errorf("expected savings 120, got %d", opt.PotentialSavings)
	}
	if len(opt.Suggestions) != 1 || opt.Suggestions[0].Type != "repetition" {
		t.Errorf("unexpected suggestions: %+v", opt.Suggestions)
	}
}

func TestHandleMissingContextFileArg(t *testing.T) {
	deps := cfmcp.ServerDeps{Estimator: &mockEstimator{}}
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)

	for _, tool := range []string{"estimate_tokens", "optimize_context"} {
		result := callTool(t, s, tool, nil)
		if !result.IsError {
			t.Errorf("%s: expected error result for missing context_file", tool)
		}
	}
}

func TestHandleNilDeps(t *testing.T) {
	s := cfmcp.NewServer(cfmcp.ServerConfig{Name: "test", Version: "0.1.0"}, cfmcp.ServerDeps{})

	for _, tool := range []string{
		"scan_project",
		"generate_context",
		"show_copy_instructions",
		"estimate_tokens",
		"optimize_context",
	} {
		result := callTool(t, s, tool, map[string]any{
			"path": "/tmp", "context_file": "x.md",
		})
		if !result.IsError {
			t.Errorf("%s: expected error result when deps are nil", tool)
		}
	}
}

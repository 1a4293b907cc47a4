package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/ContextForge/internal/domain/scan"
	"github.com/Strob0t/ContextForge/internal/domain/tokens"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.scanProjectTool(),
		s.generateContextTool(),
		s.showCopyInstructionsTool(),
		s.estimateTokensTool(),
		s.optimizeContextTool(),
	)
}

func (s *Server) scanProjectTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("scan_project",
		mcplib.WithDescription("Scan a project directory to detect its language and applicable coding standards"),
		mcplib.WithString("path",
			mcplib.Required(),
			mcplib.Description("Path to the project directory to scan"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleScanProject,
	}
}

func (s *Server) generateContextTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("generate_context",
		mcplib.WithDescription("Generate a universal LLM context document for a project directory"),
		mcplib.WithString("path",
			mcplib.Required(),
			mcplib.Description("Path to the project directory"),
		),
		mcplib.WithString("project_name",
			mcplib.Description("Override the project name derived from the directory"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleGenerateContext,
	}
}

func (s *Server) showCopyInstructionsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("show_copy_instructions",
		mcplib.WithDescription("Show instructions for using a generated context file with different LLMs"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleShowCopyInstructions,
	}
}

func (s *Server) estimateTokensTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("estimate_tokens",
		mcplib.WithDescription("Estimate token usage and per-model cost for a context file"),
		mcplib.WithString("context_file",
			mcplib.Required(),
			mcplib.Description("Path to the context file to analyze"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleEstimateTokens,
	}
}

func (s *Server) optimizeContextTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("optimize_context",
		mcplib.WithDescription("Suggest token optimizations for a context file"),
		mcplib.WithString("context_file",
			mcplib.Required(),
			mcplib.Description("Path to the context file to analyze"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleOptimizeContext,
	}
}

func (s *Server) handleScanProject(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Scanner == nil {
		return mcplib.NewToolResultError("scanner not configured"), nil
	}
	args := req.GetArguments()
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcplib.NewToolResultError("path is required"), nil
	}
	report, err := s.deps.Scanner.Scan(ctx, path)
	if err != nil {
		return errorReportResult(path, err), nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal scan report", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleGenerateContext(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Generator == nil {
		return mcplib.NewToolResultError("generator not configured"), nil
	}
	args := req.GetArguments()
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcplib.NewToolResultError("path is required"), nil
	}
	projectName, _ := args["project_name"].(string)

	doc, err := s.deps.Generator.Generate(ctx, path, projectName)
	if err != nil {
		return mcplib.NewToolResultText("Error: Cannot generate context - " + err.Error()), nil
	}
	return mcplib.NewToolResultText(doc), nil
}

func (s *Server) handleShowCopyInstructions(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Instructions == nil {
		return mcplib.NewToolResultError("instructions not configured"), nil
	}
	return mcplib.NewToolResultText(s.deps.Instructions.CopyInstructions()), nil
}

func (s *Server) handleEstimateTokens(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Estimator == nil {
		return mcplib.NewToolResultError("estimator not configured"), nil
	}
	args := req.GetArguments()
	contextFile, ok := args["context_file"].(string)
	if !ok || contextFile == "" {
		return mcplib.NewToolResultError("context_file is required"), nil
	}
	est, err := s.deps.Estimator.EstimateFile(ctx, contextFile)
	if err != nil {
		return errorEstimateResult(err), nil
	}
	data, err := json.Marshal(est)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal estimate", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleOptimizeContext(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Estimator == nil {
		return mcplib.NewToolResultError("estimator not configured"), nil
	}
	args := req.GetArguments()
	contextFile, ok := args["context_file"].(string)
	if !ok || contextFile == "" {
		return mcplib.NewToolResultError("context_file is required"), nil
	}
	opt, err := s.deps.Estimator.OptimizeFile(ctx, contextFile)
	if err != nil {
		return errorEstimateResult(err), nil
	}
	data, err := json.Marshal(opt)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal suggestions", err), nil
	}
	return toolResultJSON(string(data)), nil
}

// errorReportResult shapes a failed scan as the in-band error JSON the
// tool contract promises: resolved path plus the failure message.
func errorReportResult(path string, err error) *mcplib.CallToolResult {
	resolved, rerr := scan.ResolvePath(path)
	if rerr != nil {
		resolved = path
	}
	data, merr := json.Marshal(scan.NewErrorReport(resolved, err))
	if merr != nil {
		return mcplib.NewToolResultErrorFromErr("scan failed", err)
	}
	return toolResultJSON(string(data))
}

// errorEstimateResult shapes an unreadable context file as the in-band
// estimate error, with estimated_tokens pinned to zero.
func errorEstimateResult(err error) *mcplib.CallToolResult {
	data, merr := json.Marshal(tokens.ErrorEstimate{Error: err.Error()})
	if merr != nil {
		return mcplib.NewToolResultErrorFromErr("estimate failed", err)
	}
	return toolResultJSON(string(data))
}

// toolResultJSON wraps pre-marshaled JSON as a text tool result.
func toolResultJSON(data string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(data)
}

package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"contextforge://rules/languages",
			"Detection Rules",
			mcplib.WithResourceDescription("Language detection rules and standards mapping"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleLanguagesResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			"contextforge://instructions/copy",
			"Copy Instructions",
			mcplib.WithResourceDescription("How to use a generated context file with different LLMs"),
			mcplib.WithMIMEType("text/markdown"),
		),
		s.handleInstructionsResource,
	)
}

// languageInfo is the resource view of one detection rule.
type languageInfo struct {
	Language    string   `json:"language"`
	Description string   `json:"description"`
	Files       []string `json:"files"`
	Mandatory   []string `json:"mandatory_files,omitempty"`
	Standards   []string `json:"standards,omitempty"`
}

// languagesView is the resource view of the detection table. An array
// keeps the table's declaration order, which a JSON object would lose.
type languagesView struct {
	Languages     []languageInfo `json:"languages"`
	PriorityOrder []string       `json:"priority_order"`
}

func (s *Server) handleLanguagesResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Rules == nil {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     `{"error":"rules source not configured"}`,
			},
		}, nil
	}

	table, err := s.deps.Rules.Table(ctx)
	if err != nil && table.Empty() {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     `{"error":"detection rules unavailable"}`,
			},
		}, nil
	}

	view := languagesView{
		Languages:     make([]languageInfo, 0, len(table.Rules)),
		PriorityOrder: table.Priority,
	}
	for _, r := range table.Rules {
		view.Languages = append(view.Languages, languageInfo{
			Language:    r.Language,
			Description: r.Description,
			Files:       r.FilePatterns,
			Mandatory:   r.Mandatory,
			Standards:   r.Standards,
		})
	}

	data, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleInstructionsResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Instructions == nil {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     "copy instructions not configured",
			},
		}, nil
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     s.deps.Instructions.CopyInstructions(),
		},
	}, nil
}

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/docqa/internal/index"
	"github.com/ziadkadry99/docqa/internal/qa"
	"github.com/ziadkadry99/docqa/internal/session"
)

const noDocumentsMessage = "No documents are indexed yet. Start the server with files (`docqa mcp FILE...`) or a saved index (`docqa mcp --index DIR`)."

// handleAskDocuments answers a question from the indexed documents.
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	res, err := s.sess.Ask(ctx, question)
	if err != nil {
		if errors.Is(err, session.ErrNoDocuments) {
			return mcp.NewToolResultError(noDocumentsMessage), nil
		}
		s.logger.Warn("ask_documents failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(res.Answer)
	sb.WriteString("\n")
	if len(res.Sources) > 0 {
		sb.WriteString("\nSources:\n")
		sb.WriteString(formatMatches(res.Sources))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSearchDocuments returns the passages closest to a query.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 0)

	matches, err := s.sess.Search(ctx, query, limit)
	if err != nil {
		if errors.Is(err, session.ErrNoDocuments) {
			return mcp.NewToolResultError(noDocumentsMessage), nil
		}
		s.logger.Warn("search_documents failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(matches) == 0 {
		return mcp.NewToolResultText("No results found. The index is empty."), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d result(s):\n%s", len(matches), formatMatches(matches))), nil
}

// handleListDocuments describes the active index.
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, ok := s.sess.Summary()
	if !ok {
		return mcp.NewToolResultError(noDocumentsMessage), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Model: %s\n", summary.Model))
	sb.WriteString(fmt.Sprintf("Segments: %d\n", summary.Segments))
	sb.WriteString("Files:\n")
	for _, f := range summary.Files {
		sb.WriteString("- " + f + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatMatches renders retrieved passages for agent consumption.
func formatMatches(matches []index.Match) string {
	var sb strings.Builder
	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("\n--- %s ---\n", qa.SourceLabel(i+1, m.Segment)))
		sb.WriteString(fmt.Sprintf("Source: %s\n", m.Segment.Metadata.Source))
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", m.Score*100))
		sb.WriteString("\n")
		sb.WriteString(m.Segment.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

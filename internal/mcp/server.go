package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"flowledger/internal/services"
)

// Server exposes the versioning engine over the MCP protocol so agent
// clients can inspect and roll back workflow definitions.
type Server struct {
	mcpServer *server.MCPServer
	versions  services.Versioner
}

func NewServer(versions services.Versioner) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Workflow Versioning",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		versions: versions,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_current_version",
			mcp.WithDescription("Get the active version and definition snapshot of a workflow"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The workflow to inspect")),
		),
		s.handleGetCurrentVersion,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"version_history",
			mcp.WithDescription("List all versions of a workflow, newest first"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The workflow to inspect")),
		),
		s.handleVersionHistory,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"compare_versions",
			mcp.WithDescription("Diff two versions of a workflow and classify compatibility"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The workflow to inspect")),
			mcp.WithString("from", mcp.Required(), mcp.Description("The old version, e.g. 1.0.0")),
			mcp.WithString("to", mcp.Required(), mcp.Description("The new version, e.g. 1.2.0")),
		),
		s.handleCompareVersions,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"rollback_version",
			mcp.WithDescription("Create a new version carrying a historical version's content"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The workflow to roll back")),
			mcp.WithString("target_version", mcp.Required(), mcp.Description("The version to roll back to, e.g. 1.2.0")),
			mcp.WithString("reason", mcp.Required(), mcp.Description("Why the rollback is needed")),
		),
		s.handleRollbackVersion,
	)
}

func (s *Server) handleGetCurrentVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, ok := args["workflow_id"].(string)
	if !ok || workflowID == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}

	current, err := s.versions.GetCurrentVersion(ctx, workflowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get current version: %v", err)), nil
	}
	if current == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Workflow %s has no versions", workflowID)), nil
	}

	jsonBytes, _ := json.Marshal(current)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleVersionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, ok := args["workflow_id"].(string)
	if !ok || workflowID == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}

	history, err := s.versions.GetVersionHistory(ctx, workflowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list history: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(history)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleCompareVersions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, _ := args["workflow_id"].(string)
	from, _ := args["from"].(string)
	to, _ := args["to"].(string)
	if workflowID == "" || from == "" || to == "" {
		return mcp.NewToolResultError("Missing required parameters: workflow_id, from, to"), nil
	}

	result, err := s.versions.CompareVersions(ctx, workflowID, from, to)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compare versions: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleRollbackVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, _ := args["workflow_id"].(string)
	targetVersion, _ := args["target_version"].(string)
	reason, _ := args["reason"].(string)
	if workflowID == "" || targetVersion == "" || reason == "" {
		return mcp.NewToolResultError("Missing required parameters: workflow_id, target_version, reason"), nil
	}

	def, err := s.versions.RollbackToVersion(ctx, workflowID, targetVersion, reason, "mcp-client")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to roll back: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(def)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}

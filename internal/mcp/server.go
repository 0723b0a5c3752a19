package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hiveintelligencexyz/hive-mcp/internal/audit"
	"github.com/hiveintelligencexyz/hive-mcp/pkg/logger"
)

// maxMessageSize bounds a single protocol line on stdin.
const maxMessageSize = 10 * 1024 * 1024

// ToolHandler executes one tool invocation. A returned *Error is sent to
// the caller as-is; any other error is wrapped as an internal error.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*ToolResult, error)

// Tool describes one tool exposed via tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolResult is the content envelope returned by a successful call.
type ToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentItem is a single content entry in a tool result.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NewTextResult wraps text as the single content item of a tool result.
func NewTextResult(text string) *ToolResult {
	return &ToolResult{
		Content: []ContentItem{{Type: "text", Text: text}},
	}
}

type registeredTool struct {
	tool    Tool
	handler ToolHandler
}

// Server is a stdio MCP server. It reads newline-delimited JSON-RPC
// messages from one stream and writes responses to another, handling
// calls sequentially. Tool invocations are independent; no state is
// shared across dispatches.
type Server struct {
	name    string
	version string
	tools   []registeredTool
	auditor *audit.Store
}

// NewServer creates a server that identifies itself with the given name
// and version during the initialize handshake.
func NewServer(name, version string) *Server {
	return &Server{name: name, version: version}
}

// RegisterTool adds a tool to the server. Registration order is the
// tools/list order.
func (s *Server) RegisterTool(tool Tool, handler ToolHandler) {
	s.tools = append(s.tools, registeredTool{tool: tool, handler: handler})
}

// SetAuditor attaches an optional invocation audit store.
func (s *Server) SetAuditor(store *audit.Store) {
	s.auditor = store
}

// Serve reads messages until EOF or context cancellation. Notifications
// produce no output; everything else produces exactly one response line.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp := s.handleMessage(ctx, []byte(line))
		if resp == nil {
			continue
		}
		if err := writeMessage(w, resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request stream: %w", err)
	}
	return nil
}

func writeMessage(w io.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// handleMessage dispatches one raw message. A nil return means no
// response is owed (notification).
func (s *Server) handleMessage(ctx context.Context, raw []byte) *Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return newErrorResponse(nil, NewError(CodeParseError, "failed to parse message"))
	}

	if req.Method == "" {
		if req.ID == nil {
			return nil
		}
		return newErrorResponse(req.ID, NewError(CodeInvalidRequest, "method is required"))
	}

	switch req.Method {
	case "initialize":
		return newResponse(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		})
	case "ping":
		return newResponse(req.ID, struct{}{})
	case "tools/list":
		return newResponse(req.ID, s.listTools())
	case "tools/call":
		return s.callTool(ctx, &req)
	default:
		if req.ID == nil {
			// Notifications for unknown or lifecycle methods are dropped.
			return nil
		}
		return newErrorResponse(req.ID, Errorf(CodeMethodNotFound, "method not found: %s", req.Method))
	}
}

func (s *Server) listTools() listToolsResult {
	tools := make([]Tool, 0, len(s.tools))
	for _, rt := range s.tools {
		tools = append(tools, rt.tool)
	}
	return listToolsResult{Tools: tools}
}

// callTool validates the operation name, runs the handler, and returns
// failures as protocol-level errors, never as successful results with
// error content.
func (s *Server) callTool(ctx context.Context, req *Request) *Response {
	start := time.Now()
	traceID := uuid.NewString()
	log := logger.WithTraceID(traceID)

	var params toolsCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return newErrorResponse(req.ID, NewError(CodeInvalidParams, "invalid tools/call params"))
		}
	}
	if params.Name == "" {
		return newErrorResponse(req.ID, NewError(CodeInvalidParams, "tool name is required"))
	}

	rt, ok := s.findTool(params.Name)
	if !ok {
		log.Warn("unknown tool requested", zap.String("tool", params.Name))
		return newErrorResponse(req.ID, Errorf(CodeMethodNotFound, "Unknown tool: %s", params.Name))
	}

	log.Info("tool call received", zap.String("tool", params.Name))

	result, err := rt.handler(ctx, params.Arguments)

	duration := time.Since(start).Milliseconds()
	if err != nil {
		mcpErr, ok := err.(*Error)
		if !ok {
			mcpErr = NewError(CodeInternalError, err.Error())
		}
		log.Warn("tool call failed",
			zap.String("tool", params.Name),
			zap.Int("code", mcpErr.Code),
			zap.Int64("duration_ms", duration),
		)
		s.record(traceID, params.Name, "error", mcpErr.Code, duration)
		return newErrorResponse(req.ID, mcpErr)
	}

	log.Info("tool call completed",
		zap.String("tool", params.Name),
		zap.Int64("duration_ms", duration),
	)
	s.record(traceID, params.Name, "ok", 0, duration)
	return newResponse(req.ID, result)
}

func (s *Server) findTool(name string) (registeredTool, bool) {
	for _, rt := range s.tools {
		if rt.tool.Name == name {
			return rt, true
		}
	}
	return registeredTool{}, false
}

func (s *Server) record(traceID, tool, outcome string, code int, durationMS int64) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(&audit.InvocationRecord{
		TraceID:    traceID,
		Tool:       tool,
		Outcome:    outcome,
		ErrorCode:  code,
		DurationMS: durationMS,
		Timestamp:  time.Now().Unix(),
	}); err != nil {
		logger.Warn("failed to record invocation", zap.Error(err))
	}
}

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/internal/engine"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "gandalf"
	serverVersion   = "0.1.0"
)

// Server exposes the ranking engine over the MCP protocol on stdio
type Server struct {
	engine *engine.Engine
	reader *bufio.Reader
	writer io.Writer
	log    zerolog.Logger
}

// NewServer creates an MCP server around an engine
func NewServer(e *engine.Engine, log zerolog.Logger) *Server {
	return &Server{
		engine: e,
		reader: bufio.NewReader(os.Stdin),
		writer: os.Stdout,
		log:    log,
	}
}

// Run serves JSON-RPC requests until stdin closes. All logging goes
// to stderr; stdout carries only protocol traffic.
func (s *Server) Run(ctx context.Context) error {
	for {
		line, err := s.reader.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		var req JSONRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.sendError(nil, -32700, "Parse error")
			continue
		}

		s.handleRequest(ctx, &req)
	}
}

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type JSONRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleRequest(ctx context.Context, req *JSONRPCRequest) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	case "notifications/initialized":
		// Notification, no response.
	default:
		s.sendError(req.ID, -32601, "Method not found")
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) {
	result := map[string]any{
		"protocolVersion": protocolVersion,
		"serverInfo": map[string]string{
			"name":    serverName,
			"version": serverVersion,
		},
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
	}
	s.sendResult(req.ID, result)
}

func (s *Server) handleToolsList(req *JSONRPCRequest) {
	tools := []map[string]any{
		{
			"name":        "gandalf_recall_conversations",
			"description": "Rank prior AI conversations by relevance to the current project",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{
						"type":        "number",
						"description": "Maximum conversations returned",
						"default":     10,
					},
					"light": map[string]any{
						"type":        "boolean",
						"description": "Return id/title/score listings only",
						"default":     false,
					},
					"max_bytes": map[string]any{
						"type":        "number",
						"description": "Serialized-size budget for the result set",
					},
				},
			},
		},
		{
			"name":        "gandalf_rank_files",
			"description": "Rank project files into priority tiers for context selection",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"top_n": map[string]any{
						"type":        "number",
						"description": "How many top files to list",
						"default":     20,
					},
					"active_files": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Files currently in play, for relationship scoring",
					},
				},
			},
		},
		{
			"name":        "gandalf_status",
			"description": "Report source availability and cache statistics",
			"inputSchema": map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}

	s.sendResult(req.ID, map[string]any{"tools": tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req *JSONRPCRequest) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, -32602, "Invalid params")
		return
	}

	switch params.Name {
	case "gandalf_recall_conversations":
		s.handleRecall(ctx, req, params.Arguments)
	case "gandalf_rank_files":
		s.handleRankFiles(ctx, req, params.Arguments)
	case "gandalf_status":
		s.handleStatus(req)
	default:
		s.sendError(req.ID, -32602, "Unknown tool")
	}
}

func (s *Server) handleRecall(ctx context.Context, req *JSONRPCRequest, args json.RawMessage) {
	var params struct {
		Limit    int  `json:"limit"`
		Light    bool `json:"light"`
		MaxBytes int  `json:"max_bytes"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			s.sendError(req.ID, -32602, "Invalid arguments")
			return
		}
	}

	result, err := s.engine.Recall(ctx, engine.RecallOptions{
		Limit:    params.Limit,
		Light:    params.Light,
		MaxBytes: params.MaxBytes,
	})
	if err != nil {
		s.sendError(req.ID, -32000, err.Error())
		return
	}

	s.sendJSON(req.ID, result)
}

func (s *Server) handleRankFiles(ctx context.Context, req *JSONRPCRequest, args json.RawMessage) {
	var params struct {
		TopN        int      `json:"top_n"`
		ActiveFiles []string `json:"active_files"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			s.sendError(req.ID, -32602, "Invalid arguments")
			return
		}
	}

	result, err := s.engine.RankFiles(ctx, engine.FilesOptions{
		TopN:        params.TopN,
		ActiveFiles: params.ActiveFiles,
	})
	if err != nil {
		s.sendError(req.ID, -32000, err.Error())
		return
	}

	s.sendJSON(req.ID, result)
}

func (s *Server) handleStatus(req *JSONRPCRequest) {
	s.sendJSON(req.ID, s.engine.Status())
}

// sendJSON wraps a result in MCP's text content envelope
func (s *Server) sendJSON(id any, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.sendError(id, -32000, err.Error())
		return
	}
	s.sendResult(id, map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(data)},
		},
	})
}

func (s *Server) sendResult(id any, result any) {
	s.send(JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) sendError(id any, code int, message string) {
	s.send(JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}})
}

func (s *Server) send(resp JSONRPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal response")
		return
	}
	fmt.Fprintf(s.writer, "%s\n", data)
}

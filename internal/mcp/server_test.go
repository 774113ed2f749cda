package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/internal/config"
	"github.com/bluekornchips/gandalf/internal/engine"
)

// runServer feeds newline-delimited requests through the loop and
// returns the decoded responses.
func runServer(t *testing.T, input string) []JSONRPCResponse {
	t.Helper()

	e := engine.New(t.TempDir(), config.Default(), nil, zerolog.Nop())
	var out bytes.Buffer
	s := &Server{
		engine: e,
		reader: bufio.NewReader(strings.NewReader(input)),
		writer: &out,
		log:    zerolog.Nop(),
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var responses []JSONRPCResponse
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp JSONRPCResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("malformed response line %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	responses := runServer(t, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`+"\n")
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	result := responses[0].Result.(map[string]any)
	if result["protocolVersion"] != protocolVersion {
		t.Fatalf("protocolVersion=%v, want %s", result["protocolVersion"], protocolVersion)
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != serverName {
		t.Fatalf("serverInfo.name=%v, want %s", info["name"], serverName)
	}
}

func TestToolsList(t *testing.T) {
	t.Parallel()

	responses := runServer(t, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`+"\n")
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	result := responses[0].Result.(map[string]any)
	tools := result["tools"].([]any)
	if len(tools) != 3 {
		t.Fatalf("len(tools)=%d, want 3", len(tools))
	}

	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.(map[string]any)["name"].(string)] = true
	}
	for _, want := range []string{"gandalf_recall_conversations", "gandalf_rank_files", "gandalf_status"} {
		if !names[want] {
			t.Fatalf("missing tool %q in %v", want, names)
		}
	}
}

func TestToolsCall_Status(t *testing.T) {
	t.Parallel()

	input := `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"gandalf_status","arguments":{}}}` + "\n"
	responses := runServer(t, input)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	result := responses[0].Result.(map[string]any)
	content := result["content"].([]any)
	if len(content) != 1 {
		t.Fatalf("content=%v, want one text block", content)
	}
	block := content[0].(map[string]any)
	if block["type"] != "text" {
		t.Fatalf("content type=%v, want text", block["type"])
	}
	var status engine.Status
	if err := json.Unmarshal([]byte(block["text"].(string)), &status); err != nil {
		t.Fatalf("status payload not valid JSON: %v", err)
	}
}

func TestUnknownMethod(t *testing.T) {
	t.Parallel()

	responses := runServer(t, `{"jsonrpc":"2.0","id":4,"method":"resources/list"}`+"\n")
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("responses=%v, want method-not-found error", responses)
	}
	if responses[0].Error.Code != -32601 {
		t.Fatalf("code=%d, want -32601", responses[0].Error.Code)
	}
}

func TestParseError(t *testing.T) {
	t.Parallel()

	responses := runServer(t, "not json\n")
	if len(responses) != 1 || responses[0].Error == nil || responses[0].Error.Code != -32700 {
		t.Fatalf("responses=%v, want parse error", responses)
	}
}

func TestNotificationHasNoResponse(t *testing.T) {
	t.Parallel()

	responses := runServer(t, `{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n")
	if len(responses) != 0 {
		t.Fatalf("responses=%v, want none for a notification", responses)
	}
}

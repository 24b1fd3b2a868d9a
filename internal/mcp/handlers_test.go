package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/berrypatch/member-berries/internal/tools"
	"github.com/berrypatch/member-berries/pkg/protocol"
	"github.com/berrypatch/member-berries/pkg/version"
)

type echoTool struct{}

func (echoTool) Name() string            { return "echo" }
func (echoTool) Description() string     { return "echoes" }
func (echoTool) Schema() json.RawMessage { return json.RawMessage(`{"type": "object"}`) }
func (echoTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"message": "echoed"}, nil
}

type panicTool struct{}

func (panicTool) Name() string            { return "boom" }
func (panicTool) Description() string     { return "panics" }
func (panicTool) Schema() json.RawMessage { return json.RawMessage(`{"type": "object"}`) }
func (panicTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	panic("kaboom")
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	reg := tools.NewRegistry()
	if err := reg.Register(echoTool{}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(panicTool{}); err != nil {
		t.Fatal(err)
	}
	return NewHandler(reg)
}

func request(t *testing.T, method string, params interface{}) *jsonrpc2.Request {
	t.Helper()
	req := &jsonrpc2.Request{Method: method, ID: jsonrpc2.ID{Num: 1}}
	if params != nil {
		if err := req.SetParams(params); err != nil {
			t.Fatal(err)
		}
	}
	return req
}

func TestDispatchInitialize(t *testing.T) {
	h := newTestHandler(t)
	result, rpcErr := h.Dispatch(context.Background(), request(t, "initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]string{"name": "test-client", "version": "0.1"},
	}))
	if rpcErr != nil {
		t.Fatalf("Dispatch(initialize) error: %v", rpcErr)
	}

	m := result.(map[string]interface{})
	if m["protocolVersion"] != "2024-11-05" {
		t.Errorf("negotiated version = %v", m["protocolVersion"])
	}
	info := m["serverInfo"].(map[string]interface{})
	if info["name"] != "Member Berries" {
		t.Errorf("serverInfo.name = %v", info["name"])
	}
	if h.clientInfo.Name != "test-client" {
		t.Errorf("clientInfo = %+v", h.clientInfo)
	}
}

func TestDispatchInitializeUnknownVersion(t *testing.T) {
	h := newTestHandler(t)
	result, rpcErr := h.Dispatch(context.Background(), request(t, "initialize", map[string]interface{}{
		"protocolVersion": "1999-01-01",
	}))
	if rpcErr != nil {
		t.Fatal(rpcErr)
	}
	m := result.(map[string]interface{})
	if m["protocolVersion"] != version.ProtocolVersion {
		t.Errorf("negotiated version = %v, want server default", m["protocolVersion"])
	}
}

func TestDispatchListTools(t *testing.T) {
	h := newTestHandler(t)
	result, rpcErr := h.Dispatch(context.Background(), request(t, "tools/list", nil))
	if rpcErr != nil {
		t.Fatal(rpcErr)
	}

	m := result.(map[string]interface{})
	list := m["tools"].([]protocol.Tool)
	if len(list) != 2 {
		t.Fatalf("tools/list returned %d tools", len(list))
	}
	if list[0].Name != "echo" || list[1].Name != "boom" {
		t.Errorf("tool order = %q, %q", list[0].Name, list[1].Name)
	}
}

func TestDispatchCallTool(t *testing.T) {
	h := newTestHandler(t)
	result, rpcErr := h.Dispatch(context.Background(), request(t, "tools/call", map[string]interface{}{
		"name":      "echo",
		"arguments": map[string]interface{}{},
	}))
	if rpcErr != nil {
		t.Fatal(rpcErr)
	}

	res := result.(*protocol.CallResult)
	if res.IsError {
		t.Fatalf("call reported error: %+v", res)
	}
	if len(res.Content) != 1 || res.Content[0].Text != "echoed" {
		t.Errorf("content = %+v", res.Content)
	}
}

// Unknown tools come back as isError tool results, never JSON-RPC errors.
func TestDispatchCallUnknownTool(t *testing.T) {
	h := newTestHandler(t)
	result, rpcErr := h.Dispatch(context.Background(), request(t, "tools/call", map[string]interface{}{
		"name": "missing",
	}))
	if rpcErr != nil {
		t.Fatalf("unknown tool surfaced as JSON-RPC error: %v", rpcErr)
	}

	res := result.(*protocol.CallResult)
	if !res.IsError {
		t.Fatal("expected isError result")
	}
	if !strings.Contains(res.Content[0].Text, "missing") {
		t.Errorf("error text = %q", res.Content[0].Text)
	}
	if !strings.Contains(res.Content[0].Text, "-32601") {
		t.Errorf("error text does not carry the code: %q", res.Content[0].Text)
	}
}

func TestDispatchCallToolPanic(t *testing.T) {
	h := newTestHandler(t)
	result, rpcErr := h.Dispatch(context.Background(), request(t, "tools/call", map[string]interface{}{
		"name": "boom",
	}))
	if rpcErr != nil {
		t.Fatalf("panic surfaced as JSON-RPC error: %v", rpcErr)
	}
	res := result.(*protocol.CallResult)
	if !res.IsError {
		t.Error("panic did not produce an isError result")
	}
}

func TestDispatchCallToolMissingName(t *testing.T) {
	h := newTestHandler(t)
	_, rpcErr := h.Dispatch(context.Background(), request(t, "tools/call", map[string]interface{}{}))
	if rpcErr == nil || rpcErr.Code != jsonrpc2.CodeInvalidParams {
		t.Errorf("rpcErr = %v, want invalid params", rpcErr)
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	h := newTestHandler(t)
	_, rpcErr := h.Dispatch(context.Background(), request(t, "resources/list", nil))
	if rpcErr == nil || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("rpcErr = %v, want method not found", rpcErr)
	}
}

func TestDispatchPing(t *testing.T) {
	h := newTestHandler(t)
	result, rpcErr := h.Dispatch(context.Background(), request(t, "ping", nil))
	if rpcErr != nil {
		t.Fatal(rpcErr)
	}
	if _, ok := result.(map[string]interface{}); !ok {
		t.Errorf("ping result = %T", result)
	}
}

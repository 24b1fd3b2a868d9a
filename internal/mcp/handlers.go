package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/berrypatch/member-berries/internal/logger"
	"github.com/berrypatch/member-berries/internal/tools"
	"github.com/berrypatch/member-berries/pkg/protocol"
	"github.com/berrypatch/member-berries/pkg/version"
)

const toolCallTimeout = 4 * time.Minute

type ClientInfo struct {
	Name    string
	Version string
}

// Handler dispatches MCP methods. Tool execution failures never escape as
// JSON-RPC errors; they come back as isError tool results so the caller
// always sees a well-formed payload.
type Handler struct {
	registry    *tools.Registry
	startTime   time.Time
	initialized bool
	clientInfo  ClientInfo
}

func NewHandler(registry *tools.Registry) *Handler {
	return &Handler{
		registry:  registry,
		startTime: time.Now(),
	}
}

// Handle implements jsonrpc2.Handler.
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	log := logger.ForComponent("mcp")

	result, rpcErr := h.Dispatch(ctx, req)
	if req.Notif {
		return
	}

	var err error
	if rpcErr != nil {
		err = conn.ReplyWithError(ctx, req.ID, rpcErr)
	} else {
		err = conn.Reply(ctx, req.ID, result)
	}
	if err != nil {
		log.Error("failed to send response", "method", req.Method, "error", err)
	}
}

// Dispatch routes one request and returns either a result or a JSON-RPC
// error. Split from Handle so tests can drive it without a live connection.
func (h *Handler) Dispatch(ctx context.Context, req *jsonrpc2.Request) (interface{}, *jsonrpc2.Error) {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "ping":
		return map[string]interface{}{}, nil
	case "tools/list":
		return h.handleListTools(), nil
	case "tools/call":
		return h.handleCallTool(ctx, req)
	case "notifications/initialized":
		h.initialized = true
		return map[string]interface{}{}, nil
	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}
}

func (h *Handler) handleInitialize(req *jsonrpc2.Request) (interface{}, *jsonrpc2.Error) {
	var initReq struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &initReq); err != nil {
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInvalidParams,
				Message: fmt.Sprintf("failed to parse initialize request: %v", err),
			}
		}
	}

	h.clientInfo = ClientInfo{Name: initReq.ClientInfo.Name, Version: initReq.ClientInfo.Version}

	return map[string]interface{}{
		"protocolVersion": negotiateProtocolVersion(initReq.ProtocolVersion),
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    "Member Berries",
			"version": version.Version,
		},
	}, nil
}

func negotiateProtocolVersion(clientVersion string) string {
	for _, v := range version.SupportedProtocolVersions {
		if clientVersion == v {
			return v
		}
	}
	return version.ProtocolVersion
}

func (h *Handler) handleListTools() interface{} {
	list := h.registry.List()
	out := make([]protocol.Tool, 0, len(list))
	for _, t := range list {
		entry := protocol.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}
		if annotated, ok := t.(tools.AnnotatedTool); ok {
			entry.Title = annotated.Title()
			entry.Annotations = annotated.Annotations()
		}
		out = append(out, entry)
	}
	return map[string]interface{}{"tools": out}
}

func (h *Handler) handleCallTool(ctx context.Context, req *jsonrpc2.Request) (result interface{}, rpcErr *jsonrpc2.Error) {
	log := logger.ForComponent("mcp")

	defer func() {
		if r := recover(); r != nil {
			log.Error("tool panic recovered", "panic", r, "stack", string(debug.Stack()))
			result = protocol.ErrorResult(fmt.Sprintf("tool execution panicked: %v", r))
			rpcErr = nil
		}
	}()

	var callReq struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &callReq); err != nil {
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInvalidParams,
				Message: fmt.Sprintf("failed to parse tool call request: %v", err),
			}
		}
	}
	if callReq.Name == "" {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: "tool name is required",
		}
	}

	out, err := h.registry.ExecuteWithTimeout(ctx, callReq.Name, callReq.Arguments, toolCallTimeout)
	if err != nil {
		var toolErr *tools.ToolError
		if errors.As(err, &toolErr) {
			return protocol.ErrorResult(fmt.Sprintf("Error %d: %s", toolErr.Code, toolErr.Message)), nil
		}
		return protocol.ErrorResult("Error: " + err.Error()), nil
	}
	return toCallResult(out), nil
}

// toCallResult renders a tool result as text content. Results that carry a
// human-readable message use it directly; anything else is serialized.
func toCallResult(out interface{}) *protocol.CallResult {
	if m, ok := out.(map[string]interface{}); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			return protocol.TextResult(msg)
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return protocol.ErrorResult(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return protocol.TextResult(string(data))
}

package protocol

import "encoding/json"

type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type Tool struct {
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	Annotations map[string]bool `json:"annotations,omitempty"`
}

// Content is one entry of a tools/call result payload.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the tools/call response shape. IsError marks tool-level
// failures that still produced a well-formed protocol response.
type CallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

func TextResult(text string) *CallResult {
	return &CallResult{Content: []Content{{Type: "text", Text: text}}}
}

func ErrorResult(text string) *CallResult {
	return &CallResult{Content: []Content{{Type: "text", Text: text}}, IsError: true}
}

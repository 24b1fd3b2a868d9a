package tools

import "fmt"

// ToolError carries the JSON-RPC error code matching the failure class so
// callers can render it alongside the message.
type ToolError struct {
	Code    int
	Message string
	err     error
}

func (e *ToolError) Error() string {
	return e.Message
}

func (e *ToolError) Unwrap() error {
	return e.err
}

func NewToolNotFoundError(name string) *ToolError {
	return &ToolError{
		Code:    -32601,
		Message: fmt.Sprintf("Tool not found: %s", name),
	}
}

func NewInvalidArgumentsError(name string, err error) *ToolError {
	return &ToolError{
		Code:    -32602,
		Message: fmt.Sprintf("Invalid arguments for tool %s: %v", name, err),
		err:     err,
	}
}

func NewToolExecutionError(name string, err error) *ToolError {
	return &ToolError{
		Code:    -32603,
		Message: fmt.Sprintf("Error executing tool %s: %v", name, err),
		err:     err,
	}
}

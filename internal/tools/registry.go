// Package tools defines the Tool contract and the Registry that dispatches
// named operations to tools after validating arguments against each tool's
// declared JSON schema.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, input json.RawMessage) (interface{}, error)
}

// AnnotatedTool optionally exposes MCP tool annotations.
type AnnotatedTool interface {
	Tool
	Title() string
	Annotations() map[string]bool
}

type registered struct {
	tool   Tool
	schema *jsonschema.Schema
}

type Registry struct {
	mu    sync.RWMutex
	tools map[string]registered
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registered)}
}

// Register compiles the tool's input schema and adds the tool. Registration
// order is preserved for listings.
func (r *Registry) Register(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	schema, err := jsonschema.CompileString(name+".schema.json", string(tool.Schema()))
	if err != nil {
		return fmt.Errorf("compile schema for tool %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = registered{tool: tool, schema: schema}
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.tools[name]
	return reg.tool, ok
}

func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name].tool)
	}
	return result
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Execute validates input against the tool's schema, then runs the tool.
// Validation failures are rejected before the tool sees the call.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (interface{}, error) {
	r.mu.RLock()
	reg, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, NewToolNotFoundError(name)
	}

	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	var decoded interface{}
	if err := json.Unmarshal(input, &decoded); err != nil {
		return nil, NewInvalidArgumentsError(name, err)
	}
	if err := reg.schema.Validate(decoded); err != nil {
		return nil, NewInvalidArgumentsError(name, err)
	}

	out, err := reg.tool.Execute(ctx, input)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return nil, err
		}
		return nil, NewToolExecutionError(name, err)
	}
	return out, nil
}

// ExecuteWithTimeout bounds a tool call. The deadline is advisory for tools
// that ignore their context, but every store and collaborator call in this
// codebase threads the context through.
func (r *Registry) ExecuteWithTimeout(ctx context.Context, name string, input json.RawMessage, timeout time.Duration) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.Execute(ctx, name, input)
}

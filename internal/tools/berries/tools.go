// Package berries exposes the memory layer as the memberberries tool.
package berries

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/berrypatch/member-berries/internal/memory"
	"github.com/berrypatch/member-berries/internal/sources"
	"github.com/berrypatch/member-berries/internal/tools"
)

const recentWindow = 24 * time.Hour

type Tool struct {
	store *memory.Store
	cal   sources.Calendar
	gen   *memory.StarterGenerator
}

func New(store *memory.Store, cal sources.Calendar, gen *memory.StarterGenerator) *Tool {
	return &Tool{store: store, cal: cal, gen: gen}
}

func (t *Tool) Name() string {
	return "memberberries"
}

func (t *Tool) Description() string {
	return "Access Member Berries memories - get conversation starters and recent activities to make interactions more natural and friendly"
}

func (t *Tool) Title() string {
	return "Member Berries Memory"
}

func (t *Tool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *Tool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"operation": {
				"type": "string",
				"description": "Operation to perform: 'get_starters' for conversation starters, 'get_memories' for recent memories, or 'check_events' to update memory with completed events",
				"enum": ["get_starters", "get_memories", "check_events"]
			}
		},
		"required": ["operation"]
	}`)
}

func (t *Tool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req struct {
		Operation string `json:"operation"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, err
	}

	switch req.Operation {
	case "get_starters":
		return t.getStarters(), nil
	case "get_memories":
		return t.getMemories(), nil
	case "check_events":
		return t.checkEvents(ctx)
	default:
		return nil, fmt.Errorf("unknown operation: %s", req.Operation)
	}
}

func (t *Tool) getStarters() map[string]interface{} {
	starters := t.store.ConversationStarters()
	message := "No recent conversation starters. Check for completed events first!"
	if len(starters) > 0 {
		message = "Recent conversation starters:\n" + strings.Join(starters, "\n")
	}
	return map[string]interface{}{
		"message":  message,
		"starters": starters,
	}
}

func (t *Tool) getMemories() map[string]interface{} {
	memories := t.store.RecentMemories(recentWindow)
	if len(memories) == 0 {
		return map[string]interface{}{
			"message":  "No recent memories found.",
			"memories": []memory.Berry{},
		}
	}

	var sb strings.Builder
	sb.WriteString("Recent memories:")
	for _, m := range memories {
		fmt.Fprintf(&sb, "\n- %s (%s)", m.Summary, m.Timestamp.Local().Format("Jan 2 15:04"))
	}
	return map[string]interface{}{
		"message":  sb.String(),
		"memories": memories,
	}
}

// checkEvents runs both ingestion passes and surfaces the freshest starter.
// A collaborator failure aborts the whole call; the caller may simply retry.
func (t *Tool) checkEvents(ctx context.Context) (interface{}, error) {
	completed, err := t.store.CheckCompletedEvents(ctx, t.cal, t.gen)
	if err != nil {
		return nil, err
	}
	upcoming, err := t.store.CheckUpcomingEvents(ctx, t.cal)
	if err != nil {
		return nil, err
	}

	message := "Memory updated with recent events!"
	starters := t.store.ConversationStarters()
	if len(starters) > 0 {
		message += "\nSuggested conversation starter: " + starters[0]
	}
	return map[string]interface{}{
		"message":   message,
		"completed": completed,
		"upcoming":  upcoming,
	}, nil
}

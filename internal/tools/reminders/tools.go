// Package reminders adapts the reminders collaborator into the reminders
// tool. Created reminders are logged into the memory layer.
package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/berrypatch/member-berries/internal/logger"
	"github.com/berrypatch/member-berries/internal/memory"
	"github.com/berrypatch/member-berries/internal/sources"
	"github.com/berrypatch/member-berries/internal/tools"
)

type Tool struct {
	reminders sources.Reminders
	store     *memory.Store
}

func New(src sources.Reminders, store *memory.Store) *Tool {
	return &Tool{reminders: src, store: store}
}

func (t *Tool) Name() string {
	return "reminders"
}

func (t *Tool) Description() string {
	return "Search, create, and open reminders (Member Berries)"
}

func (t *Tool) Title() string {
	return "Reminders"
}

func (t *Tool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *Tool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"operation": {
				"type": "string",
				"description": "Operation to perform: 'list', 'search', 'open', 'create', or 'listById'",
				"enum": ["list", "search", "open", "create", "listById"]
			},
			"searchText": {
				"type": "string",
				"description": "Text to search for in reminders (required for search and open operations)"
			},
			"name": {
				"type": "string",
				"description": "Name of the reminder to create (required for create operation)"
			},
			"listName": {
				"type": "string",
				"description": "Name of the list to create the reminder in (optional for create operation)"
			},
			"listId": {
				"type": "string",
				"description": "ID of the list to get reminders from (required for listById operation)"
			},
			"props": {
				"type": "array",
				"items": {"type": "string"},
				"description": "Properties to include in the reminders (optional for listById operation)"
			},
			"notes": {
				"type": "string",
				"description": "Additional notes for the reminder (optional for create operation)"
			},
			"dueDate": {
				"type": "string",
				"description": "Due date for the reminder in ISO format (optional for create operation)"
			}
		},
		"required": ["operation"]
	}`)
}

type request struct {
	Operation  string   `json:"operation"`
	SearchText string   `json:"searchText"`
	Name       string   `json:"name"`
	ListName   string   `json:"listName"`
	ListID     string   `json:"listId"`
	Props      []string `json:"props"`
	Notes      string   `json:"notes"`
	DueDate    string   `json:"dueDate"`
}

func (t *Tool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req request
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, err
	}

	switch req.Operation {
	case "list":
		return t.list(ctx)
	case "search":
		return t.search(ctx, req)
	case "open":
		return t.open(ctx, req)
	case "create":
		return t.create(ctx, req)
	case "listById":
		return t.listByID(ctx, req)
	default:
		return nil, fmt.Errorf("unknown operation: %s", req.Operation)
	}
}

func (t *Tool) list(ctx context.Context) (interface{}, error) {
	lists, err := t.reminders.GetLists(ctx)
	if err != nil {
		return nil, err
	}
	all, err := t.reminders.GetReminders(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"message":   fmt.Sprintf("Found %d lists and %d reminders.", len(lists), len(all)),
		"lists":     lists,
		"reminders": all,
	}, nil
}

func (t *Tool) search(ctx context.Context, req request) (interface{}, error) {
	if req.SearchText == "" {
		return nil, fmt.Errorf("searchText is required for search operation")
	}
	results, err := t.reminders.SearchReminders(ctx, req.SearchText)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("No reminders found matching %q.", req.SearchText)
	if len(results) > 0 {
		message = fmt.Sprintf("Found %d reminders matching %q.", len(results), req.SearchText)
	}
	return map[string]interface{}{"message": message, "reminders": results}, nil
}

func (t *Tool) open(ctx context.Context, req request) (interface{}, error) {
	if req.SearchText == "" {
		return nil, fmt.Errorf("searchText is required for open operation")
	}
	outcome, err := t.reminders.OpenReminder(ctx, req.SearchText)
	if err != nil {
		return nil, err
	}
	if !outcome.Success {
		return nil, fmt.Errorf("%s", outcome.Message)
	}
	return map[string]interface{}{"message": outcome.Message}, nil
}

func (t *Tool) create(ctx context.Context, req request) (interface{}, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required for create operation")
	}

	var due *time.Time
	if req.DueDate != "" {
		ts, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid dueDate: %w", err)
		}
		due = &ts
	}

	created, err := t.reminders.CreateReminder(ctx, req.Name, req.ListName, req.Notes, due)
	if err != nil {
		return nil, err
	}
	if _, err := t.store.RememberReminder(req.Name, due); err != nil {
		logger.ForComponent("reminders").Warn("could not remember reminder", "error", err)
	}

	message := fmt.Sprintf("Created reminder %q", created.Name)
	if req.ListName != "" {
		message += fmt.Sprintf(" in list %q", req.ListName)
	}
	return map[string]interface{}{"message": message + ".", "reminder": created}, nil
}

func (t *Tool) listByID(ctx context.Context, req request) (interface{}, error) {
	if req.ListID == "" {
		return nil, fmt.Errorf("listId is required for listById operation")
	}
	results, err := t.reminders.GetRemindersByList(ctx, req.ListID)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("No reminders found in list with ID %q.", req.ListID)
	if len(results) > 0 {
		message = fmt.Sprintf("Found %d reminders in list with ID %q.", len(results), req.ListID)
	}
	return map[string]interface{}{
		"message":   message,
		"reminders": project(results, req.Props),
	}, nil
}

// project narrows reminders to the requested properties. An empty props list
// keeps everything.
func project(reminders []sources.Reminder, props []string) []map[string]interface{} {
	want := make(map[string]bool, len(props))
	for _, p := range props {
		want[p] = true
	}
	keep := func(key string) bool {
		return len(want) == 0 || want[key]
	}

	out := make([]map[string]interface{}, 0, len(reminders))
	for _, r := range reminders {
		item := make(map[string]interface{})
		if keep("id") {
			item["id"] = r.ID
		}
		if keep("name") {
			item["name"] = r.Name
		}
		if keep("body") {
			item["body"] = r.Body
		}
		if keep("completed") {
			item["completed"] = r.Completed
		}
		if keep("dueDate") && r.DueDate != nil {
			item["dueDate"] = r.DueDate.Format(time.RFC3339)
		}
		if keep("listName") {
			item["listName"] = r.ListName
		}
		out = append(out, item)
	}
	return out
}

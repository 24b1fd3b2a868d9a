// Package notes adapts the notes collaborator into the notes tool. Note
// creation also feeds the memory layer.
package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/berrypatch/member-berries/internal/logger"
	"github.com/berrypatch/member-berries/internal/memory"
	"github.com/berrypatch/member-berries/internal/sources"
	"github.com/berrypatch/member-berries/internal/tools"
)

type Tool struct {
	notes         sources.Notes
	store         *memory.Store
	defaultFolder string
}

func New(src sources.Notes, store *memory.Store, defaultFolder string) *Tool {
	return &Tool{notes: src, store: store, defaultFolder: defaultFolder}
}

func (t *Tool) Name() string {
	return "notes"
}

func (t *Tool) Description() string {
	return "Search, retrieve and create notes (Member Berries)"
}

func (t *Tool) Title() string {
	return "Notes"
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
				"description": "Operation to perform: 'search', 'list', or 'create'",
				"enum": ["search", "list", "create"]
			},
			"searchText": {
				"type": "string",
				"description": "Text to search for in notes (required for search operation)"
			},
			"title": {
				"type": "string",
				"description": "Title of the note to create (required for create operation)"
			},
			"body": {
				"type": "string",
				"description": "Content of the note to create (required for create operation)"
			},
			"folderName": {
				"type": "string",
				"description": "Name of the folder to create the note in, or a glob pattern limiting the list operation (optional)"
			}
		},
		"required": ["operation"]
	}`)
}

func (t *Tool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req struct {
		Operation  string `json:"operation"`
		SearchText string `json:"searchText"`
		Title      string `json:"title"`
		Body       string `json:"body"`
		FolderName string `json:"folderName"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, err
	}

	switch req.Operation {
	case "search":
		if req.SearchText == "" {
			return nil, fmt.Errorf("searchText is required for search operation")
		}
		found, err := t.notes.FindNotes(ctx, req.SearchText)
		if err != nil {
			return nil, fmt.Errorf("error accessing notes: %w", err)
		}
		message := fmt.Sprintf("No notes found for %q", req.SearchText)
		if len(found) > 0 {
			message = formatNotes(found)
		}
		return map[string]interface{}{"message": message, "notes": found}, nil

	case "list":
		all, err := t.notes.ListNotes(ctx, req.FolderName)
		if err != nil {
			return nil, fmt.Errorf("error accessing notes: %w", err)
		}
		message := "No notes exist."
		if len(all) > 0 {
			message = formatNotes(all)
		}
		return map[string]interface{}{"message": message, "notes": all}, nil

	case "create":
		if req.Title == "" || req.Body == "" {
			return nil, fmt.Errorf("title and body are required for create operation")
		}
		folder := req.FolderName
		if folder == "" {
			folder = t.defaultFolder
		}
		note, err := t.notes.CreateNote(ctx, req.Title, req.Body, folder)
		if err != nil {
			return nil, fmt.Errorf("failed to create note: %w", err)
		}
		if _, err := t.store.RememberNote(req.Title, req.Body); err != nil {
			// The note exists; a failed memory write should not undo that.
			logger.ForComponent("notes").Warn("could not remember note", "error", err)
		}
		return map[string]interface{}{
			"message": fmt.Sprintf("Created note %q in folder %q.", note.Name, note.Folder),
			"note":    note,
		}, nil

	default:
		return nil, fmt.Errorf("unknown operation: %s", req.Operation)
	}
}

func formatNotes(notes []sources.Note) string {
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		parts = append(parts, n.Name+":\n"+n.Content)
	}
	return strings.Join(parts, "\n\n")
}

package local

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/berrypatch/member-berries/internal/sources"
)

func (s *Store) FindNotes(ctx context.Context, text string) ([]sources.Note, error) {
	all, err := s.ListNotes(ctx, "")
	if err != nil {
		return nil, err
	}

	var matched []sources.Note
	for _, n := range all {
		if containsFold(n.Name, text) || containsFold(n.Content, text) {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// ListNotes returns notes newest first. A non-empty folderGlob keeps only
// notes whose folder matches the pattern.
func (s *Store) ListNotes(ctx context.Context, folderGlob string) ([]sources.Note, error) {
	if folderGlob != "" {
		if !doublestar.ValidatePattern(folderGlob) {
			return nil, fmt.Errorf("invalid folder pattern %q", folderGlob)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, content, folder, created_at FROM notes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []sources.Note
	for rows.Next() {
		var n sources.Note
		var createdAt string
		if err := rows.Scan(&n.ID, &n.Name, &n.Content, &n.Folder, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt = parseTime(createdAt)

		if folderGlob != "" {
			ok, _ := doublestar.Match(folderGlob, n.Folder)
			if !ok {
				continue
			}
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *Store) CreateNote(ctx context.Context, title, body, folder string) (sources.Note, error) {
	if title == "" {
		return sources.Note{}, fmt.Errorf("note title is required")
	}

	note := sources.Note{
		ID:        s.newID(),
		Name:      title,
		Content:   body,
		Folder:    folder,
		CreatedAt: s.clock().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, name, content, folder, created_at) VALUES (?, ?, ?, ?, ?)`,
		note.ID, note.Name, note.Content, note.Folder, formatTime(note.CreatedAt),
	)
	if err != nil {
		return sources.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return note, nil
}

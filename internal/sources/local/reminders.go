package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/berrypatch/member-berries/internal/sources"
)

const defaultListName = "Reminders"

func (s *Store) GetLists(ctx context.Context) ([]sources.ReminderList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM reminder_lists ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()

	var lists []sources.ReminderList
	for rows.Next() {
		var l sources.ReminderList
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (s *Store) GetReminders(ctx context.Context) ([]sources.Reminder, error) {
	return s.queryReminders(ctx,
		`SELECT r.id, r.name, r.body, r.completed, r.due_at, l.name, r.created_at
		 FROM reminders r JOIN reminder_lists l ON r.list_id = l.id
		 ORDER BY r.created_at DESC`)
}

func (s *Store) GetRemindersByList(ctx context.Context, listID string) ([]sources.Reminder, error) {
	return s.queryReminders(ctx,
		`SELECT r.id, r.name, r.body, r.completed, r.due_at, l.name, r.created_at
		 FROM reminders r JOIN reminder_lists l ON r.list_id = l.id
		 WHERE l.id = ? ORDER BY r.created_at DESC`, listID)
}

func (s *Store) SearchReminders(ctx context.Context, text string) ([]sources.Reminder, error) {
	all, err := s.GetReminders(ctx)
	if err != nil {
		return nil, err
	}

	var matched []sources.Reminder
	for _, r := range all {
		if containsFold(r.Name, text) || containsFold(r.Body, text) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (s *Store) CreateReminder(ctx context.Context, name, listName, body string, due *time.Time) (sources.Reminder, error) {
	if name == "" {
		return sources.Reminder{}, fmt.Errorf("reminder name is required")
	}
	if listName == "" {
		listName = defaultListName
	}

	listID, err := s.ensureList(ctx, listName)
	if err != nil {
		return sources.Reminder{}, err
	}

	r := sources.Reminder{
		ID:        s.newID(),
		Name:      name,
		Body:      body,
		DueDate:   due,
		ListName:  listName,
		CreatedAt: s.clock().UTC(),
	}
	var dueAt *string
	if due != nil {
		v := formatTime(*due)
		dueAt = &v
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, name, body, completed, due_at, list_id, created_at)
		 VALUES (?, ?, ?, 0, ?, ?, ?)`,
		r.ID, r.Name, r.Body, dueAt, listID, formatTime(r.CreatedAt),
	)
	if err != nil {
		return sources.Reminder{}, fmt.Errorf("insert reminder: %w", err)
	}
	return r, nil
}

func (s *Store) OpenReminder(ctx context.Context, text string) (sources.Outcome, error) {
	matched, err := s.SearchReminders(ctx, text)
	if err != nil {
		return sources.Outcome{}, err
	}
	if len(matched) == 0 {
		return sources.Outcome{
			Success: false,
			Message: fmt.Sprintf("No reminder found matching %q.", text),
		}, nil
	}
	return sources.Outcome{
		Success: true,
		Message: fmt.Sprintf("Found reminder: %s", matched[0].Name),
	}, nil
}

func (s *Store) ensureList(ctx context.Context, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM reminder_lists WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup list: %w", err)
	}

	id = s.newID()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO reminder_lists (id, name) VALUES (?, ?)`, id, name); err != nil {
		return "", fmt.Errorf("insert list: %w", err)
	}
	return id, nil
}

func (s *Store) queryReminders(ctx context.Context, query string, args ...any) ([]sources.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []sources.Reminder
	for rows.Next() {
		var r sources.Reminder
		var completed int
		var dueAt *string
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Name, &r.Body, &completed, &dueAt, &r.ListName, &createdAt); err != nil {
			return nil, err
		}
		r.Completed = completed != 0
		if dueAt != nil {
			t := parseTime(*dueAt)
			r.DueDate = &t
		}
		r.CreatedAt = parseTime(createdAt)
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

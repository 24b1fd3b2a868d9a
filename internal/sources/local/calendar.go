package local

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/berrypatch/member-berries/internal/sources"
)

// GetEvents returns events overlapping [from, to], soonest first.
func (s *Store) GetEvents(ctx context.Context, limit int, from, to time.Time) ([]sources.Event, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, start_at, end_at, location, notes, calendar_name, is_all_day
		 FROM events WHERE end_at >= ? AND start_at <= ?
		 ORDER BY start_at ASC LIMIT ?`,
		formatTime(from), formatTime(to), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) SearchEvents(ctx context.Context, text string, limit int, from, to time.Time) ([]sources.Event, error) {
	// Fetch the range without a cap, then match with case folding in Go;
	// sqlite LIKE is ASCII-only case-insensitive.
	candidates, err := s.GetEvents(ctx, 1000, from, to)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	matched := make([]sources.Event, 0, limit)
	for _, ev := range candidates {
		if containsFold(ev.Title, text) || containsFold(ev.Location, text) || containsFold(ev.Notes, text) {
			matched = append(matched, ev)
			if len(matched) == limit {
				break
			}
		}
	}
	return matched, nil
}

func (s *Store) OpenEvent(ctx context.Context, id string) (sources.Outcome, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT title, start_at FROM events WHERE id = ?`, id)

	var title, startAt string
	if err := row.Scan(&title, &startAt); err != nil {
		return sources.Outcome{
			Success: false,
			Message: fmt.Sprintf("No event found with ID %q.", id),
		}, nil
	}
	return sources.Outcome{
		Success: true,
		Message: fmt.Sprintf("Found event %q starting %s.", title, startAt),
		EventID: id,
	}, nil
}

func (s *Store) CreateEvent(ctx context.Context, p sources.CreateEventParams) (sources.Outcome, error) {
	if p.Title == "" {
		return sources.Outcome{Success: false, Message: "event title is required"}, nil
	}
	if !p.End.After(p.Start) {
		return sources.Outcome{Success: false, Message: "event end must be after start"}, nil
	}

	id := s.newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, title, start_at, end_at, location, notes, calendar_name, is_all_day)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Title, formatTime(p.Start), formatTime(p.End),
		p.Location, p.Notes, p.CalendarName, boolToInt(p.IsAllDay),
	)
	if err != nil {
		return sources.Outcome{}, fmt.Errorf("insert event: %w", err)
	}
	return sources.Outcome{
		Success: true,
		Message: fmt.Sprintf("Created event %q.", p.Title),
		EventID: id,
	}, nil
}

func scanEvents(rows *sql.Rows) ([]sources.Event, error) {
	var events []sources.Event
	for rows.Next() {
		var ev sources.Event
		var startAt, endAt string
		var location, notes, calName *string
		var allDay int
		if err := rows.Scan(&ev.ID, &ev.Title, &startAt, &endAt, &location, &notes, &calName, &allDay); err != nil {
			return nil, err
		}
		ev.StartDate = parseTime(startAt)
		ev.EndDate = parseTime(endAt)
		ev.Location = deref(location)
		ev.Notes = deref(notes)
		ev.CalendarName = deref(calName)
		ev.IsAllDay = allDay != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

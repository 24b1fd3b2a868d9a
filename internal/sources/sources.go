// Package sources defines the contracts for the calendar, notes, and
// reminders collaborators. Implementations live in subpackages; everything
// above this layer depends only on these interfaces.
package sources

import (
	"context"
	"time"
)

type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Location     string    `json:"location,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CalendarName string    `json:"calendarName,omitempty"`
	IsAllDay     bool      `json:"isAllDay,omitempty"`
}

type Note struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Folder    string    `json:"folder,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Reminder struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Body      string     `json:"body,omitempty"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	ListName  string     `json:"listName,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ReminderList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateEventParams carries everything needed to create a calendar event.
type CreateEventParams struct {
	Title        string
	Start        time.Time
	End          time.Time
	Location     string
	Notes        string
	IsAllDay     bool
	CalendarName string
}

// Outcome is the shared success/message result for open and create calls.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EventID string `json:"eventId,omitempty"`
}

type Calendar interface {
	// GetEvents returns events whose time range intersects [from, to],
	// soonest first, capped at limit.
	GetEvents(ctx context.Context, limit int, from, to time.Time) ([]Event, error)
	// SearchEvents matches text against titles, locations, and notes.
	SearchEvents(ctx context.Context, text string, limit int, from, to time.Time) ([]Event, error)
	OpenEvent(ctx context.Context, id string) (Outcome, error)
	CreateEvent(ctx context.Context, p CreateEventParams) (Outcome, error)
}

type Notes interface {
	FindNotes(ctx context.Context, text string) ([]Note, error)
	// ListNotes returns all notes; folderGlob, when non-empty, restricts
	// results to folders matching the glob pattern.
	ListNotes(ctx context.Context, folderGlob string) ([]Note, error)
	CreateNote(ctx context.Context, title, body, folder string) (Note, error)
}

type Reminders interface {
	GetLists(ctx context.Context) ([]ReminderList, error)
	GetReminders(ctx context.Context) ([]Reminder, error)
	GetRemindersByList(ctx context.Context, listID string) ([]Reminder, error)
	SearchReminders(ctx context.Context, text string) ([]Reminder, error)
	CreateReminder(ctx context.Context, name, listName, body string, due *time.Time) (Reminder, error)
	OpenReminder(ctx context.Context, text string) (Outcome, error)
}

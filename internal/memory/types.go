// Package memory implements the berry memory layer: a persisted,
// time-windowed store of contextual memories derived from calendar, notes,
// and reminders activity, with derived conversation starters.
package memory

import (
	"fmt"
	"time"
)

// Kind is the closed set of berry variants. The wire names match the
// persisted format.
type Kind string

const (
	KindEventCompleted Kind = "event_completed"
	KindReminderLogged Kind = "reminder_completed"
	KindNoteCreated    Kind = "note_created"
	KindEventUpcoming  Kind = "upcoming_event"
)

func (k Kind) Valid() bool {
	switch k {
	case KindEventCompleted, KindReminderLogged, KindNoteCreated, KindEventUpcoming:
		return true
	}
	return false
}

// ContextTag is the semantic category assigned to a berry.
type ContextTag string

const (
	ContextShopping ContextTag = "shopping"
	ContextMeeting  ContextTag = "meeting"
	ContextHealth   ContextTag = "health"
	ContextSocial   ContextTag = "social"
	ContextWork     ContextTag = "work"
	ContextTasks    ContextTag = "tasks"
	ContextNotes    ContextTag = "notes"
	ContextGeneral  ContextTag = "general"
)

// Detail is descriptive metadata carried by a berry. It never participates
// in identity except for the upcoming-event dedup rule, which reads
// OriginalTitle.
type Detail struct {
	OriginalTitle string   `json:"originalTitle,omitempty"`
	Location      string   `json:"location,omitempty"`
	Participants  []string `json:"participants,omitempty"`
	Category      string   `json:"category,omitempty"`
}

// Berry is one remembered unit of context.
type Berry struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Summary   string     `json:"content"`
	Context   ContextTag `json:"context"`
	Detail    *Detail    `json:"metadata,omitempty"`
}

func (b Berry) String() string {
	return fmt.Sprintf("%s %q at %s", b.Kind, b.Summary, b.Timestamp.Format(time.RFC3339))
}

const (
	// MaxBerries bounds the store after every prune.
	MaxBerries = 50
	// RetentionDays is the trailing window beyond which berries are evicted.
	RetentionDays = 7
	// MaxStarters bounds the conversation starter list, newest first.
	MaxStarters = 5
)

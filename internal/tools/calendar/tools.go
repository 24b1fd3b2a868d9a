// Package calendar adapts the calendar collaborator into the calendar tool.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/berrypatch/member-berries/internal/sources"
	"github.com/berrypatch/member-berries/internal/tools"
)

const defaultLimit = 10

type Tool struct {
	cal sources.Calendar
}

func New(cal sources.Calendar) *Tool {
	return &Tool{cal: cal}
}

func (t *Tool) Name() string {
	return "calendar"
}

func (t *Tool) Description() string {
	return "Search, create, and open calendar events (Member Berries)"
}

func (t *Tool) Title() string {
	return "Calendar"
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
				"description": "Operation to perform: 'search', 'open', 'list', or 'create'",
				"enum": ["search", "open", "list", "create"]
			},
			"searchText": {
				"type": "string",
				"description": "Text to search for in event titles, locations, and notes (required for search operation)"
			},
			"eventId": {
				"type": "string",
				"description": "ID of the event to open (required for open operation)"
			},
			"limit": {
				"type": "number",
				"description": "Number of events to retrieve (optional, default 10)"
			},
			"fromDate": {
				"type": "string",
				"description": "Start date for search range in ISO format (optional, default is today)"
			},
			"toDate": {
				"type": "string",
				"description": "End date for search range in ISO format (optional, default is 30 days from now for search, 7 days for list)"
			},
			"title": {
				"type": "string",
				"description": "Title of the event to create (required for create operation)"
			},
			"startDate": {
				"type": "string",
				"description": "Start date/time of the event in ISO format (required for create operation)"
			},
			"endDate": {
				"type": "string",
				"description": "End date/time of the event in ISO format (required for create operation)"
			},
			"location": {
				"type": "string",
				"description": "Location of the event (optional for create operation)"
			},
			"notes": {
				"type": "string",
				"description": "Additional notes for the event (optional for create operation)"
			},
			"isAllDay": {
				"type": "boolean",
				"description": "Whether the event is an all-day event (optional for create operation, default is false)"
			},
			"calendarName": {
				"type": "string",
				"description": "Name of the calendar to create the event in (optional for create operation)"
			}
		},
		"required": ["operation"]
	}`)
}

type request struct {
	Operation    string  `json:"operation"`
	SearchText   string  `json:"searchText"`
	EventID      string  `json:"eventId"`
	Limit        float64 `json:"limit"`
	FromDate     string  `json:"fromDate"`
	ToDate       string  `json:"toDate"`
	Title        string  `json:"title"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Location     string  `json:"location"`
	Notes        string  `json:"notes"`
	IsAllDay     bool    `json:"isAllDay"`
	CalendarName string  `json:"calendarName"`
}

func (t *Tool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req request
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, err
	}

	switch req.Operation {
	case "search":
		return t.search(ctx, req)
	case "open":
		return t.open(ctx, req)
	case "list":
		return t.list(ctx, req)
	case "create":
		return t.create(ctx, req)
	default:
		return nil, fmt.Errorf("unknown calendar operation: %s", req.Operation)
	}
}

func (t *Tool) search(ctx context.Context, req request) (interface{}, error) {
	if req.SearchText == "" {
		return nil, fmt.Errorf("searchText is required for search operation")
	}

	now := time.Now()
	from := parseTime(req.FromDate, now)
	to := parseTime(req.ToDate, now.AddDate(0, 0, 30))
	limit := intLimit(req.Limit)

	events, err := t.cal.SearchEvents(ctx, req.SearchText, limit, from, to)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("No events found matching %q.", req.SearchText)
	if len(events) > 0 {
		message = fmt.Sprintf("Found %d events matching %q:\n\n%s", len(events), req.SearchText, formatEvents(events))
	}
	return map[string]interface{}{"message": message, "events": events}, nil
}

func (t *Tool) open(ctx context.Context, req request) (interface{}, error) {
	if req.EventID == "" {
		return nil, fmt.Errorf("eventId is required for open operation")
	}

	outcome, err := t.cal.OpenEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !outcome.Success {
		return nil, fmt.Errorf("error opening event: %s", outcome.Message)
	}
	return map[string]interface{}{"message": outcome.Message}, nil
}

func (t *Tool) list(ctx context.Context, req request) (interface{}, error) {
	now := time.Now()
	from := parseTime(req.FromDate, now)
	to := parseTime(req.ToDate, now.AddDate(0, 0, 7))
	limit := intLimit(req.Limit)

	events, err := t.cal.GetEvents(ctx, limit, from, to)
	if err != nil {
		return nil, err
	}

	rangeText := fmt.Sprintf("from %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	message := "No events found " + rangeText + "."
	if len(events) > 0 {
		message = fmt.Sprintf("Found %d events %s:\n\n%s", len(events), rangeText, formatEvents(events))
	}
	return map[string]interface{}{"message": message, "events": events}, nil
}

func (t *Tool) create(ctx context.Context, req request) (interface{}, error) {
	if req.Title == "" || req.StartDate == "" || req.EndDate == "" {
		return nil, fmt.Errorf("title, startDate, and endDate are required for create operation")
	}
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate: %w", err)
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid endDate: %w", err)
	}

	outcome, err := t.cal.CreateEvent(ctx, sources.CreateEventParams{
		Title:        req.Title,
		Start:        start,
		End:          end,
		Location:     req.Location,
		Notes:        req.Notes,
		IsAllDay:     req.IsAllDay,
		CalendarName: req.CalendarName,
	})
	if err != nil {
		return nil, err
	}
	if !outcome.Success {
		return nil, fmt.Errorf("error creating event: %s", outcome.Message)
	}

	message := fmt.Sprintf("%s Event scheduled from %s to %s",
		outcome.Message, start.Format(time.RFC3339), end.Format(time.RFC3339))
	if outcome.EventID != "" {
		message += "\nEvent ID: " + outcome.EventID
	}
	return map[string]interface{}{"message": message, "eventId": outcome.EventID}, nil
}

func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts
	}
	return fallback
}

func intLimit(limit float64) int {
	if limit <= 0 {
		return defaultLimit
	}
	return int(limit)
}

func formatEvents(events []sources.Event) string {
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		location := ev.Location
		if location == "" {
			location = "Not specified"
		}
		line := fmt.Sprintf("%s (%s - %s)\nLocation: %s\nCalendar: %s\nID: %s",
			ev.Title,
			ev.StartDate.Local().Format("Jan 2 2006 15:04"),
			ev.EndDate.Local().Format("Jan 2 2006 15:04"),
			location, ev.CalendarName, ev.ID)
		if ev.Notes != "" {
			line += "\nNotes: " + ev.Notes
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n\n")
}

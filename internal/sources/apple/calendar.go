package apple

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/berrypatch/member-berries/internal/sources"
)

type Calendar struct {
	runner Runner
}

func NewCalendar(runner Runner) *Calendar {
	return &Calendar{runner: runner}
}

type rawEvent struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
	CalendarName string `json:"calendarName"`
	IsAllDay     bool   `json:"isAllDay"`
}

func (c *Calendar) GetEvents(ctx context.Context, limit int, from, to time.Time) ([]sources.Event, error) {
	if limit <= 0 {
		limit = 10
	}
	// Collect the whole window from every calendar; capping inside the loop
	// would let one calendar's events crowd out sooner ones in the next.
	script := fmt.Sprintf(`(() => {
		const app = Application("Calendar");
		const from = new Date(%s);
		const to = new Date(%s);
		const out = [];
		const cals = app.calendars();
		for (let i = 0; i < cals.length; i++) {
			const cal = cals[i];
			const evs = cal.events.whose({
				_and: [{startDate: {_lessThan: to}}, {endDate: {_greaterThan: from}}]
			})();
			for (let j = 0; j < evs.length; j++) {
				const e = evs[j];
				out.push({
					id: e.uid(),
					title: e.summary() || "",
					startDate: e.startDate().toISOString(),
					endDate: e.endDate().toISOString(),
					location: e.location() || "",
					notes: e.description() || "",
					calendarName: cal.name(),
					isAllDay: e.alldayEvent()
				});
			}
		}
		return JSON.stringify(out);
	})()`,
		jsString(from.UTC().Format(time.RFC3339)),
		jsString(to.UTC().Format(time.RFC3339)),
	)

	var raw []rawEvent
	if err := runJSON(ctx, c.runner, script, &raw); err != nil {
		return nil, fmt.Errorf("fetch calendar events: %w", err)
	}
	events, err := convertEvents(raw)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (c *Calendar) SearchEvents(ctx context.Context, text string, limit int, from, to time.Time) ([]sources.Event, error) {
	if limit <= 0 {
		limit = 10
	}
	// Pull the window once, match with case folding here; whose() clauses
	// cannot express substring search across three fields.
	events, err := c.GetEvents(ctx, 1000, from, to)
	if err != nil {
		return nil, err
	}

	matched := make([]sources.Event, 0, limit)
	for _, ev := range events {
		if containsFold(ev.Title, text) || containsFold(ev.Location, text) || containsFold(ev.Notes, text) {
			matched = append(matched, ev)
			if len(matched) == limit {
				break
			}
		}
	}
	return matched, nil
}

func (c *Calendar) OpenEvent(ctx context.Context, id string) (sources.Outcome, error) {
	script := fmt.Sprintf(`(() => {
		const app = Application("Calendar");
		app.activate();
		const target = %s;
		const cals = app.calendars();
		for (let i = 0; i < cals.length; i++) {
			const evs = cals[i].events.whose({uid: {_equals: target}})();
			if (evs.length > 0) {
				return JSON.stringify({found: true, title: evs[0].summary() || ""});
			}
		}
		return JSON.stringify({found: false});
	})()`, jsString(id))

	var result struct {
		Found bool   `json:"found"`
		Title string `json:"title"`
	}
	if err := runJSON(ctx, c.runner, script, &result); err != nil {
		return sources.Outcome{}, fmt.Errorf("open event: %w", err)
	}
	if !result.Found {
		return sources.Outcome{
			Success: false,
			Message: fmt.Sprintf("No event found with ID %q.", id),
		}, nil
	}
	return sources.Outcome{
		Success: true,
		Message: fmt.Sprintf("Opened Calendar. Found event %q.", result.Title),
		EventID: id,
	}, nil
}

func (c *Calendar) CreateEvent(ctx context.Context, p sources.CreateEventParams) (sources.Outcome, error) {
	script := fmt.Sprintf(`(() => {
		const app = Application("Calendar");
		const calName = %s;
		let cal = app.defaultCalendar ? app.defaultCalendar() : app.calendars()[0];
		if (calName !== "") {
			const named = app.calendars.whose({name: {_equals: calName}})();
			if (named.length > 0) cal = named[0];
		}
		const ev = app.Event({
			summary: %s,
			startDate: new Date(%s),
			endDate: new Date(%s),
			location: %s,
			description: %s,
			alldayEvent: %t
		});
		cal.events.push(ev);
		return JSON.stringify({id: ev.uid()});
	})()`,
		jsString(p.CalendarName),
		jsString(p.Title),
		jsString(p.Start.UTC().Format(time.RFC3339)),
		jsString(p.End.UTC().Format(time.RFC3339)),
		jsString(p.Location),
		jsString(p.Notes),
		p.IsAllDay,
	)

	var result struct {
		ID string `json:"id"`
	}
	if err := runJSON(ctx, c.runner, script, &result); err != nil {
		return sources.Outcome{}, fmt.Errorf("create event: %w", err)
	}
	return sources.Outcome{
		Success: true,
		Message: fmt.Sprintf("Created event %q.", p.Title),
		EventID: result.ID,
	}, nil
}

func convertEvents(raw []rawEvent) ([]sources.Event, error) {
	events := make([]sources.Event, 0, len(raw))
	for _, r := range raw {
		start, err := time.Parse(time.RFC3339, r.StartDate)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, r.EndDate)
		if err != nil {
			continue
		}
		events = append(events, sources.Event{
			ID:           r.ID,
			Title:        r.Title,
			StartDate:    start,
			EndDate:      end,
			Location:     r.Location,
			Notes:        r.Notes,
			CalendarName: r.CalendarName,
			IsAllDay:     r.IsAllDay,
		})
	}
	return events, nil
}

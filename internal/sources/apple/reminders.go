package apple

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/berrypatch/member-berries/internal/sources"
)

// reminderCacheTTL keeps bulk reminder fetches cheap for back-to-back
// calls; large reminder databases make each automation round trip slow.
const reminderCacheTTL = 30 * time.Second

type Reminders struct {
	runner Runner

	mu       sync.Mutex
	cached   []sources.Reminder
	cachedAt time.Time
}

func NewReminders(runner Runner) *Reminders {
	return &Reminders{runner: runner}
}

type rawReminder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Body      string `json:"body"`
	Completed bool   `json:"completed"`
	DueDate   string `json:"dueDate"`
	ListName  string `json:"listName"`
	CreatedAt string `json:"createdAt"`
}

func (r *Reminders) GetLists(ctx context.Context) ([]sources.ReminderList, error) {
	script := `(() => {
		const app = Application("Reminders");
		const lists = app.lists();
		const out = [];
		for (let i = 0; i < lists.length; i++) {
			out.push({id: lists[i].id(), name: lists[i].name()});
		}
		return JSON.stringify(out);
	})()`

	var lists []sources.ReminderList
	if err := runJSON(ctx, r.runner, script, &lists); err != nil {
		return nil, fmt.Errorf("fetch reminder lists: %w", err)
	}
	return lists, nil
}

func (r *Reminders) GetReminders(ctx context.Context) ([]sources.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil && time.Since(r.cachedAt) < reminderCacheTTL {
		return append([]sources.Reminder(nil), r.cached...), nil
	}

	fetched, err := r.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	r.cached = fetched
	r.cachedAt = time.Now()
	return append([]sources.Reminder(nil), fetched...), nil
}

func (r *Reminders) fetchAll(ctx context.Context) ([]sources.Reminder, error) {
	// Bulk property access per list; item-by-item automation calls are an
	// order of magnitude slower.
	script := `(() => {
		const app = Application("Reminders");
		const lists = app.lists();
		const out = [];
		for (let i = 0; i < lists.length; i++) {
			const list = lists[i];
			const listName = list.name();
			const rs = list.reminders;
			const names = rs.name();
			const ids = rs.id();
			const bodies = rs.body();
			const completed = rs.completed();
			let dueDates;
			try { dueDates = rs.dueDate(); } catch (e) { dueDates = new Array(names.length).fill(null); }
			let creationDates;
			try { creationDates = rs.creationDate(); } catch (e) { creationDates = new Array(names.length).fill(null); }
			for (let j = 0; j < names.length; j++) {
				out.push({
					id: ids[j],
					name: names[j],
					body: bodies[j] || "",
					completed: completed[j],
					dueDate: dueDates[j] ? dueDates[j].toISOString() : "",
					listName: listName,
					createdAt: creationDates[j] ? creationDates[j].toISOString() : ""
				});
			}
		}
		return JSON.stringify(out);
	})()`

	var raw []rawReminder
	if err := runJSON(ctx, r.runner, script, &raw); err != nil {
		return nil, fmt.Errorf("fetch reminders: %w", err)
	}

	reminders := make([]sources.Reminder, 0, len(raw))
	for _, item := range raw {
		rem := sources.Reminder{
			ID:        item.ID,
			Name:      item.Name,
			Body:      item.Body,
			Completed: item.Completed,
			ListName:  item.ListName,
		}
		if item.DueDate != "" {
			if t, err := time.Parse(time.RFC3339, item.DueDate); err == nil {
				rem.DueDate = &t
			}
		}
		if item.CreatedAt != "" {
			if t, err := time.Parse(time.RFC3339, item.CreatedAt); err == nil {
				rem.CreatedAt = t
			}
		}
		reminders = append(reminders, rem)
	}
	return reminders, nil
}

func (r *Reminders) GetRemindersByList(ctx context.Context, listID string) ([]sources.Reminder, error) {
	lists, err := r.GetLists(ctx)
	if err != nil {
		return nil, err
	}
	var listName string
	for _, l := range lists {
		if l.ID == listID {
			listName = l.Name
			break
		}
	}
	if listName == "" {
		return nil, fmt.Errorf("no reminder list with ID %q", listID)
	}

	all, err := r.GetReminders(ctx)
	if err != nil {
		return nil, err
	}
	var matched []sources.Reminder
	for _, rem := range all {
		if rem.ListName == listName {
			matched = append(matched, rem)
		}
	}
	return matched, nil
}

func (r *Reminders) SearchReminders(ctx context.Context, text string) ([]sources.Reminder, error) {
	all, err := r.GetReminders(ctx)
	if err != nil {
		return nil, err
	}

	var matched []sources.Reminder
	for _, rem := range all {
		if containsFold(rem.Name, text) || containsFold(rem.Body, text) {
			matched = append(matched, rem)
		}
	}
	return matched, nil
}

func (r *Reminders) CreateReminder(ctx context.Context, name, listName, body string, due *time.Time) (sources.Reminder, error) {
	dueJS := "null"
	if due != nil {
		dueJS = "new Date(" + jsString(due.UTC().Format(time.RFC3339)) + ")"
	}
	script := fmt.Sprintf(`(() => {
		const app = Application("Reminders");
		const listName = %s;
		let list = app.defaultList();
		if (listName !== "") {
			const named = app.lists.whose({name: {_equals: listName}})();
			if (named.length > 0) list = named[0];
		}
		const props = {name: %s, body: %s};
		const due = %s;
		if (due) props.dueDate = due;
		const rem = app.Reminder(props);
		list.reminders.push(rem);
		return JSON.stringify({id: rem.id(), listName: list.name()});
	})()`, jsString(listName), jsString(name), jsString(body), dueJS)

	var result struct {
		ID       string `json:"id"`
		ListName string `json:"listName"`
	}
	if err := runJSON(ctx, r.runner, script, &result); err != nil {
		return sources.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}

	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()

	return sources.Reminder{
		ID:        result.ID,
		Name:      name,
		Body:      body,
		DueDate:   due,
		ListName:  result.ListName,
		CreatedAt: time.Now(),
	}, nil
}

func (r *Reminders) OpenReminder(ctx context.Context, text string) (sources.Outcome, error) {
	matched, err := r.SearchReminders(ctx, text)
	if err != nil {
		return sources.Outcome{}, err
	}
	if len(matched) == 0 {
		return sources.Outcome{
			Success: false,
			Message: fmt.Sprintf("No reminder found matching %q.", text),
		}, nil
	}

	if _, err := r.runner.Run(ctx, `Application("Reminders").activate()`); err != nil {
		return sources.Outcome{}, fmt.Errorf("open reminders: %w", err)
	}
	return sources.Outcome{
		Success: true,
		Message: fmt.Sprintf("Opened Reminders app. Found reminder: %s", matched[0].Name),
	}, nil
}

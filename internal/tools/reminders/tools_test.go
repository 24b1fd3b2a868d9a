package reminders

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/berrypatch/member-berries/internal/memory"
	"github.com/berrypatch/member-berries/internal/sources"
)

type fakeReminders struct {
	lists     []sources.ReminderList
	reminders []sources.Reminder
}

func (f *fakeReminders) GetLists(ctx context.Context) ([]sources.ReminderList, error) {
	return f.lists, nil
}

func (f *fakeReminders) GetReminders(ctx context.Context) ([]sources.Reminder, error) {
	return f.reminders, nil
}

func (f *fakeReminders) GetRemindersByList(ctx context.Context, listID string) ([]sources.Reminder, error) {
	var out []sources.Reminder
	for _, l := range f.lists {
		if l.ID != listID {
			continue
		}
		for _, r := range f.reminders {
			if r.ListName == l.Name {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeReminders) SearchReminders(ctx context.Context, text string) ([]sources.Reminder, error) {
	var out []sources.Reminder
	for _, r := range f.reminders {
		if strings.Contains(strings.ToLower(r.Name), strings.ToLower(text)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminders) CreateReminder(ctx context.Context, name, listName, body string, due *time.Time) (sources.Reminder, error) {
	r := sources.Reminder{ID: "r-new", Name: name, Body: body, DueDate: due, ListName: listName}
	f.reminders = append(f.reminders, r)
	return r, nil
}

func (f *fakeReminders) OpenReminder(ctx context.Context, text string) (sources.Outcome, error) {
	matched, _ := f.SearchReminders(ctx, text)
	if len(matched) == 0 {
		return sources.Outcome{Success: false, Message: "no match"}, nil
	}
	return sources.Outcome{Success: true, Message: "Found reminder: " + matched[0].Name}, nil
}

func newMemory(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(filepath.Join(t.TempDir(), "memory.json"))
	if err := store.Initialize(); err != nil {
		t.Fatal(err)
	}
	return store
}

func exec(t *testing.T, tool *Tool, input string) map[string]interface{} {
	t.Helper()
	out, err := tool.Execute(context.Background(), json.RawMessage(input))
	if err != nil {
		t.Fatalf("Execute(%s) error: %v", input, err)
	}
	return out.(map[string]interface{})
}

func testFake() *fakeReminders {
	due := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	return &fakeReminders{
		lists: []sources.ReminderList{
			{ID: "l1", Name: "Errands"},
			{ID: "l2", Name: "Work"},
		},
		reminders: []sources.Reminder{
			{ID: "r1", Name: "Call plumber", Body: "sink", ListName: "Errands", DueDate: &due},
			{ID: "r2", Name: "File report", ListName: "Work"},
		},
	}
}

func TestList(t *testing.T) {
	tool := New(testFake(), newMemory(t))
	res := exec(t, tool, `{"operation":"list"}`)
	if res["message"] != "Found 2 lists and 2 reminders." {
		t.Errorf("message = %v", res["message"])
	}
}

func TestSearchAndOpen(t *testing.T) {
	tool := New(testFake(), newMemory(t))

	res := exec(t, tool, `{"operation":"search","searchText":"plumber"}`)
	if !strings.Contains(res["message"].(string), "Found 1 reminders") {
		t.Errorf("message = %v", res["message"])
	}

	res = exec(t, tool, `{"operation":"open","searchText":"plumber"}`)
	if !strings.Contains(res["message"].(string), "Call plumber") {
		t.Errorf("message = %v", res["message"])
	}

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"operation":"open","searchText":"zzz"}`)); err == nil {
		t.Error("open with no match did not error")
	}
}

func TestCreateRemembers(t *testing.T) {
	store := newMemory(t)
	tool := New(testFake(), store)

	res := exec(t, tool, `{"operation":"create","name":"Buy stamps","listName":"Errands","dueDate":"2026-03-16T09:00:00Z"}`)
	if !strings.Contains(res["message"].(string), `in list "Errands"`) {
		t.Errorf("message = %v", res["message"])
	}

	recent := store.RecentMemories(24 * time.Hour)
	if len(recent) != 1 || recent[0].Summary != "Reminder: Buy stamps" {
		t.Errorf("memory = %+v", recent)
	}
	if recent[0].Context != memory.ContextTasks {
		t.Errorf("context = %q", recent[0].Context)
	}
}

func TestCreateRejectsBadDueDate(t *testing.T) {
	tool := New(testFake(), newMemory(t))
	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"operation":"create","name":"x","dueDate":"next week"}`)); err == nil {
		t.Error("bad due date accepted")
	}
}

func TestListByIDProjection(t *testing.T) {
	tool := New(testFake(), newMemory(t))

	res := exec(t, tool, `{"operation":"listById","listId":"l1","props":["name","dueDate"]}`)
	items := res["reminders"].([]map[string]interface{})
	if len(items) != 1 {
		t.Fatalf("got %d reminders", len(items))
	}
	if items[0]["name"] != "Call plumber" {
		t.Errorf("name = %v", items[0]["name"])
	}
	if _, ok := items[0]["body"]; ok {
		t.Error("projection kept an unrequested property")
	}
	if _, ok := items[0]["dueDate"]; !ok {
		t.Error("projection dropped a requested property")
	}

	// Empty props keeps every property.
	res = exec(t, tool, `{"operation":"listById","listId":"l1"}`)
	items = res["reminders"].([]map[string]interface{})
	if _, ok := items[0]["body"]; !ok {
		t.Error("empty projection dropped properties")
	}
}

package local

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/berrypatch/member-berries/internal/sources"
)

func newTestDB(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sources.db"))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateEvent(t *testing.T, s *Store, title, location string, start, end time.Time) string {
	t.Helper()
	out, err := s.CreateEvent(context.Background(), sources.CreateEventParams{
		Title:    title,
		Location: location,
		Start:    start,
		End:      end,
	})
	if err != nil {
		t.Fatalf("CreateEvent(%q) error: %v", title, err)
	}
	if !out.Success {
		t.Fatalf("CreateEvent(%q) failed: %s", title, out.Message)
	}
	return out.EventID
}

func TestCalendarRoundTrip(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mustCreateEvent(t, s, "Grocery shopping", "Whole Foods", base, base.Add(time.Hour))
	mustCreateEvent(t, s, "Team meeting", "", base.Add(2*time.Hour), base.Add(3*time.Hour))

	events, err := s.GetEvents(ctx, 10, base.Add(-time.Hour), base.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("GetEvents() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Ordered soonest first.
	if events[0].Title != "Grocery shopping" || events[1].Title != "Team meeting" {
		t.Errorf("order = %q, %q", events[0].Title, events[1].Title)
	}
	if events[0].Location != "Whole Foods" {
		t.Errorf("location = %q", events[0].Location)
	}
	if !events[0].EndDate.Equal(base.Add(time.Hour)) {
		t.Errorf("end = %v", events[0].EndDate)
	}
}

func TestGetEventsWindow(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mustCreateEvent(t, s, "Inside", "", base, base.Add(time.Hour))
	mustCreateEvent(t, s, "Outside", "", base.Add(48*time.Hour), base.Add(49*time.Hour))

	events, err := s.GetEvents(ctx, 10, base.Add(-time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Title != "Inside" {
		t.Errorf("window returned %+v", events)
	}
}

func TestSearchEventsCaseFolded(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mustCreateEvent(t, s, "Grocery Shopping", "Whole Foods", base, base.Add(time.Hour))
	mustCreateEvent(t, s, "Dentist", "", base.Add(2*time.Hour), base.Add(3*time.Hour))

	events, err := s.SearchEvents(ctx, "grocery", 10, base.Add(-time.Hour), base.Add(4*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Title != "Grocery Shopping" {
		t.Errorf("search returned %+v", events)
	}

	// Location text matches too.
	events, err = s.SearchEvents(ctx, "whole foods", 10, base.Add(-time.Hour), base.Add(4*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("location search returned %d events", len(events))
	}
}

func TestOpenEvent(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	id := mustCreateEvent(t, s, "Dentist", "", base, base.Add(time.Hour))

	out, err := s.OpenEvent(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.EventID != id {
		t.Errorf("open = %+v", out)
	}

	out, err = s.OpenEvent(ctx, "no-such-id")
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Error("open of unknown id reported success")
	}
}

func TestCreateEventValidation(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	out, err := s.CreateEvent(ctx, sources.CreateEventParams{Title: "", Start: base, End: base.Add(time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Error("empty title accepted")
	}

	out, err = s.CreateEvent(ctx, sources.CreateEventParams{Title: "Backwards", Start: base, End: base.Add(-time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Error("end before start accepted")
	}
}

func TestNotesFolderGlob(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	for _, n := range []struct{ title, folder string }{
		{"Trip ideas", "Travel/2026"},
		{"Packing list", "Travel/2026"},
		{"Standup notes", "Work"},
	} {
		if _, err := s.CreateNote(ctx, n.title, "body", n.folder); err != nil {
			t.Fatalf("CreateNote(%q) error: %v", n.title, err)
		}
	}

	notes, err := s.ListNotes(ctx, "Travel/**")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Errorf("glob matched %d notes, want 2", len(notes))
	}

	notes, err = s.ListNotes(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 3 {
		t.Errorf("unfiltered list returned %d notes", len(notes))
	}

	if _, err := s.ListNotes(ctx, "[bad"); err == nil {
		t.Error("invalid glob accepted")
	}
}

func TestFindNotes(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	if _, err := s.CreateNote(ctx, "Recipe box", "Lasagna with spinach", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateNote(ctx, "Errands", "pick up dry cleaning", ""); err != nil {
		t.Fatal(err)
	}

	notes, err := s.FindNotes(ctx, "LASAGNA")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Name != "Recipe box" {
		t.Errorf("FindNotes returned %+v", notes)
	}
}

func TestRemindersLifecycle(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	due := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	r, err := s.CreateReminder(ctx, "Call plumber", "", "about the sink", &due)
	if err != nil {
		t.Fatalf("CreateReminder() error: %v", err)
	}
	if r.ListName != defaultListName {
		t.Errorf("list = %q, want default", r.ListName)
	}
	if _, err := s.CreateReminder(ctx, "Buy stamps", "Errands", "", nil); err != nil {
		t.Fatal(err)
	}

	lists, err := s.GetLists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 2 {
		t.Fatalf("got %d lists, want 2", len(lists))
	}

	all, err := s.GetReminders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d reminders, want 2", len(all))
	}

	var errandsID string
	for _, l := range lists {
		if l.Name == "Errands" {
			errandsID = l.ID
		}
	}
	byList, err := s.GetRemindersByList(ctx, errandsID)
	if err != nil {
		t.Fatal(err)
	}
	if len(byList) != 1 || byList[0].Name != "Buy stamps" {
		t.Errorf("by-list returned %+v", byList)
	}

	found, err := s.SearchReminders(ctx, "plumber")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].DueDate == nil || !found[0].DueDate.Equal(due) {
		t.Errorf("search returned %+v", found)
	}

	out, err := s.OpenReminder(ctx, "plumber")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Success {
		t.Errorf("open = %+v", out)
	}
	out, err = s.OpenReminder(ctx, "nothing matches this")
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Error("open of absent reminder reported success")
	}
}

// The same list name is never created twice.
func TestEnsureListIdempotent(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	if _, err := s.CreateReminder(ctx, "one", "Errands", "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateReminder(ctx, "two", "Errands", "", nil); err != nil {
		t.Fatal(err)
	}

	lists, err := s.GetLists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 1 {
		t.Errorf("got %d lists, want 1", len(lists))
	}
}

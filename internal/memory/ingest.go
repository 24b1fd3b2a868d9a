package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/berrypatch/member-berries/internal/sources"
)

const (
	completedFetchLimit = 100
	upcomingFetchLimit  = 10
	upcomingWindow      = 24 * time.Hour
)

// CheckCompletedEvents runs the completed-event ingestion pass: events whose
// end time falls strictly between the watermark and now become
// KindEventCompleted berries, each with a freshly generated conversation
// starter. All appends, the starter updates, and the watermark advance land
// in one durable write at the end of the pass. A collaborator failure aborts
// the pass with the watermark untouched, so a later retry re-scans the same
// window.
func (s *Store) CheckCompletedEvents(ctx context.Context, cal sources.Calendar, gen *StarterGenerator) (int, error) {
	s.mu.Lock()
	last := s.lastCheck
	s.mu.Unlock()

	now := s.clock()
	events, err := cal.GetEvents(ctx, completedFetchLimit, last, now)
	if err != nil {
		return 0, fmt.Errorf("fetch completed events: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, ev := range events {
		if !ev.EndDate.After(last) || !ev.EndDate.Before(now) {
			continue
		}
		b := Berry{
			ID:        s.newID(),
			Kind:      KindEventCompleted,
			Timestamp: ev.EndDate,
			Summary:   "Completed: " + ev.Title,
			Context:   Classify(ev.Title, ev.Location),
			Detail: &Detail{
				OriginalTitle: ev.Title,
				Location:      ev.Location,
				Category:      ev.CalendarName,
			},
		}
		s.appendLocked(b)
		s.addStarterLocked(gen.Generate(b))
		added++
	}

	// Monotonic: the watermark never moves backwards even under clock skew.
	if now.After(s.lastCheck) {
		s.lastCheck = now
	}
	if err := s.persistLocked(); err != nil {
		return added, err
	}

	s.log.Debug("completed-event pass finished", "added", added, "watermark", s.lastCheck)
	return added, nil
}

// CheckUpcomingEvents runs the upcoming-event ingestion pass: the soonest
// events starting within the next day become KindEventUpcoming berries. An
// event already tracked under the same original title and start time is
// skipped, so repeating the pass over an unchanged event set adds nothing.
// No starters are generated; those are reserved for completed activity.
func (s *Store) CheckUpcomingEvents(ctx context.Context, cal sources.Calendar) (int, error) {
	now := s.clock()
	events, err := cal.GetEvents(ctx, upcomingFetchLimit, now, now.Add(upcomingWindow))
	if err != nil {
		return 0, fmt.Errorf("fetch upcoming events: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, ev := range events {
		if s.upcomingTrackedLocked(ev.Title, ev.StartDate) {
			continue
		}
		s.appendLocked(Berry{
			ID:        s.newID(),
			Kind:      KindEventUpcoming,
			Timestamp: ev.StartDate,
			Summary:   "Upcoming: " + ev.Title,
			Context:   Classify(ev.Title, ev.Location),
			Detail: &Detail{
				OriginalTitle: ev.Title,
				Location:      ev.Location,
			},
		})
		added++
	}

	if err := s.persistLocked(); err != nil {
		return added, err
	}

	s.log.Debug("upcoming-event pass finished", "added", added)
	return added, nil
}

func (s *Store) upcomingTrackedLocked(title string, start time.Time) bool {
	for _, b := range s.berries {
		if b.Kind != KindEventUpcoming || b.Detail == nil {
			continue
		}
		if b.Detail.OriginalTitle == title && b.Timestamp.Equal(start) {
			return true
		}
	}
	return false
}

package memory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/berrypatch/member-berries/internal/logger"
)

// diskState is the persisted JSON blob. Berries are kept raw so a single
// malformed record can be dropped without discarding the whole store.
type diskState struct {
	Berries   []json.RawMessage `json:"berries"`
	LastCheck time.Time         `json:"lastCheck"`
	Starters  []string          `json:"conversationStarters"`
}

type memState struct {
	Berries   []Berry   `json:"berries"`
	LastCheck time.Time `json:"lastCheck"`
	Starters  []string  `json:"conversationStarters"`
}

// Store is the bounded, time-windowed berry collection. One instance owns
// one backing file; construct independent stores against independent paths.
type Store struct {
	path    string
	clock   func() time.Time
	entropy *rand.Rand
	log     *slog.Logger

	mu        sync.Mutex
	berries   []Berry
	lastCheck time.Time
	starters  []string

	// Recorded after every own write so the file watcher can tell foreign
	// writes from ours.
	savedAt   time.Time
	savedSize int64
}

type Option func(*Store)

// WithClock replaces the wall clock, pinning timestamps in tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		clock:   time.Now,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     logger.ForComponent("memory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.clock()), s.entropy).String()
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Initialize hydrates the store from its backing file. A missing or
// malformed file is not an error: the store starts fresh and is persisted
// immediately. A successfully read store is pruned before use.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("memory file unreadable, starting fresh", "path", s.path, "error", err)
		}
		s.lastCheck = s.clock()
		return s.persistLocked()
	}

	if !s.decodeLocked(data) {
		s.log.Warn("memory file malformed, starting fresh", "path", s.path)
		s.berries = nil
		s.starters = nil
		s.lastCheck = s.clock()
		return s.persistLocked()
	}

	if s.pruneLocked() {
		return s.persistLocked()
	}
	return nil
}

// decodeLocked replaces the in-memory state from raw file contents. It
// reports false when the blob as a whole is unusable; individual berries
// that fail to decode are dropped instead.
func (s *Store) decodeLocked(data []byte) bool {
	var disk diskState
	if err := json.Unmarshal(data, &disk); err != nil {
		return false
	}

	berries := make([]Berry, 0, len(disk.Berries))
	for _, raw := range disk.Berries {
		var b Berry
		if err := json.Unmarshal(raw, &b); err != nil {
			s.log.Warn("dropping undecodable berry", "error", err)
			continue
		}
		if !b.Kind.Valid() || b.Timestamp.IsZero() {
			s.log.Warn("dropping invalid berry", "berry", b.String())
			continue
		}
		berries = append(berries, b)
	}

	s.berries = berries
	s.lastCheck = disk.LastCheck
	s.starters = disk.Starters
	if len(s.starters) > MaxStarters {
		s.starters = s.starters[:MaxStarters]
	}
	return true
}

// Reload re-reads the backing file, keeping current state when the file is
// unreadable or malformed. Used when a foreign writer updated the blob.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reload memory: %w", err)
	}
	if !s.decodeLocked(data) {
		return fmt.Errorf("reload memory: malformed state in %s", s.path)
	}
	s.pruneLocked()
	return nil
}

// Remember appends a new berry with a fresh id and the current time, and
// persists before returning. No dedup applies here; the upcoming-event rule
// only binds ingestion.
func (s *Store) Remember(kind Kind, summary string, detail *Detail, tag ContextTag) (Berry, error) {
	if !kind.Valid() {
		return Berry{}, fmt.Errorf("invalid berry kind %q", kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := Berry{
		ID:        s.newID(),
		Kind:      kind,
		Timestamp: s.clock().UTC(),
		Summary:   summary,
		Context:   tag,
		Detail:    detail,
	}
	s.appendLocked(b)
	if err := s.persistLocked(); err != nil {
		return Berry{}, err
	}
	return b, nil
}

// RememberNote records a note creation. The body is accepted for contract
// symmetry but only the title is remembered.
func (s *Store) RememberNote(title, body string) (Berry, error) {
	return s.Remember(KindNoteCreated, "Created note: "+title, &Detail{OriginalTitle: title}, ContextNotes)
}

// RememberReminder records a created reminder.
func (s *Store) RememberReminder(name string, due *time.Time) (Berry, error) {
	detail := &Detail{OriginalTitle: name}
	if due != nil {
		detail.Category = "due " + due.Format(time.RFC3339)
	}
	return s.Remember(KindReminderLogged, "Reminder: "+name, detail, ContextTasks)
}

// RecentMemories returns berries within the trailing window, newest first.
func (s *Store) RecentMemories(window time.Duration) []Berry {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock().Add(-window)
	out := make([]Berry, 0, len(s.berries))
	for _, b := range s.berries {
		if b.Timestamp.After(cutoff) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// ConversationStarters returns up to MaxStarters prompts, newest first.
func (s *Store) ConversationStarters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.starters))
	copy(out, s.starters)
	return out
}

// LastChecked returns the completed-event ingestion watermark.
func (s *Store) LastChecked() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCheck
}

// PruneExpired evicts berries older than the retention window, truncates to
// the most recent MaxBerries, and persists when anything changed. Calling it
// again immediately is a no-op.
func (s *Store) PruneExpired() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pruneLocked() {
		return nil
	}
	return s.persistLocked()
}

func (s *Store) pruneLocked() bool {
	cutoff := s.clock().AddDate(0, 0, -RetentionDays)
	kept := s.berries[:0]
	for _, b := range s.berries {
		if b.Timestamp.After(cutoff) {
			kept = append(kept, b)
		}
	}
	changed := len(kept) != len(s.berries)
	s.berries = kept
	if len(s.berries) > MaxBerries {
		s.berries = append([]Berry(nil), s.berries[len(s.berries)-MaxBerries:]...)
		changed = true
	}
	return changed
}

// appendLocked adds a berry, keeping the record bound intact after every
// mutation. Insertion order is creation order.
func (s *Store) appendLocked(b Berry) {
	s.berries = append(s.berries, b)
	if len(s.berries) > MaxBerries {
		s.berries = append([]Berry(nil), s.berries[len(s.berries)-MaxBerries:]...)
	}
}

func (s *Store) addStarterLocked(starter string) {
	s.starters = append([]string{starter}, s.starters...)
	if len(s.starters) > MaxStarters {
		s.starters = s.starters[:MaxStarters]
	}
}

// persistLocked writes the whole store to the backing file, replacing prior
// content atomically so a crash mid-write never leaves a torn blob.
func (s *Store) persistLocked() error {
	state := memState{
		Berries:   s.berries,
		LastCheck: s.lastCheck,
		Starters:  s.starters,
	}
	if state.Berries == nil {
		state.Berries = []Berry{}
	}
	if state.Starters == nil {
		state.Starters = []string{}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write memory: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace memory: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		s.savedAt = info.ModTime()
		s.savedSize = info.Size()
	}
	return nil
}

// externallyModified reports whether the backing file no longer matches the
// last write this store made.
func (s *Store) externallyModified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return false
	}
	return !info.ModTime().Equal(s.savedAt) || info.Size() != s.savedSize
}

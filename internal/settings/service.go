package settings

import (
	"fmt"
	"sync"

	"github.com/sadopc/worktime/internal/store"
)

// Backend persists settings as string key/value pairs.
type Backend interface {
	GetAllSettings() ([]store.Setting, error)
	SetSettings(values map[string]string) error
}

// Change describes one applied update.
type Change struct {
	Old Settings
	New Settings
}

// Changed reports whether the value stored under key differs.
func (c Change) Changed(key string) bool {
	return c.Old.encode()[key] != c.New.encode()[key]
}

// Service is the observable, process-wide view of the settings.
type Service struct {
	backend Backend

	mu      sync.RWMutex
	current Settings
	nextID  int
	subs    map[int]func(Change)
}

// NewService returns a service holding the defaults until Load is called.
func NewService(backend Backend) *Service {
	return &Service{
		backend: backend,
		current: Defaults(),
		subs:    make(map[int]func(Change)),
	}
}

// Load reads the stored settings. Subscribers are notified if anything changed.
func (s *Service) Load() (Settings, error) {
	rows, err := s.backend.GetAllSettings()
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	loaded, err := decode(values)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	s.apply(loaded)
	return loaded, nil
}

func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates and stores next, then notifies subscribers.
func (s *Service) Update(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if err := s.backend.SetSettings(next.encode()); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.apply(next)
	return nil
}

// Subscribe registers fn to be called after every applied change. Callbacks
// run on the goroutine that made the change.
func (s *Service) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) apply(next Settings) {
	s.mu.Lock()
	old := s.current
	s.current = next
	var fns []func(Change)
	if old != next {
		for _, fn := range s.subs {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(Change{Old: old, New: next})
	}
}

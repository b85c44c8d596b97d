package settings

import (
	"log/slog"
	"sync"
)

// Saver receives write-through snapshots after each mutation.
type Saver interface {
	SaveAISettings(s AISettings)
}

// Store holds the AI settings slice of client-side state.
type Store struct {
	mu       sync.Mutex
	current  AISettings
	hydrated bool
	saver    Saver
	logger   *slog.Logger
}

// NewStore creates a settings store. saver may be nil in tests.
func NewStore(saver Saver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{current: Default(), saver: saver, logger: logger}
}

// Hydrate seeds the store from the loaded document.
func (s *Store) Hydrate(settings AISettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = settings
	s.hydrated = true
}

// Settings returns the current settings.
func (s *Store) Settings() AISettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ToggleEnabled flips the enabled flag.
func (s *Store) ToggleEnabled() AISettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Enabled = !s.current.Enabled
	s.persistLocked()
	return s.current
}

// SetModel selects the model backing AI features.
func (s *Store) SetModel(model string) AISettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Model = model
	s.persistLocked()
	return s.current
}

func (s *Store) persistLocked() {
	if !s.hydrated || s.saver == nil {
		return
	}
	s.saver.SaveAISettings(s.current)
}

package member

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Saver receives write-through snapshots after each mutation.
type Saver interface {
	SaveMembers(members []Member)
}

// Store is pure CRUD over the member list; no cascading effects.
type Store struct {
	mu       sync.Mutex
	members  []Member
	hydrated bool
	saver    Saver
	logger   *slog.Logger
}

// NewStore creates a member store. saver may be nil in tests.
func NewStore(saver Saver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{saver: saver, logger: logger}
}

// Hydrate seeds the store from the loaded document.
func (s *Store) Hydrate(members []Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append([]Member{}, members...)
	s.hydrated = true
}

// Members returns a snapshot copy.
func (s *Store) Members() []Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Member{}, s.members...)
}

// AddMember appends a member with a fresh id and returns it.
func (s *Store) AddMember(m Member) Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uuid.NewString()
	s.members = append(s.members, m)
	s.persistLocked()
	return m
}

// UpdateMember replaces a member by id. Unknown ids no-op.
func (s *Store) UpdateMember(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.members {
		if s.members[i].ID == m.ID {
			s.members[i] = m
			s.persistLocked()
			return
		}
	}
}

// DeleteMember removes a member by id. Tasks assigned by that
// member's name are left untouched.
func (s *Store) DeleteMember(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.members[:0]
	for _, m := range s.members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.members = kept
	s.persistLocked()
}

func (s *Store) persistLocked() {
	if !s.hydrated || s.saver == nil {
		return
	}
	s.saver.SaveMembers(append([]Member{}, s.members...))
}

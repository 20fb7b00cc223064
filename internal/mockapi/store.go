package mockapi

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/scopeping/internal/api"
)

// StoredUpload is an upload as received by the mock API.
type StoredUpload struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	api.Upload
}

// Store keeps the fixture and received uploads in memory.
type Store struct {
	mu       sync.RWMutex
	groups   map[string]FixtureGroup
	programs map[string]FixtureProgram
	uploads  []StoredUpload
}

func NewStore(f Fixture) *Store {
	s := &Store{
		groups:   make(map[string]FixtureGroup, len(f.Groups)),
		programs: make(map[string]FixtureProgram),
		uploads:  make([]StoredUpload, 0, 16),
	}
	for _, g := range f.Groups {
		s.groups[g.ID] = g
		for _, p := range g.Programs {
			s.programs[p.ID] = p
		}
	}
	return s
}

// Group returns the group and whether it exists.
func (s *Store) Group(_ context.Context, id string) (FixtureGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	return g, ok
}

func (s *Store) Program(_ context.Context, id string) (FixtureProgram, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.programs[id]
	return p, ok
}

func (s *Store) AddUpload(_ context.Context, u api.Upload) StoredUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	su := StoredUpload{ID: uuid.NewString(), ReceivedAt: time.Now().UTC(), Upload: u}
	s.uploads = append(s.uploads, su)
	return su
}

// Uploads returns a copy, oldest first.
func (s *Store) Uploads(_ context.Context) []StoredUpload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredUpload, len(s.uploads))
	copy(out, s.uploads)
	return out
}

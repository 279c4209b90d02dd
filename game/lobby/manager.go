// Package lobby tracks every live match by UUID and produces the public
// listing. It is the LobbyRegistry the match runtime reports its disposal to.
package lobby

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/citypanic/citypanic/game/engine"
)

var (
	ErrGameNotFound = errors.New("game not found")
)

// Manager handles match lifecycle and lookup.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*engine.Match
}

// NewManager creates an empty match registry.
func NewManager() *Manager {
	return &Manager{games: make(map[string]*engine.Match)}
}

// Create builds a match with the given deps, assigns its UUID and registers
// it.
func (m *Manager) Create(name string, public bool, deps engine.Deps) (*engine.Match, error) {
	match := engine.NewMatch(name, public, deps)
	id := uuid.NewString()
	if err := match.SetUUID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.games[id] = match
	m.mu.Unlock()
	return match, nil
}

// Get returns the match with the given UUID.
func (m *Manager) Get(id string) (*engine.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return match, nil
}

// Remove drops a match from the registry. Removing an unknown ID is a no-op
// so dispose stays idempotent from the registry's side.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.games, id)
	m.mu.Unlock()
}

// List returns every registered match.
func (m *Manager) List() []*engine.Match {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*engine.Match, 0, len(m.games))
	for _, match := range m.games {
		out = append(out, match)
	}
	return out
}

// ListPublic returns lobby info for every public match.
func (m *Manager) ListPublic() []engine.LobbyInfo {
	m.mu.RLock()
	matches := make([]*engine.Match, 0, len(m.games))
	for _, match := range m.games {
		matches = append(matches, match)
	}
	m.mu.RUnlock()

	out := make([]engine.LobbyInfo, 0, len(matches))
	for _, match := range matches {
		if match.Public() {
			out = append(out, match.LobbyInfo())
		}
	}
	return out
}

// Count returns the number of registered matches.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

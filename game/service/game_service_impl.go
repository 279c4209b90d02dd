package service

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/citypanic/citypanic/game/config"
	"github.com/citypanic/citypanic/game/engine"
	"github.com/citypanic/citypanic/game/grid"
	"github.com/citypanic/citypanic/game/lobby"
	"github.com/citypanic/citypanic/game/names"
)

var (
	ErrAlreadyInGame = errors.New("client already in a game")
	ErrNotInGame     = errors.New("client not in a game")
)

// gameServiceImpl implements GameService. It owns the uid→match bindings and
// acts as the engine's lobby registry. The service lock is never held across
// a call into a match, which keeps lock ordering one-way (match → service on
// the dispose path).
type gameServiceImpl struct {
	lobby *lobby.Manager
	bus   engine.EventBus
	cfg   *config.Manager

	mu    sync.RWMutex
	byUID map[string]*engine.Match
	seed  func() *rand.Rand
	start time.Time
}

// NewGameService creates the service gluing lobby, config and transport.
func NewGameService(l *lobby.Manager, bus engine.EventBus, cfg *config.Manager) GameService {
	return &gameServiceImpl{
		lobby: l,
		bus:   bus,
		cfg:   cfg,
		byUID: make(map[string]*engine.Match),
		seed: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		start: time.Now(),
	}
}

func (s *gameServiceImpl) deps() engine.Deps {
	return engine.Deps{
		Bus:      s.bus,
		Registry: s,
		Config:   s.cfg,
		Names: func(rng *rand.Rand) grid.NameSource {
			return names.NewGenerator(rng)
		},
		Rand:     s.seed(),
		Baseline: s.cfg.Baseline(),
	}
}

// RemoveGame implements engine.Registry: drops the match and unbinds the
// clients that were still seated. Called exactly once per match, from
// dispose.
func (s *gameServiceImpl) RemoveGame(gameID string, uids []string) {
	s.lobby.Remove(gameID)
	s.mu.Lock()
	for _, uid := range uids {
		delete(s.byUID, uid)
	}
	s.mu.Unlock()
	log.Printf("service: game %s removed from lobby", gameID)
}

func (s *gameServiceImpl) CreateGame(ctx context.Context, name string, public bool) (engine.GameInfo, error) {
	match, err := s.lobby.Create(name, public, s.deps())
	if err != nil {
		return engine.GameInfo{}, err
	}
	log.Printf("service: game %s (%q) created", match.UUID(), name)
	return match.GameInfo(), nil
}

func (s *gameServiceImpl) ListGames(ctx context.Context) []engine.LobbyInfo {
	return s.lobby.ListPublic()
}

func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (engine.GameInfo, error) {
	match, err := s.lobby.Get(gameID)
	if err != nil {
		return engine.GameInfo{}, err
	}
	return match.GameInfo(), nil
}

func (s *gameServiceImpl) DisposeGame(ctx context.Context, gameID string) error {
	match, err := s.lobby.Get(gameID)
	if err != nil {
		return err
	}
	return match.Dispose()
}

func (s *gameServiceImpl) Join(ctx context.Context, client engine.Client, gameID string) error {
	s.mu.RLock()
	_, bound := s.byUID[client.UID()]
	s.mu.RUnlock()
	if bound {
		return ErrAlreadyInGame
	}

	match, err := s.lobby.Get(gameID)
	if err != nil {
		return err
	}

	if err := match.Join(client); err != nil {
		if errors.Is(err, engine.ErrGameFull) {
			// Already answered with game_join_fail.
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.byUID[client.UID()] = match
	s.mu.Unlock()
	return nil
}

func (s *gameServiceImpl) match(client engine.Client) (*engine.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.byUID[client.UID()]
	if !ok {
		return nil, ErrNotInGame
	}
	return match, nil
}

func (s *gameServiceImpl) Leave(ctx context.Context, client engine.Client) error {
	match, err := s.match(client)
	if err != nil {
		return err
	}

	err = match.Leave(client)

	s.mu.Lock()
	delete(s.byUID, client.UID())
	s.mu.Unlock()

	if err != nil && !errors.Is(err, engine.ErrAlreadyDisposing) {
		return err
	}
	return nil
}

func (s *gameServiceImpl) UpdateSettings(ctx context.Context, client engine.Client, size *int, public *bool) error {
	match, err := s.match(client)
	if err != nil {
		return err
	}
	return match.UpdateSettings(size, public)
}

func (s *gameServiceImpl) Ready(ctx context.Context, client engine.Client) error {
	match, err := s.match(client)
	if err != nil {
		return err
	}
	return match.Ready(client)
}

func (s *gameServiceImpl) Start(ctx context.Context, client engine.Client) error {
	match, err := s.match(client)
	if err != nil {
		return err
	}
	return match.Start()
}

func (s *gameServiceImpl) IntroDone(ctx context.Context, client engine.Client) error {
	match, err := s.match(client)
	if err != nil {
		return err
	}
	return match.IntroDone(client)
}

func (s *gameServiceImpl) DoCommand(ctx context.Context, client engine.Client, command string, value interface{}) error {
	match, err := s.match(client)
	if err != nil {
		return err
	}
	return match.DoCommand(client, command, value)
}

func (s *gameServiceImpl) DefeatSpecial(ctx context.Context, client engine.Client, blackHole bool) error {
	match, err := s.match(client)
	if err != nil {
		return err
	}
	return match.DefeatSpecial(client, blackHole)
}

func (s *gameServiceImpl) Status(ctx context.Context) Status {
	players := 0
	for _, m := range s.lobby.List() {
		players += m.PlayerCount()
	}
	return Status{
		StartedAt: s.start,
		UptimeSec: time.Since(s.start).Seconds(),
		Games:     s.lobby.Count(),
		Players:   players,
	}
}

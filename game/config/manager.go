package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/citypanic/citypanic/game/engine"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Settings is the YAML server configuration. Every field is optional; zero
// values fall back to defaults.
type Settings struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	SinglePlayer bool   `yaml:"single_player"`

	// Difficulty overrides the level-0 baseline when present.
	Difficulty *engine.Difficulty `yaml:"difficulty"`
}

// Manager loads and caches server settings. It implements engine.Config.
type Manager struct {
	mu       sync.RWMutex
	settings Settings
}

// NewManager returns a manager with defaults applied. If path is non-empty
// the file must exist and parse.
func NewManager(path string) (*Manager, error) {
	m := &Manager{settings: Settings{Host: "localhost", Port: 8080}}
	if path == "" {
		return m, nil
	}
	if err := m.Load(path); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads settings from a YAML file, replacing the current values.
func (m *Manager) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	s := Settings{Host: "localhost", Port: 8080}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, s.Port)
	}
	if s.Difficulty != nil {
		if s.Difficulty.InstructionsTime <= 0 {
			return fmt.Errorf("%w: instructions_time must be positive", ErrInvalidConfig)
		}
		if s.Difficulty.HealthDrainRate < 0 {
			return fmt.Errorf("%w: health_drain_rate cannot be negative", ErrInvalidConfig)
		}
	}

	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
	return nil
}

// SinglePlayer reports whether single-player debug mode is enabled.
func (m *Manager) SinglePlayer() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.SinglePlayer
}

// SetSinglePlayer flips single-player mode, mainly for tests and the
// SINGLE_PLAYER environment override.
func (m *Manager) SetSinglePlayer(v bool) {
	m.mu.Lock()
	m.settings.SinglePlayer = v
	m.mu.Unlock()
}

// Addr returns the host:port the server should bind.
func (m *Manager) Addr() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("%s:%d", m.settings.Host, m.settings.Port)
}

// Baseline returns the level-0 difficulty, honoring any override.
func (m *Manager) Baseline() engine.Difficulty {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings.Difficulty != nil {
		return *m.settings.Difficulty
	}
	return engine.DefaultDifficulty()
}

package service

import (
	"context"
	"time"

	"github.com/citypanic/citypanic/game/engine"
)

// GameService defines every operation the transports may invoke, both the
// lobby management surface and the in-match gameplay operations.
type GameService interface {
	// Lobby management
	CreateGame(ctx context.Context, name string, public bool) (engine.GameInfo, error)
	ListGames(ctx context.Context) []engine.LobbyInfo
	GetGame(ctx context.Context, gameID string) (engine.GameInfo, error)
	DisposeGame(ctx context.Context, gameID string) error

	// Match membership
	Join(ctx context.Context, client engine.Client, gameID string) error
	Leave(ctx context.Context, client engine.Client) error
	UpdateSettings(ctx context.Context, client engine.Client, size *int, public *bool) error

	// Gameplay
	Ready(ctx context.Context, client engine.Client) error
	Start(ctx context.Context, client engine.Client) error
	IntroDone(ctx context.Context, client engine.Client) error
	DoCommand(ctx context.Context, client engine.Client, command string, value interface{}) error
	DefeatSpecial(ctx context.Context, client engine.Client, blackHole bool) error

	// Introspection
	Status(ctx context.Context) Status
}

// Status is a lightweight server snapshot for the status endpoint.
type Status struct {
	StartedAt time.Time `json:"started_at"`
	UptimeSec float64   `json:"uptime_sec"`
	Games     int       `json:"games"`
	Players   int       `json:"players"`
}

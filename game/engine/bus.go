package engine

// LobbyRoom is the room public matches advertise themselves to.
const LobbyRoom = "lobby"

// EventBus is the match's only view of the transport: emit a JSON payload to
// a room (a client SID is also a room), and manage room membership. Emit
// failures are the transport's problem; the runtime never blocks on them.
type EventBus interface {
	Emit(event string, payload interface{}, room string)
	JoinRoom(sid, room string)
	LeaveRoom(sid, room string)
}

// Registry is notified exactly once when a match disposes, with the UIDs of
// the clients that were still seated.
type Registry interface {
	RemoveGame(gameID string, uids []string)
}

// Config exposes the process-wide settings the runtime reads at join and
// start time.
type Config interface {
	SinglePlayer() bool
}

// LobbyInfo is the public lobby listing entry for a match.
type LobbyInfo struct {
	Name       string `json:"name"`
	GameID     string `json:"game_id"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	Public     bool   `json:"public"`
}

// GameInfo extends LobbyInfo with the slot roster, padded with nulls up to
// max_players.
type GameInfo struct {
	LobbyInfo
	Slots []*SlotInfo `json:"slots"`
}

// CommandPayload is sent to a single slot when it receives an instruction.
// Expired reports the fate of the previous instruction: true if it timed
// out, false if it was completed, absent for the first one.
type CommandPayload struct {
	Text    string  `json:"text"`
	Time    float64 `json:"time"`
	Expired *bool   `json:"expired,omitempty"`
}

// HealthInfo is broadcast to the room after every health change that does
// not end the level.
type HealthInfo struct {
	Health     float64 `json:"health"`
	DeathLimit float64 `json:"death_limit"`
}

// LevelInfo carries the level for next_level and game_over broadcasts.
type LevelInfo struct {
	Level int `json:"level"`
}

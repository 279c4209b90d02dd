package engine

import "github.com/citypanic/citypanic/game/grid"

// Client is the opaque transport-side handle for a connected player. UID is
// the stable player identity; SID addresses the live connection and doubles
// as a private emit room.
type Client interface {
	UID() string
	SID() string
}

// Slot is one seat in a match.
type Slot struct {
	Client    Client
	Ready     bool
	IntroDone bool
	Host      bool
	Role      int

	Grid        *grid.Grid
	Instruction *Instruction

	nextGeneration *task

	SpecialCommandCooldown int

	DefeatingAsteroid  bool
	DefeatingBlackHole bool

	HasCompletedSpecialAction bool
}

// SlotInfo is the wire form of a slot in game_info payloads.
type SlotInfo struct {
	UID   string `json:"uid"`
	Ready bool   `json:"ready"`
	Host  bool   `json:"host"`
}

func (s *Slot) info() *SlotInfo {
	return &SlotInfo{UID: s.Client.UID(), Ready: s.Ready, Host: s.Host}
}

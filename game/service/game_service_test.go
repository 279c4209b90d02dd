package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/citypanic/citypanic/game/config"
	"github.com/citypanic/citypanic/game/lobby"
)

type testClient struct {
	uid string
	sid string
}

func (c *testClient) UID() string { return c.uid }
func (c *testClient) SID() string { return c.sid }

type recordingBus struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBus) Emit(event string, payload interface{}, room string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) JoinRoom(sid, room string)  {}
func (b *recordingBus) LeaveRoom(sid, room string) {}

func newTestService(t *testing.T) (GameService, *recordingBus, *lobby.Manager) {
	t.Helper()
	cfg, err := config.NewManager("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	bus := &recordingBus{}
	lobbyManager := lobby.NewManager()
	return NewGameService(lobbyManager, bus, cfg), bus, lobbyManager
}

func TestCreateAndGetGame(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateGame(ctx, "midtown", true)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if info.GameID == "" {
		t.Fatal("created game has no ID")
	}
	if info.MaxPlayers != 2 {
		t.Errorf("default max players = %d, want 2", info.MaxPlayers)
	}

	got, err := svc.GetGame(ctx, info.GameID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Name != "midtown" {
		t.Errorf("name = %q", got.Name)
	}
	if len(got.Slots) != got.MaxPlayers {
		t.Errorf("slots not padded: %d entries for %d seats", len(got.Slots), got.MaxPlayers)
	}

	if _, err := svc.GetGame(ctx, "missing"); !errors.Is(err, lobby.ErrGameNotFound) {
		t.Fatalf("GetGame missing = %v, want ErrGameNotFound", err)
	}
}

func TestListGamesOnlyPublic(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateGame(ctx, "open", true); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := svc.CreateGame(ctx, "hidden", false); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	games := svc.ListGames(ctx)
	if len(games) != 1 || games[0].Name != "open" {
		t.Fatalf("ListGames = %+v, want only the public game", games)
	}
}

func TestJoinBindsClientOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateGame(ctx, "a", true)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	b, err := svc.CreateGame(ctx, "b", true)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	client := &testClient{uid: "u1", sid: "s1"}
	if err := svc.Join(ctx, client, a.GameID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := svc.Join(ctx, client, b.GameID); !errors.Is(err, ErrAlreadyInGame) {
		t.Fatalf("second Join = %v, want ErrAlreadyInGame", err)
	}
}

func TestJoinFullGameIsNotAnError(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateGame(ctx, "tight", true)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	for i, uid := range []string{"u1", "u2"} {
		if err := svc.Join(ctx, &testClient{uid: uid, sid: uid}, info.GameID); err != nil {
			t.Fatalf("Join %d: %v", i, err)
		}
	}

	// The rejected client is answered over the bus with game_join_fail;
	// the operation itself succeeds.
	if err := svc.Join(ctx, &testClient{uid: "u3", sid: "u3"}, info.GameID); err != nil {
		t.Fatalf("Join into full game = %v, want nil", err)
	}
}

func TestLeaveUnbindsClient(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateGame(ctx, "transient", true)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	client := &testClient{uid: "u1", sid: "s1"}
	if err := svc.Leave(ctx, client); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("Leave before join = %v, want ErrNotInGame", err)
	}

	if err := svc.Join(ctx, client, info.GameID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := svc.Leave(ctx, client); err != nil {
		t.Fatalf("Leave: %v", err)
	}

	// The last player leaving disposed the match; the client can join a
	// fresh game afterwards.
	next, err := svc.CreateGame(ctx, "next", true)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := svc.Join(ctx, client, next.GameID); err != nil {
		t.Fatalf("Join after leave: %v", err)
	}
}

func TestDisposeGameRemovesFromLobby(t *testing.T) {
	svc, _, lobbyManager := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateGame(ctx, "doomed", true)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := svc.DisposeGame(ctx, info.GameID); err != nil {
		t.Fatalf("DisposeGame: %v", err)
	}
	if lobbyManager.Count() != 0 {
		t.Errorf("lobby count = %d after dispose, want 0", lobbyManager.Count())
	}
	if err := svc.DisposeGame(ctx, info.GameID); !errors.Is(err, lobby.ErrGameNotFound) {
		t.Fatalf("second dispose = %v, want ErrGameNotFound", err)
	}
}

func TestStatusCounts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateGame(ctx, "counted", true)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := svc.Join(ctx, &testClient{uid: "u1", sid: "s1"}, info.GameID); err != nil {
		t.Fatalf("Join: %v", err)
	}

	status := svc.Status(ctx)
	if status.Games != 1 {
		t.Errorf("Games = %d, want 1", status.Games)
	}
	if status.Players != 1 {
		t.Errorf("Players = %d, want 1", status.Players)
	}
	if status.StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}
}

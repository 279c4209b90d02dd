package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/citypanic/citypanic/game/engine"
	"github.com/citypanic/citypanic/game/lobby"
	"github.com/citypanic/citypanic/game/service"
	"github.com/citypanic/citypanic/transport/websocket"
)

// fakeService is a canned GameService for handler tests.
type fakeService struct {
	games map[string]engine.GameInfo

	createdName   string
	createdPublic bool
	disposed      []string
}

func newFakeService() *fakeService {
	return &fakeService{games: make(map[string]engine.GameInfo)}
}

func (f *fakeService) CreateGame(ctx context.Context, name string, public bool) (engine.GameInfo, error) {
	f.createdName = name
	f.createdPublic = public
	info := engine.GameInfo{LobbyInfo: engine.LobbyInfo{Name: name, GameID: "game-1", MaxPlayers: 2, Public: public}}
	f.games[info.GameID] = info
	return info, nil
}

func (f *fakeService) ListGames(ctx context.Context) []engine.LobbyInfo {
	out := make([]engine.LobbyInfo, 0, len(f.games))
	for _, g := range f.games {
		if g.Public {
			out = append(out, g.LobbyInfo)
		}
	}
	return out
}

func (f *fakeService) GetGame(ctx context.Context, gameID string) (engine.GameInfo, error) {
	info, ok := f.games[gameID]
	if !ok {
		return engine.GameInfo{}, lobby.ErrGameNotFound
	}
	return info, nil
}

func (f *fakeService) DisposeGame(ctx context.Context, gameID string) error {
	if _, ok := f.games[gameID]; !ok {
		return lobby.ErrGameNotFound
	}
	delete(f.games, gameID)
	f.disposed = append(f.disposed, gameID)
	return nil
}

func (f *fakeService) Join(ctx context.Context, client engine.Client, gameID string) error {
	return nil
}
func (f *fakeService) Leave(ctx context.Context, client engine.Client) error { return nil }
func (f *fakeService) UpdateSettings(ctx context.Context, client engine.Client, size *int, public *bool) error {
	return nil
}
func (f *fakeService) Ready(ctx context.Context, client engine.Client) error     { return nil }
func (f *fakeService) Start(ctx context.Context, client engine.Client) error     { return nil }
func (f *fakeService) IntroDone(ctx context.Context, client engine.Client) error { return nil }
func (f *fakeService) DoCommand(ctx context.Context, client engine.Client, command string, value interface{}) error {
	return nil
}
func (f *fakeService) DefeatSpecial(ctx context.Context, client engine.Client, blackHole bool) error {
	return nil
}

func (f *fakeService) Status(ctx context.Context) service.Status {
	return service.Status{StartedAt: time.Now(), Games: len(f.games)}
}

func newTestServer() (*Server, *fakeService) {
	svc := newFakeService()
	return NewServer(svc, websocket.NewHub()), svc
}

func TestCreateGameHandler(t *testing.T) {
	server, svc := newTestServer()

	body := bytes.NewBufferString(`{"name": "midtown", "public": false}`)
	req := httptest.NewRequest("POST", "/api/games", body)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if svc.createdName != "midtown" || svc.createdPublic {
		t.Errorf("service called with name=%q public=%v", svc.createdName, svc.createdPublic)
	}

	var info engine.GameInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.GameID != "game-1" {
		t.Errorf("game id = %q", info.GameID)
	}
}

func TestCreateGameRequiresName(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest("POST", "/api/games", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetGameHandler(t *testing.T) {
	server, svc := newTestServer()
	svc.CreateGame(context.Background(), "known", true)

	req := httptest.NewRequest("GET", "/api/games/game-1", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/games/unknown", nil)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for unknown game = %d, want 404", rec.Code)
	}
}

func TestListGamesHandler(t *testing.T) {
	server, svc := newTestServer()
	svc.CreateGame(context.Background(), "visible", true)

	req := httptest.NewRequest("GET", "/api/games", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var games []engine.LobbyInfo
	if err := json.NewDecoder(rec.Body).Decode(&games); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(games) != 1 || games[0].Name != "visible" {
		t.Errorf("games = %+v", games)
	}
}

func TestDisposeGameHandler(t *testing.T) {
	server, svc := newTestServer()
	svc.CreateGame(context.Background(), "doomed", true)

	req := httptest.NewRequest("DELETE", "/api/games/game-1", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(svc.disposed) != 1 || svc.disposed[0] != "game-1" {
		t.Errorf("disposed = %v", svc.disposed)
	}

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/games/game-1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second dispose status = %d, want 404", rec.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	server, svc := newTestServer()
	svc.CreateGame(context.Background(), "counted", true)

	req := httptest.NewRequest("GET", "/api/status", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["games"] != 1.0 {
		t.Errorf("games = %v, want 1", resp["games"])
	}
	if resp["connections"] != 0.0 {
		t.Errorf("connections = %v, want 0", resp["connections"])
	}
}

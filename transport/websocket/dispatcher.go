package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/citypanic/citypanic/game/service"
)

var errUnknownEvent = errors.New("unknown event")

// ServiceDispatcher routes inbound websocket events to the game service.
type ServiceDispatcher struct {
	service service.GameService
}

// NewServiceDispatcher wraps the game service for the hub.
func NewServiceDispatcher(svc service.GameService) *ServiceDispatcher {
	return &ServiceDispatcher{service: svc}
}

type createGameRequest struct {
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

type joinGameRequest struct {
	GameID string `json:"game_id"`
}

type updateSettingsRequest struct {
	Size   *int  `json:"size,omitempty"`
	Public *bool `json:"public,omitempty"`
}

type doCommandRequest struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

type defeatSpecialRequest struct {
	BlackHole bool `json:"black_hole"`
}

// Dispatch implements Dispatcher. Unmarshal failures and service errors are
// returned so the read pump answers the sender with an error event.
func (d *ServiceDispatcher) Dispatch(client *Client, event string, payload json.RawMessage) error {
	ctx := context.Background()

	switch event {
	case "create_game":
		var req createGameRequest
		if err := unmarshal(payload, &req); err != nil {
			return err
		}
		if req.Name == "" {
			return errors.New("game name required")
		}
		info, err := d.service.CreateGame(ctx, req.Name, req.Public)
		if err != nil {
			return err
		}
		// The creator takes the first seat.
		return d.service.Join(ctx, client, info.GameID)

	case "join_game":
		var req joinGameRequest
		if err := unmarshal(payload, &req); err != nil {
			return err
		}
		if req.GameID == "" {
			return errors.New("game_id required")
		}
		return d.service.Join(ctx, client, req.GameID)

	case "leave_game":
		return d.service.Leave(ctx, client)

	case "update_settings":
		var req updateSettingsRequest
		if err := unmarshal(payload, &req); err != nil {
			return err
		}
		return d.service.UpdateSettings(ctx, client, req.Size, req.Public)

	case "ready":
		return d.service.Ready(ctx, client)

	case "start":
		return d.service.Start(ctx, client)

	case "intro_done":
		return d.service.IntroDone(ctx, client)

	case "do_command":
		var req doCommandRequest
		if err := unmarshal(payload, &req); err != nil {
			return err
		}
		if req.Name == "" {
			return errors.New("command name required")
		}
		return d.service.DoCommand(ctx, client, req.Name, req.Value)

	case "defeat_special":
		var req defeatSpecialRequest
		if err := unmarshal(payload, &req); err != nil {
			return err
		}
		return d.service.DefeatSpecial(ctx, client, req.BlackHole)

	default:
		return errUnknownEvent
	}
}

// Disconnected implements Dispatcher: a dropped connection leaves its match.
func (d *ServiceDispatcher) Disconnected(client *Client) {
	err := d.service.Leave(context.Background(), client)
	if err != nil && !errors.Is(err, service.ErrNotInGame) {
		log.Printf("websocket: leave on disconnect for %s: %v", client.uid, err)
	}
}

func unmarshal(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return errors.New("malformed payload")
	}
	return nil
}

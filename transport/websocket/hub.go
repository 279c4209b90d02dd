package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/citypanic/citypanic/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Message is the wire envelope in both directions.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub maintains the set of active clients and their room memberships, and
// implements engine.EventBus. Every client is implicitly a member of the
// room named after its SID, so emits to a SID need no special casing.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client         // by SID
	rooms   map[string]map[string]bool // room -> set of SIDs

	service Dispatcher
}

// Dispatcher is implemented by the game service layer; set before serving.
type Dispatcher interface {
	Dispatch(client *Client, event string, payload json.RawMessage) error
	Disconnected(client *Client)
}

// NewHub creates an empty hub. Attach the dispatcher with SetDispatcher
// before accepting connections.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
	}
}

// SetDispatcher wires inbound message handling.
func (h *Hub) SetDispatcher(d Dispatcher) {
	h.service = d
}

// ServeWS upgrades the request and starts the client pumps. The player UID
// comes from the uid query parameter; a fresh one is generated when absent.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket: upgrade failed: %v", err)
		return
	}

	uid := r.URL.Query().Get("uid")
	if uid == "" {
		uid = uuid.NewString()
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		uid:  uid,
		sid:  uuid.NewString(),
	}

	h.register(client)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client.sid] = client
	h.mu.Unlock()

	// Every connection starts out watching the lobby.
	h.JoinRoom(client.sid, engine.LobbyRoom)
	log.Printf("websocket: client %s connected (uid %s)", client.sid, client.uid)
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.sid]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.sid)
	for room, members := range h.rooms {
		delete(members, client.sid)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(client.send)
	h.mu.Unlock()

	log.Printf("websocket: client %s disconnected", client.sid)
	if h.service != nil {
		h.service.Disconnected(client)
	}
}

// JoinRoom implements engine.EventBus.
func (h *Hub) JoinRoom(sid, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[sid]; !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][sid] = true
}

// LeaveRoom implements engine.EventBus.
func (h *Hub) LeaveRoom(sid, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, sid)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Emit implements engine.EventBus: marshal once, deliver to every member of
// the room (or the single client when room is a SID). Marshal and slow-client
// failures are logged and swallowed; they never abort a state transition.
func (h *Hub) Emit(event string, payload interface{}, room string) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("websocket: failed to marshal %s payload: %v", event, err)
		return
	}
	data, err := json.Marshal(Message{Event: event, Payload: raw})
	if err != nil {
		log.Printf("websocket: failed to marshal %s message: %v", event, err)
		return
	}

	h.mu.RLock()
	var targets []*Client
	if members, ok := h.rooms[room]; ok {
		for sid := range members {
			if c, ok := h.clients[sid]; ok {
				targets = append(targets, c)
			}
		}
	} else if c, ok := h.clients[room]; ok {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- data:
		default:
			log.Printf("websocket: client %s send buffer full, dropping", c.sid)
			go c.conn.Close()
		}
	}
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

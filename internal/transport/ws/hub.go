package ws

import (
	"encoding/json"
	"log"
	"sync"

	"nottebuia/internal/model"
)

// MessageType labels the WebSocket envelope.
type MessageType string

const (
	// MsgRoomUpdated carries the sanitized room snapshot pushed on every
	// state change.
	MsgRoomUpdated MessageType = "room-updated"
)

// Message is the envelope written to every subscriber.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection is one subscribed client. Writes go through the buffered Send
// channel; a full buffer drops the message rather than blocking the hub.
type Connection struct {
	RoomCode string
	PlayerID string
	SocketID string
	Send     chan []byte
}

// Hub tracks, per room code, the set of live connections subscribed to
// that room's channel. It implements service.Broadcaster.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Connection // roomCode -> socketID -> conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]*Connection)}
}

// Register subscribes a connection to its room's channel.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[conn.RoomCode] == nil {
		h.rooms[conn.RoomCode] = make(map[string]*Connection)
	}
	h.rooms[conn.RoomCode][conn.SocketID] = conn
	log.Printf("ws: socket %s subscribed to room %s (player %s)", conn.SocketID, conn.RoomCode, conn.PlayerID)
}

// Unregister drops a connection. Safe to call for a connection that was
// already replaced or never registered.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.rooms[conn.RoomCode]
	if !ok {
		return
	}
	if existing, ok := conns[conn.SocketID]; ok && existing == conn {
		delete(conns, conn.SocketID)
		close(conn.Send)
		if len(conns) == 0 {
			delete(h.rooms, conn.RoomCode)
		}
		log.Printf("ws: socket %s left room %s", conn.SocketID, conn.RoomCode)
	}
}

// PublishRoom pushes the snapshot to every connection subscribed to the
// room. Fire and forget: slow subscribers lose the frame.
func (h *Hub) PublishRoom(roomCode string, snapshot *model.RoomSnapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("ws: failed to marshal snapshot for room %s: %v", roomCode, err)
		return
	}
	data, err := json.Marshal(&Message{Type: MsgRoomUpdated, Payload: payload})
	if err != nil {
		log.Printf("ws: failed to marshal message for room %s: %v", roomCode, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.rooms[roomCode] {
		select {
		case conn.Send <- data:
		default:
			log.Printf("ws: dropping frame for socket %s, buffer full", conn.SocketID)
		}
	}
}

package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"nottebuia/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by the CORS middleware.
		return true
	},
}

// Handler admits WebSocket peers into room channels.
type Handler struct {
	hub     *Hub
	roomSvc *service.RoomService
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, roomSvc *service.RoomService) *Handler {
	return &Handler{hub: hub, roomSvc: roomSvc}
}

// RoomWS handles GET /v1/ws/rooms/{code}?playerId=...
//
// A peer presents its room code and player id; admission succeeds only if
// the room exists and the player is currently a member, otherwise the
// connection is refused before it is ever subscribed. On admission the
// player's socket binding and liveness are updated and the fresh snapshot
// goes out to the whole channel, this connection included.
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := r.URL.Query().Get("playerId")

	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusUnauthorized)
		return
	}
	if err := h.roomSvc.Authorize(r.Context(), code, playerID); err != nil {
		http.Error(w, "not authorized for this room", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade error: %v", err)
		return
	}

	conn := &Connection{
		RoomCode: code,
		PlayerID: playerID,
		SocketID: uuid.New().String(),
		Send:     make(chan []byte, 256),
	}
	h.hub.Register(conn)

	if _, err := h.roomSvc.Connect(r.Context(), code, playerID, conn.SocketID); err != nil {
		// Lost a race with a leave or expiry between Authorize and here.
		h.hub.Unregister(conn)
		wsConn.Close()
		return
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()

		// The request context died with the connection; liveness cleanup
		// runs on its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := h.roomSvc.Disconnect(ctx, conn.RoomCode, conn.PlayerID, conn.SocketID); err != nil {
			log.Printf("ws: disconnect cleanup for room %s: %v", conn.RoomCode, err)
		}
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error: %v", err)
			}
			break
		}
		// Clients only listen on this channel; inbound frames are ignored.
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

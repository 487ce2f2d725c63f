package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nottebuia/internal/model"
)

func testConn(room, player, socket string, buffer int) *Connection {
	return &Connection{
		RoomCode: room,
		PlayerID: player,
		SocketID: socket,
		Send:     make(chan []byte, buffer),
	}
}

func decodeSnapshot(t *testing.T, data []byte) *model.RoomSnapshot {
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, MsgRoomUpdated, msg.Type)
	var snap model.RoomSnapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	return &snap
}

func TestPublishReachesEveryRoomSubscriber(t *testing.T) {
	hub := NewHub()
	a := testConn("ABCD", "p1", "s1", 4)
	b := testConn("ABCD", "p2", "s2", 4)
	other := testConn("WXYZ", "p3", "s3", 4)
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	hub.PublishRoom("ABCD", &model.RoomSnapshot{Code: "ABCD", Status: model.RoomLobby})

	for _, conn := range []*Connection{a, b} {
		select {
		case data := <-conn.Send:
			snap := decodeSnapshot(t, data)
			assert.Equal(t, "ABCD", snap.Code)
		default:
			t.Fatalf("socket %s did not receive the snapshot", conn.SocketID)
		}
	}
	assert.Empty(t, other.Send, "other room must not see the broadcast")
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	hub := NewHub()
	conn := testConn("ABCD", "p1", "s1", 1)
	hub.Register(conn)

	hub.PublishRoom("ABCD", &model.RoomSnapshot{Code: "ABCD"})
	// Buffer is full now; this one is dropped instead of blocking.
	hub.PublishRoom("ABCD", &model.RoomSnapshot{Code: "ABCD"})

	assert.Len(t, conn.Send, 1)
}

func TestUnregisterClosesSendOnce(t *testing.T) {
	hub := NewHub()
	conn := testConn("ABCD", "p1", "s1", 1)
	hub.Register(conn)

	hub.Unregister(conn)
	_, open := <-conn.Send
	assert.False(t, open)

	// A second unregister of the same connection must be harmless.
	hub.Unregister(conn)
}

func TestUnregisterIgnoresReplacedConnection(t *testing.T) {
	hub := NewHub()
	old := testConn("ABCD", "p1", "s1", 1)
	hub.Register(old)

	// Same socket id re-registered (should not happen in practice, but
	// the guard is existing==conn, as for replaced host connections).
	replacement := testConn("ABCD", "p1", "s1", 1)
	hub.Register(replacement)

	hub.Unregister(old)

	hub.PublishRoom("ABCD", &model.RoomSnapshot{Code: "ABCD"})
	assert.Len(t, replacement.Send, 1)
}

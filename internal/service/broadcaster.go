package service

import "nottebuia/internal/model"

// Broadcaster pushes sanitized room snapshots to every connection
// subscribed to a room channel (avoids an import cycle with the ws
// transport). Delivery is fire-and-forget per subscriber.
type Broadcaster interface {
	PublishRoom(roomCode string, snapshot *model.RoomSnapshot)
}

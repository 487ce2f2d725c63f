package service

import "errors"

var (
	// ErrRoomNotFound means the operation targeted a room that does not
	// exist or has already expired.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists means room creation kept colliding with live codes
	// until the retry budget ran out.
	ErrRoomExists = errors.New("room already exists")

	// ErrNotEnoughPlayers means a round was started below the configured
	// minimum of active players.
	ErrNotEnoughPlayers = errors.New("not enough players to start the game")

	// ErrNotAuthorized means a connection presented a room/player pair
	// that does not admit it to the channel.
	ErrNotAuthorized = errors.New("not authorized")
)

package model

import "time"

type RoomStatus string

const (
	RoomLobby  RoomStatus = "lobby"
	RoomInGame RoomStatus = "in-game"
	RoomEnded  RoomStatus = "ended"
)

// Room is the full materialized state of one game room: metadata plus the
// player roster. It is reconstructed from the store on every read; nothing
// in here is authoritative between two store operations.
type Room struct {
	Code           string     `json:"code"`
	Status         RoomStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	Players        []Player   `json:"players"`
}

// Player finds a roster member by id. Returns nil if the player is not
// (or no longer) a member.
func (r *Room) Player(playerID string) *Player {
	for i := range r.Players {
		if r.Players[i].PlayerID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// ActivePlayers returns the players participating in the current round,
// i.e. everyone not parked as waiting for the next one.
func (r *Room) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(r.Players))
	for i := range r.Players {
		if !r.Players[i].IsWaiting {
			active = append(active, &r.Players[i])
		}
	}
	return active
}

// Snapshot produces the client-safe view of the room. Roles are only
// exposed while a round is running; outside of in-game every role is
// nulled regardless of what is actually assigned.
func (r *Room) Snapshot() *RoomSnapshot {
	snap := &RoomSnapshot{
		Code:           r.Code,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		LastActivityAt: r.LastActivityAt,
		Players:        make([]PlayerView, 0, len(r.Players)),
	}
	for i := range r.Players {
		p := &r.Players[i]
		view := PlayerView{
			PlayerID:  p.PlayerID,
			Name:      p.Name,
			IsAdmin:   p.IsAdmin,
			Online:    p.Online,
			IsWaiting: p.IsWaiting,
		}
		if r.Status == RoomInGame && p.Role != "" {
			role := p.Role
			view.Role = &role
		}
		snap.Players = append(snap.Players, view)
	}
	return snap
}

// RoomSnapshot is the sanitized payload broadcast to every subscriber of a
// room channel and returned by the read endpoints.
type RoomSnapshot struct {
	Code           string       `json:"code"`
	Status         RoomStatus   `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
	LastActivityAt time.Time    `json:"lastActivityAt"`
	Players        []PlayerView `json:"players"`
}

// PlayerView is the subset of player fields safe to show to other clients.
type PlayerView struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"isAdmin"`
	Online    bool   `json:"online"`
	IsWaiting bool   `json:"isWaiting"`
	Role      *Role  `json:"role"`
}

// RoomSummary is one entry of the room listing.
type RoomSummary struct {
	Code           string       `json:"code"`
	Status         RoomStatus   `json:"status"`
	PlayerCount    int          `json:"playerCount"`
	Players        []PlayerView `json:"players"`
	CreatedAt      time.Time    `json:"createdAt"`
	LastActivityAt time.Time    `json:"lastActivityAt"`
}

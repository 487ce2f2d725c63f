package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nottebuia/internal/model"
	"nottebuia/internal/store"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength      = 4
	maxCodeAttempts = 10
)

// RoomService drives the room lifecycle: create, join, leave, start and
// end, each validating against and mutating the shared room store. After
// every successful mutation the fresh sanitized snapshot is pushed to the
// room's channel; a failed mutation never broadcasts.
type RoomService struct {
	store       store.RoomStore
	stats       StatsRecorder
	broadcaster Broadcaster

	minPlayers   int
	restartOnEnd bool
}

// NewRoomService creates a room service. minPlayers is the deployment's
// floor of active players for starting a round; restartOnEnd selects
// whether ending a round chains straight into the next one.
func NewRoomService(st store.RoomStore, stats StatsRecorder, minPlayers int, restartOnEnd bool) *RoomService {
	return &RoomService{
		store:        st,
		stats:        stats,
		minPlayers:   minPlayers,
		restartOnEnd: restartOnEnd,
	}
}

// SetBroadcaster injects the realtime gateway (wired late to avoid an
// import cycle with the ws transport).
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *RoomService) publish(room *model.Room) {
	if s.broadcaster != nil && room != nil {
		s.broadcaster.PublishRoom(room.Code, room.Snapshot())
	}
}

// Create opens a new room with the caller as its admin. Code collisions
// with still-live rooms are retried with fresh codes up to a fixed budget;
// only when the budget runs out does the caller see ErrRoomExists.
func (s *RoomService) Create(ctx context.Context, name, accountRef string) (*model.Room, error) {
	now := time.Now()
	admin := model.Player{
		PlayerID:   uuid.New().String(),
		Name:       name,
		IsAdmin:    true,
		Online:     true,
		AccountRef: accountRef,
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateRoomCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		room := &model.Room{
			Code:           code,
			Status:         model.RoomLobby,
			CreatedAt:      now,
			LastActivityAt: now,
			Players:        []model.Player{admin},
		}
		created, err := s.store.CreateIfAbsent(ctx, code, room)
		if err != nil {
			return nil, err
		}
		if created {
			s.publish(room)
			return room, nil
		}
	}
	return nil, ErrRoomExists
}

// Get returns the full room state, or ErrRoomNotFound.
func (s *RoomService) Get(ctx context.Context, code string) (*model.Room, error) {
	room, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// List enumerates all live rooms as sanitized summaries.
func (s *RoomService) List(ctx context.Context) ([]model.RoomSummary, error) {
	rooms, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		snap := room.Snapshot()
		summaries = append(summaries, model.RoomSummary{
			Code:           room.Code,
			Status:         room.Status,
			PlayerCount:    len(room.Players),
			Players:        snap.Players,
			CreatedAt:      room.CreatedAt,
			LastActivityAt: room.LastActivityAt,
		})
	}
	return summaries, nil
}

// Join adds a new player to the room. Anyone joining after the round has
// started is parked as waiting and only plays from the next round on.
func (s *RoomService) Join(ctx context.Context, code, name, accountRef string) (*model.Room, *model.Player, error) {
	room, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return nil, nil, ErrRoomNotFound
	}

	player := &model.Player{
		PlayerID:   uuid.New().String(),
		Name:       name,
		Online:     true,
		IsWaiting:  room.Status != model.RoomLobby,
		AccountRef: accountRef,
	}
	if err := s.store.AddPlayer(ctx, code, player); err != nil {
		return nil, nil, err
	}
	now := time.Now()
	if err := s.store.SetMeta(ctx, code, store.MetaPatch{LastActivityAt: &now}); err != nil {
		return nil, nil, err
	}

	fresh, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if fresh == nil {
		return nil, nil, ErrRoomNotFound
	}
	s.publish(fresh)
	return fresh, player, nil
}

// Leave removes the player from the room. Removing someone who already
// left is fine; the room just gets a fresh activity timestamp either way.
func (s *RoomService) Leave(ctx context.Context, code, playerID string) (*model.Room, error) {
	room, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if err := s.store.RemovePlayer(ctx, code, playerID); err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.store.SetMeta(ctx, code, store.MetaPatch{LastActivityAt: &now}); err != nil {
		return nil, err
	}

	fresh, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, ErrRoomNotFound
	}
	s.publish(fresh)
	return fresh, nil
}

// Start begins a round: deals roles over the active roster and flips the
// room to in-game, persisting both as one batch.
func (s *RoomService) Start(ctx context.Context, code string) (*model.Room, error) {
	room, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return s.startRound(ctx, room)
}

func (s *RoomService) startRound(ctx context.Context, room *model.Room) (*model.Room, error) {
	active := room.ActivePlayers()
	if len(active) < s.minPlayers {
		return nil, ErrNotEnoughPlayers
	}

	AssignRoles(active, nil)
	status := model.RoomInGame
	now := time.Now()
	room.Status = status
	room.LastActivityAt = now

	if err := s.store.CommitRound(ctx, room.Code, store.MetaPatch{Status: &status, LastActivityAt: &now}, room.Players); err != nil {
		return nil, err
	}
	s.publish(room)
	return room, nil
}

// End closes the round: the outcome is attributed to each player's
// external account, waiting players are promoted to the active roster and,
// unless restart-on-end is disabled, the next round starts immediately —
// the room never rests in an observable ended state in between.
func (s *RoomService) End(ctx context.Context, code, winningSide string) (*model.Room, error) {
	room, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if s.stats != nil {
		finished := make([]model.Player, len(room.Players))
		copy(finished, room.Players)
		s.stats.RecordRound(finished, winningSide)
	}

	for i := range room.Players {
		room.Players[i].IsWaiting = false
	}

	if s.restartOnEnd {
		return s.startRound(ctx, room)
	}

	status := model.RoomEnded
	now := time.Now()
	room.Status = status
	room.LastActivityAt = now
	if err := s.store.CommitRound(ctx, code, store.MetaPatch{Status: &status, LastActivityAt: &now}, room.Players); err != nil {
		return nil, err
	}
	s.publish(room)
	return room, nil
}

// Authorize checks that the room exists and the player is a member. Used
// by the gateway before it subscribes a connection.
func (s *RoomService) Authorize(ctx context.Context, code, playerID string) error {
	room, err := s.store.Get(ctx, code)
	if err != nil {
		return err
	}
	if room == nil || room.Player(playerID) == nil {
		return ErrNotAuthorized
	}
	return nil
}

// Connect binds a freshly admitted connection to its player and publishes
// the resulting snapshot to the room channel.
func (s *RoomService) Connect(ctx context.Context, code, playerID, socketID string) (*model.Room, error) {
	updated, err := s.store.UpdatePlayer(ctx, code, playerID, func(p *model.Player) {
		p.SocketID = socketID
		p.Online = true
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotAuthorized
	}

	now := time.Now()
	if err := s.store.SetMeta(ctx, code, store.MetaPatch{LastActivityAt: &now}); err != nil {
		return nil, err
	}

	room, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	s.publish(room)
	return room, nil
}

// Disconnect marks the player offline and, only if the dying connection is
// still the one recorded on the player, removes them from the room — a
// newer socket having already replaced it means the player reconnected and
// must stay. Best effort by design: races with a concurrent leave are
// tolerated, not serialized.
func (s *RoomService) Disconnect(ctx context.Context, code, playerID, socketID string) error {
	var recorded string
	updated, err := s.store.UpdatePlayer(ctx, code, playerID, func(p *model.Player) {
		recorded = p.SocketID
		p.Online = false
	})
	if err != nil {
		return err
	}
	if updated == nil {
		// Already removed by a concurrent leave or disconnect.
		return nil
	}

	if recorded == socketID {
		if err := s.store.RemovePlayer(ctx, code, playerID); err != nil {
			return err
		}
	}

	room, err := s.store.Get(ctx, code)
	if err != nil {
		return err
	}
	if room != nil {
		s.publish(room)
	}
	return nil
}

func generateRoomCode() (string, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(code), nil
}

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nottebuia/internal/model"
)

func newTestStore() *MemoryStore {
	return NewMemoryStore(12 * time.Hour)
}

func lobbyRoom(code string, players ...model.Player) *model.Room {
	now := time.Now()
	return &model.Room{
		Code:           code,
		Status:         model.RoomLobby,
		CreatedAt:      now,
		LastActivityAt: now,
		Players:        players,
	}
}

func admin(id string) model.Player {
	return model.Player{PlayerID: id, Name: "capo", IsAdmin: true, Online: true}
}

func TestCreateThenGet(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	created, err := s.CreateIfAbsent(ctx, "ABCD", lobbyRoom("ABCD", admin("p1")))
	require.NoError(t, err)
	require.True(t, created)

	room, err := s.Get(ctx, "ABCD")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, model.RoomLobby, room.Status)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "p1", room.Players[0].PlayerID)
	assert.True(t, room.Players[0].IsAdmin)

	exists, err := s.Exists(ctx, "ABCD")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetAbsentRoom(t *testing.T) {
	s := newTestStore()

	room, err := s.Get(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestCreateIfAbsentIsExclusive(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	const racers = 16
	var wg sync.WaitGroup
	results := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := s.CreateIfAbsent(ctx, "RACE", lobbyRoom("RACE", admin("p1")))
			assert.NoError(t, err)
			results <- created
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for created := range results {
		if created {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestUpdatePlayerLastWriterWins(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.CreateIfAbsent(ctx, "ABCD", lobbyRoom("ABCD", admin("p1")))
	require.NoError(t, err)

	// Two read-modify-write updates to different fields of the same
	// player: the second write replaces the whole record, so the store
	// contract deliberately does not promise a per-field merge.
	_, err = s.UpdatePlayer(ctx, "ABCD", "p1", func(p *model.Player) { p.SocketID = "sock-1" })
	require.NoError(t, err)
	updated, err := s.UpdatePlayer(ctx, "ABCD", "p1", func(p *model.Player) { p.Online = false })
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "sock-1", updated.SocketID)
	assert.False(t, updated.Online)
}

func TestUpdateAbsentPlayer(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.CreateIfAbsent(ctx, "ABCD", lobbyRoom("ABCD", admin("p1")))
	require.NoError(t, err)

	p, err := s.UpdatePlayer(ctx, "ABCD", "ghost", func(p *model.Player) { p.Online = false })
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestRemovePlayer(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.CreateIfAbsent(ctx, "ABCD", lobbyRoom("ABCD", admin("p1")))
	require.NoError(t, err)
	require.NoError(t, s.AddPlayer(ctx, "ABCD", &model.Player{PlayerID: "p2", Online: true}))

	require.NoError(t, s.RemovePlayer(ctx, "ABCD", "p2"))
	// Removing an already-removed player is a no-op, not an error.
	require.NoError(t, s.RemovePlayer(ctx, "ABCD", "p2"))

	room, err := s.Get(ctx, "ABCD")
	require.NoError(t, err)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "p1", room.Players[0].PlayerID)
}

func TestRoomWithoutPlayersStillExists(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.CreateIfAbsent(ctx, "ABCD", lobbyRoom("ABCD", admin("p1")))
	require.NoError(t, err)
	require.NoError(t, s.RemovePlayer(ctx, "ABCD", "p1"))

	room, err := s.Get(ctx, "ABCD")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Empty(t, room.Players)
}

func TestCommitRoundIsVisibleAsAWhole(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.CreateIfAbsent(ctx, "ABCD", lobbyRoom("ABCD", admin("p1"), model.Player{PlayerID: "p2", Online: true}))
	require.NoError(t, err)

	status := model.RoomInGame
	now := time.Now()
	players := []model.Player{
		{PlayerID: "p1", IsAdmin: true, Online: true, Role: model.RoleAssassino},
		{PlayerID: "p2", Online: true, Role: model.RoleCittadino},
	}
	require.NoError(t, s.CommitRound(ctx, "ABCD", MetaPatch{Status: &status, LastActivityAt: &now}, players))

	room, err := s.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.Equal(t, model.RoomInGame, room.Status)
	for _, p := range room.Players {
		assert.NotEmpty(t, p.Role, "player %s has no role after commit", p.PlayerID)
	}
}

func TestListAllReapsExpiredRooms(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	base := time.Now()
	s.Clock = func() time.Time { return base }

	_, err := s.CreateIfAbsent(ctx, "KEEP", lobbyRoom("KEEP", admin("p1")))
	require.NoError(t, err)
	_, err = s.CreateIfAbsent(ctx, "GONE", lobbyRoom("GONE", admin("p2")))
	require.NoError(t, err)

	// Keep KEEP alive past the window, let GONE expire silently.
	base = base.Add(6 * time.Hour)
	require.NoError(t, s.SetMeta(ctx, "KEEP", MetaPatch{LastActivityAt: &base}))
	base = base.Add(7 * time.Hour)

	rooms, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "KEEP", rooms[0].Code)

	// The stale index entry was reaped, and the expired code is free for
	// reuse by a fresh creation.
	room, err := s.Get(ctx, "GONE")
	require.NoError(t, err)
	assert.Nil(t, room)
	created, err := s.CreateIfAbsent(ctx, "GONE", lobbyRoom("GONE", admin("p3")))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestSetMetaAfterExpiryLeavesOrphanMeta(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	base := time.Now()
	s.Clock = func() time.Time { return base }

	_, err := s.CreateIfAbsent(ctx, "ABCD", lobbyRoom("ABCD", admin("p1")))
	require.NoError(t, err)

	base = base.Add(13 * time.Hour)

	// The write still succeeds; the caller only finds out the room is a
	// husk by re-reading it.
	status := model.RoomInGame
	require.NoError(t, s.SetMeta(ctx, "ABCD", MetaPatch{Status: &status}))

	room, err := s.Get(ctx, "ABCD")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Empty(t, room.Players)
	assert.True(t, room.CreatedAt.IsZero())
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoom(status RoomStatus) *Room {
	return &Room{
		Code:   "ABCD",
		Status: status,
		Players: []Player{
			{PlayerID: "p1", Name: "capo", IsAdmin: true, Online: true, Role: RoleAssassino, SocketID: "s1", AccountRef: "acct-1"},
			{PlayerID: "p2", Name: "ospite", Online: false, Role: RoleCittadino, IsWaiting: true},
		},
	}
}

func TestSnapshotHidesRolesOutsideGame(t *testing.T) {
	for _, status := range []RoomStatus{RoomLobby, RoomEnded} {
		snap := testRoom(status).Snapshot()
		for _, v := range snap.Players {
			assert.Nil(t, v.Role, "status %s must null roles", status)
		}
	}
}

func TestSnapshotExposesRolesInGame(t *testing.T) {
	snap := testRoom(RoomInGame).Snapshot()
	require.Len(t, snap.Players, 2)
	require.NotNil(t, snap.Players[0].Role)
	assert.Equal(t, RoleAssassino, *snap.Players[0].Role)
	assert.True(t, snap.Players[1].IsWaiting)
}

func TestSnapshotNeverLeaksPrivateFields(t *testing.T) {
	data, err := json.Marshal(testRoom(RoomInGame).Snapshot())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "socketId")
	assert.NotContains(t, string(data), "accountRef")
}

func TestPlayerLookup(t *testing.T) {
	room := testRoom(RoomLobby)
	require.NotNil(t, room.Player("p2"))
	assert.Nil(t, room.Player("ghost"))
}

func TestActivePlayers(t *testing.T) {
	room := testRoom(RoomInGame)
	active := room.ActivePlayers()
	require.Len(t, active, 1)
	assert.Equal(t, "p1", active[0].PlayerID)
}

func TestWonRule(t *testing.T) {
	killer := Player{Role: RoleAssassino}
	cop := Player{Role: RoleSbirro}

	assert.True(t, killer.Won(SideAssassino))
	assert.False(t, killer.Won(SideCittadini))
	assert.False(t, cop.Won(SideAssassino))
	assert.True(t, cop.Won(SideCittadini))
}

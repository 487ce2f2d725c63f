package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nottebuia/internal/model"
)

func roster(n int) []*model.Player {
	players := make([]*model.Player, n)
	for i := range players {
		players[i] = &model.Player{PlayerID: string(rune('a' + i)), Online: true}
	}
	return players
}

func countRoles(players []*model.Player) map[model.Role]int {
	counts := make(map[model.Role]int)
	for _, p := range players {
		counts[p.Role]++
	}
	return counts
}

func TestAssignRolesFullPool(t *testing.T) {
	players := roster(6)
	AssignRoles(players, rand.New(rand.NewSource(1)))

	counts := countRoles(players)
	assert.Equal(t, 1, counts[model.RoleAssassino])
	assert.Equal(t, 1, counts[model.RoleSbirro])
	assert.Equal(t, 1, counts[model.RoleRianimatrice])
	assert.Equal(t, 3, counts[model.RoleCittadino])
}

func TestAssignRolesSmallRoster(t *testing.T) {
	for n := 1; n < 3; n++ {
		players := roster(n)
		AssignRoles(players, rand.New(rand.NewSource(7)))

		counts := countRoles(players)
		assert.Zero(t, counts[model.RoleCittadino], "no cittadino with %d players", n)
		for role, c := range counts {
			assert.Equal(t, 1, c, "role %s repeated with %d players", role, n)
		}
	}
}

func TestAssignRolesTouchesOnlyRole(t *testing.T) {
	players := roster(4)
	players[2].IsWaiting = false
	players[2].Online = true
	players[2].SocketID = "sock"

	AssignRoles(players, rand.New(rand.NewSource(3)))

	require.NotEmpty(t, players[2].Role)
	assert.True(t, players[2].Online)
	assert.False(t, players[2].IsWaiting)
	assert.Equal(t, "sock", players[2].SocketID)
}

func TestAssignRolesPermutesPlayers(t *testing.T) {
	// Different seeds must be able to hand the assassino to different
	// players; a fixed mapping would leak roles by position.
	holders := make(map[string]bool)
	for seed := int64(0); seed < 32; seed++ {
		players := roster(5)
		AssignRoles(players, rand.New(rand.NewSource(seed)))
		for _, p := range players {
			if p.Role == model.RoleAssassino {
				holders[p.PlayerID] = true
			}
		}
	}
	assert.Greater(t, len(holders), 1)
}

package service

import (
	"math/rand"

	"nottebuia/internal/model"
)

// AssignRoles deals the round's secret roles over the active roster: the
// three distinguished roles go to three players picked at random (fewer
// when the roster is smaller), everyone else becomes cittadino. Both the
// roster and the role pool are permuted independently, so every player has
// the same chance at every distinguished role.
//
// Mutates only each player's Role field. Pass a *rand.Rand for a
// deterministic deal in tests; with nil the shared seeded source is used.
func AssignRoles(active []*model.Player, rnd *rand.Rand) {
	shuffle := rand.Shuffle
	if rnd != nil {
		shuffle = rnd.Shuffle
	}

	roles := make([]model.Role, len(model.DistinguishedRoles))
	copy(roles, model.DistinguishedRoles)
	shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	players := make([]*model.Player, len(active))
	copy(players, active)
	shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })

	for i, p := range players {
		if i < len(roles) {
			p.Role = roles[i]
		} else {
			p.Role = model.RoleCittadino
		}
	}
}

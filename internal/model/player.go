package model

// Role is a secret round role. The three distinguished roles are handed out
// once per round; everyone else plays as cittadino.
type Role string

const (
	RoleAssassino    Role = "assassino"
	RoleSbirro       Role = "sbirro"
	RoleRianimatrice Role = "rianimatrice"
	RoleCittadino    Role = "cittadino"
)

// DistinguishedRoles is the limited-supply part of the role pool.
var DistinguishedRoles = []Role{RoleAssassino, RoleSbirro, RoleRianimatrice}

// Winning sides accepted when ending a round.
const (
	SideAssassino = "assassino"
	SideCittadini = "cittadini"
)

// Player is one participant of a room. Players are stored individually in
// the player-set record keyed by PlayerID; the whole struct is written back
// on every update (last writer wins on the full record).
type Player struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
	// SocketID identifies the live connection currently bound to this
	// player, empty when none was ever bound.
	SocketID string `json:"socketId,omitempty"`
	Online   bool   `json:"online"`
	Role     Role   `json:"role,omitempty"`
	// IsWaiting marks players who joined after the round started; they sit
	// out the current round and become active on the next one.
	IsWaiting bool `json:"isWaiting"`
	// AccountRef is the opaque external-identity reference used to
	// attribute statistics. Empty for guests.
	AccountRef string `json:"accountRef,omitempty"`
}

// Won reports whether this player's role ended up on the declared winning
// side: the assassino wins alone, everybody else wins with the cittadini.
func (p *Player) Won(winningSide string) bool {
	if winningSide == SideAssassino {
		return p.Role == RoleAssassino
	}
	return p.Role != RoleAssassino
}

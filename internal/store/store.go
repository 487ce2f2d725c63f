package store

import (
	"context"
	"time"

	"nottebuia/internal/model"
)

// MetaPatch is a partial update of room metadata. Nil fields are left
// untouched.
type MetaPatch struct {
	Status         *model.RoomStatus
	LastActivityAt *time.Time
}

// RoomStore persists rooms and their player sets in a shared, TTL-bounded
// store. Every server process talks to the same store instance; all
// cross-request consistency comes from the atomicity of these calls, there
// is no in-process locking to lean on.
//
// Each mutating call refreshes the room's sliding expiry window. A room
// untouched for the whole window disappears, including (lazily, via
// ListAll) from the live-room index.
type RoomStore interface {
	// Exists reports whether the room's metadata record is present.
	Exists(ctx context.Context, code string) (bool, error)

	// Get reconstructs the full room from its metadata and player-set
	// records. Returns nil when the metadata record is missing or empty,
	// even if stale player data is still around.
	Get(ctx context.Context, code string) (*model.Room, error)

	// CreateIfAbsent writes the room, its initial players and the index
	// entry as one transaction, guarded by an atomic set-if-absent on the
	// creation marker. When two processes race on the same code exactly
	// one gets created=true.
	CreateIfAbsent(ctx context.Context, code string, room *model.Room) (created bool, err error)

	// SetMeta merges the patch into the metadata record. It does not fail
	// when the room has since expired; callers must re-Get to confirm.
	SetMeta(ctx context.Context, code string, patch MetaPatch) error

	// AddPlayer inserts or overwrites a single player record.
	AddPlayer(ctx context.Context, code string, player *model.Player) error

	// UpdatePlayer reads the player, applies mutate and writes the whole
	// record back. Returns nil without side effects when the player no
	// longer exists. This is not a compare-and-swap: two concurrent
	// updates race and the later write wins in full.
	UpdatePlayer(ctx context.Context, code, playerID string, mutate func(*model.Player)) (*model.Player, error)

	// RemovePlayer deletes the player record; removing an absent player
	// is a no-op.
	RemovePlayer(ctx context.Context, code, playerID string) error

	// CommitRound writes the metadata patch and every given player record
	// as a single all-or-nothing batch. Used by the start/end transitions
	// so that status and role assignments are never observed half-applied.
	CommitRound(ctx context.Context, code string, patch MetaPatch, players []model.Player) error

	// ListAll enumerates the live-room index and fetches each room. Codes
	// whose metadata has already expired are evicted from the index here;
	// this is the only place the index heals itself.
	ListAll(ctx context.Context) ([]*model.Room, error)
}

package store

import (
	"context"
	"sync"
	"time"

	"nottebuia/internal/model"
)

// MemoryStore is the single-process RoomStore used by unit tests. It keeps
// the same observable contract as RedisStore, including the lazy index
// reaping and the sliding expiry window, which it checks against Clock on
// every access.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*memRoom
	index map[string]struct{}
	ttl   time.Duration

	// Clock is the time source used for TTL bookkeeping. Tests advance it
	// to simulate store expiry.
	Clock func() time.Time
}

type memRoom struct {
	created   bool // creation marker, set only by CreateIfAbsent
	metaSet   bool
	status    model.RoomStatus
	createdAt time.Time
	activity  time.Time
	players   []model.Player
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory room store with the given sliding
// expiry window.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*memRoom),
		index: make(map[string]struct{}),
		ttl:   ttl,
		Clock: time.Now,
	}
}

// live returns the room record if it has not expired yet. Expired records
// are dropped, but their index entries stay behind for ListAll to reap.
func (s *MemoryStore) live(code string) *memRoom {
	r, ok := s.rooms[code]
	if !ok {
		return nil
	}
	if s.Clock().After(r.expiresAt) {
		delete(s.rooms, code)
		return nil
	}
	return r
}

func (s *MemoryStore) touch(r *memRoom) {
	r.expiresAt = s.Clock().Add(s.ttl)
}

func (r *memRoom) findPlayer(playerID string) int {
	for i := range r.players {
		if r.players[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

func (r *memRoom) materialize(code string) *model.Room {
	room := &model.Room{
		Code:           code,
		Status:         r.status,
		CreatedAt:      r.createdAt,
		LastActivityAt: r.activity,
		Players:        make([]model.Player, len(r.players)),
	}
	copy(room.Players, r.players)
	return room
}

func (s *MemoryStore) Exists(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.live(code)
	return r != nil && (r.created || r.metaSet), nil
}

func (s *MemoryStore) Get(ctx context.Context, code string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.live(code)
	if r == nil || !(r.created || r.metaSet) {
		return nil, nil
	}
	return r.materialize(code), nil
}

func (s *MemoryStore) CreateIfAbsent(ctx context.Context, code string, room *model.Room) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.live(code)
	if r != nil && r.created {
		return false, nil
	}
	if r == nil {
		r = &memRoom{}
		s.rooms[code] = r
	}
	r.created = true
	r.metaSet = true
	r.status = room.Status
	r.createdAt = room.CreatedAt
	r.activity = room.LastActivityAt
	r.players = append(r.players[:0], room.Players...)
	s.index[code] = struct{}{}
	s.touch(r)
	return true, nil
}

func (s *MemoryStore) SetMeta(ctx context.Context, code string, patch MetaPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.live(code)
	if r == nil {
		// Same as Redis: writing to an expired room recreates bare
		// metadata without the creation marker or player set.
		r = &memRoom{}
		s.rooms[code] = r
	}
	r.metaSet = true
	if patch.Status != nil {
		r.status = *patch.Status
	}
	if patch.LastActivityAt != nil {
		r.activity = *patch.LastActivityAt
	}
	s.touch(r)
	return nil
}

func (s *MemoryStore) AddPlayer(ctx context.Context, code string, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.live(code)
	if r == nil {
		r = &memRoom{}
		s.rooms[code] = r
	}
	if i := r.findPlayer(player.PlayerID); i >= 0 {
		r.players[i] = *player
	} else {
		r.players = append(r.players, *player)
	}
	s.touch(r)
	return nil
}

func (s *MemoryStore) UpdatePlayer(ctx context.Context, code, playerID string, mutate func(*model.Player)) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.live(code)
	if r == nil {
		return nil, nil
	}
	i := r.findPlayer(playerID)
	if i < 0 {
		return nil, nil
	}
	mutate(&r.players[i])
	s.touch(r)
	out := r.players[i]
	return &out, nil
}

func (s *MemoryStore) RemovePlayer(ctx context.Context, code, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.live(code)
	if r == nil {
		return nil
	}
	if i := r.findPlayer(playerID); i >= 0 {
		r.players = append(r.players[:i], r.players[i+1:]...)
	}
	s.touch(r)
	return nil
}

func (s *MemoryStore) CommitRound(ctx context.Context, code string, patch MetaPatch, players []model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.live(code)
	if r == nil {
		r = &memRoom{}
		s.rooms[code] = r
	}
	r.metaSet = true
	if patch.Status != nil {
		r.status = *patch.Status
	}
	if patch.LastActivityAt != nil {
		r.activity = *patch.LastActivityAt
	}
	for i := range players {
		if j := r.findPlayer(players[i].PlayerID); j >= 0 {
			r.players[j] = players[i]
		} else {
			r.players = append(r.players, players[i])
		}
	}
	s.touch(r)
	return nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := make([]*model.Room, 0, len(s.index))
	for code := range s.index {
		r := s.live(code)
		if r == nil || !(r.created || r.metaSet) {
			delete(s.index, code)
			continue
		}
		rooms = append(rooms, r.materialize(code))
	}
	return rooms, nil
}

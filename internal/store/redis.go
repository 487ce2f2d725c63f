package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"nottebuia/internal/model"
)

// Persisted layout, shared with every other server process:
//
//	room:<code>          hash  code, status, createdAt, lastActivityAt
//	room:<code>:players  hash  playerId -> player JSON
//	rooms:index          set   all live codes
//
// createdAt doubles as the creation marker: HSETNX on it is what makes
// CreateIfAbsent atomic across processes.
const indexKey = "rooms:index"

// RedisStore is the production RoomStore backed by a shared Redis instance.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed room store with the given sliding
// expiry window.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) roomKey(code string) string {
	return fmt.Sprintf("room:%s", code)
}

func (s *RedisStore) playersKey(code string) string {
	return fmt.Sprintf("room:%s:players", code)
}

func (s *RedisStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.client.Exists(ctx, s.roomKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("room store: exists %s: %w", code, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Get(ctx context.Context, code string) (*model.Room, error) {
	var metaCmd, playersCmd *redis.MapStringStringCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		metaCmd = pipe.HGetAll(ctx, s.roomKey(code))
		playersCmd = pipe.HGetAll(ctx, s.playersKey(code))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("room store: get %s: %w", code, err)
	}
	meta := metaCmd.Val()
	if len(meta) == 0 {
		return nil, nil
	}
	return buildRoom(code, meta, playersCmd.Val()), nil
}

func (s *RedisStore) CreateIfAbsent(ctx context.Context, code string, room *model.Room) (bool, error) {
	created, err := s.client.HSetNX(ctx, s.roomKey(code), "createdAt", formatTime(room.CreatedAt)).Result()
	if err != nil {
		return false, fmt.Errorf("room store: create %s: %w", code, err)
	}
	if !created {
		return false, nil
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.roomKey(code),
		"code", code,
		"status", string(room.Status),
		"lastActivityAt", formatTime(room.LastActivityAt),
	)
	pipe.SAdd(ctx, indexKey, code)
	for i := range room.Players {
		data, err := json.Marshal(&room.Players[i])
		if err != nil {
			return false, fmt.Errorf("room store: create %s: %w", code, err)
		}
		pipe.HSet(ctx, s.playersKey(code), room.Players[i].PlayerID, data)
	}
	pipe.Expire(ctx, s.roomKey(code), s.ttl)
	pipe.Expire(ctx, s.playersKey(code), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("room store: create %s: %w", code, err)
	}
	return true, nil
}

func (s *RedisStore) SetMeta(ctx context.Context, code string, patch MetaPatch) error {
	fields := make([]interface{}, 0, 4)
	if patch.Status != nil {
		fields = append(fields, "status", string(*patch.Status))
	}
	if patch.LastActivityAt != nil {
		fields = append(fields, "lastActivityAt", formatTime(*patch.LastActivityAt))
	}

	pipe := s.client.TxPipeline()
	if len(fields) > 0 {
		pipe.HSet(ctx, s.roomKey(code), fields...)
	}
	pipe.Expire(ctx, s.roomKey(code), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("room store: set meta %s: %w", code, err)
	}
	return nil
}

func (s *RedisStore) AddPlayer(ctx context.Context, code string, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("room store: add player %s: %w", code, err)
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.playersKey(code), player.PlayerID, data)
	pipe.Expire(ctx, s.playersKey(code), s.ttl)
	pipe.Expire(ctx, s.roomKey(code), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("room store: add player %s: %w", code, err)
	}
	return nil
}

func (s *RedisStore) UpdatePlayer(ctx context.Context, code, playerID string, mutate func(*model.Player)) (*model.Player, error) {
	data, err := s.client.HGet(ctx, s.playersKey(code), playerID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("room store: update player %s/%s: %w", code, playerID, err)
	}

	var player model.Player
	if err := json.Unmarshal([]byte(data), &player); err != nil {
		return nil, fmt.Errorf("room store: update player %s/%s: %w", code, playerID, err)
	}
	mutate(&player)

	out, err := json.Marshal(&player)
	if err != nil {
		return nil, fmt.Errorf("room store: update player %s/%s: %w", code, playerID, err)
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.playersKey(code), playerID, out)
	pipe.Expire(ctx, s.playersKey(code), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("room store: update player %s/%s: %w", code, playerID, err)
	}
	return &player, nil
}

func (s *RedisStore) RemovePlayer(ctx context.Context, code, playerID string) error {
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, s.playersKey(code), playerID)
	pipe.Expire(ctx, s.playersKey(code), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("room store: remove player %s/%s: %w", code, playerID, err)
	}
	return nil
}

func (s *RedisStore) CommitRound(ctx context.Context, code string, patch MetaPatch, players []model.Player) error {
	pipe := s.client.TxPipeline()
	if patch.Status != nil {
		pipe.HSet(ctx, s.roomKey(code), "status", string(*patch.Status))
	}
	if patch.LastActivityAt != nil {
		pipe.HSet(ctx, s.roomKey(code), "lastActivityAt", formatTime(*patch.LastActivityAt))
	}
	for i := range players {
		data, err := json.Marshal(&players[i])
		if err != nil {
			return fmt.Errorf("room store: commit round %s: %w", code, err)
		}
		pipe.HSet(ctx, s.playersKey(code), players[i].PlayerID, data)
	}
	pipe.Expire(ctx, s.roomKey(code), s.ttl)
	pipe.Expire(ctx, s.playersKey(code), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("room store: commit round %s: %w", code, err)
	}
	return nil
}

func (s *RedisStore) ListAll(ctx context.Context) ([]*model.Room, error) {
	codes, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("room store: list: %w", err)
	}
	if len(codes) == 0 {
		return nil, nil
	}

	metaCmds := make([]*redis.MapStringStringCmd, len(codes))
	playerCmds := make([]*redis.MapStringStringCmd, len(codes))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, code := range codes {
			metaCmds[i] = pipe.HGetAll(ctx, s.roomKey(code))
			playerCmds[i] = pipe.HGetAll(ctx, s.playersKey(code))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("room store: list: %w", err)
	}

	rooms := make([]*model.Room, 0, len(codes))
	var stale []string
	for i, code := range codes {
		meta := metaCmds[i].Val()
		if len(meta) == 0 {
			// The metadata record expired but the index entry survived.
			stale = append(stale, code)
			continue
		}
		rooms = append(rooms, buildRoom(code, meta, playerCmds[i].Val()))
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, indexKey, toMembers(stale)...).Err(); err != nil {
			return nil, fmt.Errorf("room store: list: %w", err)
		}
	}
	return rooms, nil
}

func buildRoom(code string, meta map[string]string, playerData map[string]string) *model.Room {
	room := &model.Room{
		Code:           code,
		Status:         model.RoomStatus(meta["status"]),
		CreatedAt:      parseTime(meta["createdAt"]),
		LastActivityAt: parseTime(meta["lastActivityAt"]),
		Players:        make([]model.Player, 0, len(playerData)),
	}
	for _, data := range playerData {
		var p model.Player
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			continue
		}
		room.Players = append(room.Players, p)
	}
	return room
}

func formatTime(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseTime(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func toMembers(codes []string) []interface{} {
	members := make([]interface{}, len(codes))
	for i, c := range codes {
		members[i] = c
	}
	return members
}

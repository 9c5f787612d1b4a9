package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"quizshow-game-service/internal/domain"
)

// SessionStore persists sessions as Redis hashes:
//
//	HSET game:session:{id} data {json} version {n}
//	SADD game:room:{roomID}:sessions {id}
//
// Save performs a Lua compare-and-swap on the version field, which gives the
// at-most-one-writer guarantee per session without any cross-session lock.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// saveScript swaps the session payload only when the stored version still
// matches the one the caller loaded. Returns -1 when the session is gone,
// 0 on a version race, 1 on success.
var saveScript = redis.NewScript(`
local version = redis.call('HGET', KEYS[1], 'version')
if version == false then
  return -1
end
if tonumber(version) ~= tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'data', ARGV[2])
redis.call('HSET', KEYS[1], 'version', tonumber(ARGV[1]) + 1)
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	session.Version = 1
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := s.sessionKey(session.ID)
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, "data", data, "version", session.Version)
	pipe.SAdd(ctx, s.roomKey(session.RoomID), session.ID)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
		pipe.Expire(ctx, s.roomKey(session.RoomID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	fields, err := s.client.HGetAll(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrInvalidSession
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(fields["data"]), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if version, err := strconv.ParseInt(fields["version"], 10, 64); err == nil {
		session.Version = version
	}
	return &session, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	result, err := saveScript.Run(ctx, s.client,
		[]string{s.sessionKey(session.ID)},
		session.Version, data, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	switch result {
	case -1:
		return domain.ErrInvalidSession
	case 0:
		return domain.ErrWriteConflict
	}
	session.Version++
	return nil
}

func (s *SessionStore) ListByRoom(ctx context.Context, roomID string) ([]*domain.Session, error) {
	ids, err := s.client.SMembers(ctx, s.roomKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list room sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err == domain.ErrInvalidSession {
			// Session key expired while still indexed; drop it lazily.
			_ = s.client.SRem(ctx, s.roomKey(roomID), id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *SessionStore) sessionKey(id string) string {
	return "game:session:" + id
}

func (s *SessionStore) roomKey(roomID string) string {
	return "game:room:" + roomID + ":sessions"
}

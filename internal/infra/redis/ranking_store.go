package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizshow-game-service/internal/domain"
)

// RankingStore keeps the finished-session projection in a sorted set:
//
//	ZADD game:room:{roomID}:ranking {score} {sessionID}
//	HSET game:room:{roomID}:ranking:entries {sessionID} {json}
//
// The sorted set gives score-descending reads for free; the hash carries the
// full entry payload.
type RankingStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankingStore(client *redis.Client, ttl time.Duration) *RankingStore {
	return &RankingStore{client: client, ttl: ttl}
}

func (s *RankingStore) Record(ctx context.Context, roomID string, entry domain.RankingEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ranking entry: %w", err)
	}

	rankKey := s.rankKey(roomID)
	entriesKey := s.entriesKey(roomID)

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, rankKey, redis.Z{Score: float64(entry.Score), Member: entry.SessionID})
	pipe.HSet(ctx, entriesKey, entry.SessionID, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, rankKey, s.ttl)
		pipe.Expire(ctx, entriesKey, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record ranking entry: %w", err)
	}
	return nil
}

func (s *RankingStore) ListTop(ctx context.Context, roomID string, limit int) ([]domain.RankingEntry, error) {
	ids, err := s.client.ZRevRange(ctx, s.rankKey(roomID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list ranking: %w", err)
	}
	if len(ids) == 0 {
		return []domain.RankingEntry{}, nil
	}

	raw, err := s.client.HMGet(ctx, s.entriesKey(roomID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load ranking entries: %w", err)
	}

	entries := make([]domain.RankingEntry, 0, len(ids))
	for _, value := range raw {
		text, ok := value.(string)
		if !ok {
			continue
		}
		var entry domain.RankingEntry
		if err := json.Unmarshal([]byte(text), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal ranking entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RankingStore) rankKey(roomID string) string {
	return "game:room:" + roomID + ":ranking"
}

func (s *RankingStore) entriesKey(roomID string) string {
	return "game:room:" + roomID + ":ranking:entries"
}

package app

import (
	"context"
	"log"
	"sort"

	"quizshow-game-service/internal/domain"
)

// TopRanking projects the live leaderboard for a room straight from session
// state, so in-flight progress shows up without a write-through table.
// Entries are ordered by score descending and truncated to limit.
func (s *GameService) TopRanking(ctx context.Context, roomID string, limit int) ([]domain.RankingEntry, error) {
	if limit <= 0 {
		limit = domain.RankingLimit
	}

	sessions, err := s.sessions.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.RankingEntry, 0, len(sessions))
	for _, session := range sessions {
		entries = append(entries, domain.RankingEntry{
			SessionID: session.ID,
			Nickname:  session.Nickname,
			Score:     session.Score,
			Status:    session.Status,
			At:        session.CreatedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		// Tie-break by who joined earlier, then by name for stability.
		if !entries[i].At.Equal(entries[j].At) {
			return entries[i].At.Before(entries[j].At)
		}
		return entries[i].Nickname < entries[j].Nickname
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// FinalRanking reads the append-only store of finished sessions.
func (s *GameService) FinalRanking(ctx context.Context, roomID string, limit int) ([]domain.RankingEntry, error) {
	if limit <= 0 {
		limit = domain.RankingLimit
	}
	return s.ranking.ListTop(ctx, roomID, limit)
}

// SessionDetail returns one session's full answer history and final status
// for post-game review.
func (s *GameService) SessionDetail(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// recordFinished appends a ranking snapshot for a finished session when the
// room shows its ranking. The session state is already saved; a projection
// failure is logged, not propagated.
func (s *GameService) recordFinished(ctx context.Context, room domain.Room, session *domain.Session) {
	if !room.Config.ShowRanking {
		return
	}
	entry := domain.RankingEntry{
		SessionID: session.ID,
		Nickname:  session.Nickname,
		Score:     session.Score,
		Status:    session.Status,
		At:        s.now(),
	}
	if err := s.ranking.Record(ctx, room.ID, entry); err != nil {
		log.Printf("record ranking entry for session %s: %v", session.ID, err)
	}
}

package app

import (
	"context"

	"quizshow-game-service/internal/domain"
)

// selectAt picks one eligible question at the given level, uniformly at
// random. A nil question with a nil error means the level is exhausted,
// which is a defined outcome and never an error. The selector itself never
// looks beyond the given level; probing is drawNext's job.
func (s *GameService) selectAt(ctx context.Context, room domain.Room, session *domain.Session, level int) (*domain.Question, error) {
	filter := QuestionFilter{
		OwnerID:    room.HostID,
		Difficulty: domain.DifficultyForLevel(level),
		Themes:     room.Config.Themes,
	}
	if !room.Config.AllowRepeat {
		filter.ExcludeIDs = session.Answered
	}

	count, err := s.questions.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	question, err := s.questions.FindAtOffset(ctx, filter, s.intn(count))
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// drawNext draws the session's next question, probing subsequent levels
// upward when the current one is exhausted. Level and round changes are
// applied to the session in memory only; the caller persists once a question
// is found or exhaustion is confirmed. Returns nil when the whole pool is
// spent.
func (s *GameService) drawNext(ctx context.Context, room domain.Room, session *domain.Session) (*domain.PresentedQuestion, error) {
	for level := session.Level; level <= domain.MaxLevel; level++ {
		question, err := s.selectAt(ctx, room, session, level)
		if err != nil {
			return nil, err
		}
		if question == nil {
			continue
		}
		if level != session.Level {
			session.Level = level
			session.Round = 1
		}
		session.CurrentQuestionID = question.ID
		return s.present(*question, level), nil
	}
	return nil, nil
}

// present shapes a question for the player: alternatives are fully shuffled
// per presentation so the position of the correct answer is unpredictable.
// The order is never persisted.
func (s *GameService) present(q domain.Question, level int) *domain.PresentedQuestion {
	alternatives := q.Alternatives()
	s.shuffle(len(alternatives), func(i, j int) {
		alternatives[i], alternatives[j] = alternatives[j], alternatives[i]
	})
	return &domain.PresentedQuestion{
		ID:           q.ID,
		Statement:    q.Statement,
		Theme:        q.Theme,
		Level:        level,
		Alternatives: alternatives,
	}
}

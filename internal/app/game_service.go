package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizshow-game-service/internal/domain"
)

// RoomRepository resolves rooms and their immutable config snapshots.
type RoomRepository interface {
	FindActiveByPIN(ctx context.Context, pin string) (domain.Room, error)
	GetRoom(ctx context.Context, id string) (domain.Room, error)
}

// QuestionFilter narrows the question pool for selection. An empty Themes
// slice means no theme restriction.
type QuestionFilter struct {
	OwnerID    string
	Difficulty domain.Difficulty
	Themes     []string
	ExcludeIDs []string
}

// QuestionRepository is the read-only question bank boundary.
type QuestionRepository interface {
	Count(ctx context.Context, f QuestionFilter) (int, error)
	FindAtOffset(ctx context.Context, f QuestionFilter, offset int) (domain.Question, error)
	FindByID(ctx context.Context, id string) (domain.Question, error)
}

// SessionStore persists sessions. Save must reject a stale Version with
// domain.ErrWriteConflict so concurrent mutations of one session serialize.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	ListByRoom(ctx context.Context, roomID string) ([]*domain.Session, error)
}

// RankingStore is the append-only projection of finished sessions.
type RankingStore interface {
	Record(ctx context.Context, roomID string, e domain.RankingEntry) error
	ListTop(ctx context.Context, roomID string, limit int) ([]domain.RankingEntry, error)
}

// Explainer is the external explanation collaborator behind the chat help.
type Explainer interface {
	Explain(ctx context.Context, statement string, alternatives []string) (string, error)
}

// GameService drives a player's run through the quiz: question selection,
// answer evaluation, scoring, level transitions and help power-ups.
type GameService struct {
	rooms     RoomRepository
	questions QuestionRepository
	sessions  SessionStore
	ranking   RankingStore
	explainer Explainer

	now func() time.Time

	// rand.Rand is not goroutine safe; sessions run concurrently.
	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewGameService(rooms RoomRepository, questions QuestionRepository, sessions SessionStore, ranking RankingStore, explainer Explainer) *GameService {
	return NewGameServiceWithClock(rooms, questions, sessions, ranking, explainer,
		time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGameServiceWithClock allows deterministic timestamps and selection in tests.
func NewGameServiceWithClock(rooms RoomRepository, questions QuestionRepository, sessions SessionStore, ranking RankingStore, explainer Explainer, now func() time.Time, rnd *rand.Rand) *GameService {
	return &GameService{
		rooms:     rooms,
		questions: questions,
		sessions:  sessions,
		ranking:   ranking,
		explainer: explainer,
		now:       now,
		rnd:       rnd,
	}
}

// StartResult is the payload returned when a player joins a room.
type StartResult struct {
	SessionID string                    `json:"sessionId"`
	Question  *domain.PresentedQuestion `json:"question"`
	Level     int                       `json:"level"`
	Score     int                       `json:"score"`
	Config    domain.PlayerConfig       `json:"playerConfig"`
}

// AnswerResult summarizes the outcome of one answer submission. The correct
// answer is always revealed; NextQuestion is nil when the game is over.
type AnswerResult struct {
	Correct       bool                      `json:"correct"`
	Feedback      string                    `json:"feedback"`
	GameOver      bool                      `json:"gameOver"`
	CorrectAnswer string                    `json:"correctAnswer"`
	Score         int                       `json:"score"`
	NextQuestion  *domain.PresentedQuestion `json:"nextQuestion,omitempty"`
}

// StartSession resolves an active room by PIN, creates a fresh session for
// the player and draws the first question.
func (s *GameService) StartSession(ctx context.Context, pin, nickname string) (StartResult, error) {
	if !validPIN(pin) {
		return StartResult{}, domain.ErrRoomNotFound
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return StartResult{}, fmt.Errorf("nickname is required")
	}

	room, err := s.rooms.FindActiveByPIN(ctx, pin)
	if err != nil {
		return StartResult{}, err
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		Nickname:  nickname,
		Level:     1,
		Round:     1,
		Status:    domain.StatusInProgress,
		CreatedAt: s.now(),
	}

	question, err := s.drawNext(ctx, room, session)
	if err != nil {
		return StartResult{}, err
	}
	if question == nil {
		// Nothing in the pool matches the room's criteria; refuse to start
		// a game that would be won before the first answer.
		return StartResult{}, domain.ErrQuestionNotFound
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return StartResult{}, err
	}

	return StartResult{
		SessionID: session.ID,
		Question:  question,
		Level:     session.Level,
		Score:     session.Score,
		Config:    room.Config.PlayerView(),
	}, nil
}

// ProcessAnswer runs one answer submission through the state machine. It
// records the answer, applies the scoring and leveling policy, draws the
// next question and persists the session.
func (s *GameService) ProcessAnswer(ctx context.Context, sessionID, questionID, answer string) (AnswerResult, error) {
	current, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	if current.Status.Terminal() {
		return AnswerResult{}, domain.ErrInvalidSession
	}

	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return AnswerResult{}, err
	}

	room, err := s.rooms.GetRoom(ctx, current.RoomID)
	if err != nil {
		return AnswerResult{}, err
	}

	var result AnswerResult
	updated, err := s.mutate(ctx, sessionID, func(session *domain.Session) error {
		result = AnswerResult{}
		if session.Status.Terminal() {
			return domain.ErrInvalidSession
		}
		if session.CurrentQuestionID != "" && session.CurrentQuestionID != questionID {
			return domain.ErrQuestionMismatch
		}

		outcome := applyAnswer(session, room.Config, question, answer, s.now())
		result.Correct = outcome.correct
		result.Feedback = outcome.feedback
		result.GameOver = outcome.gameOver
		result.CorrectAnswer = question.Correct

		if !outcome.gameOver {
			next, err := s.drawNext(ctx, room, session)
			if err != nil {
				return err
			}
			if next == nil {
				// Running out of content is a win, not a loss.
				session.Status = domain.StatusWon
				session.CurrentQuestionID = ""
				result.GameOver = true
				result.Feedback = feedbackExhausted
			} else {
				result.NextQuestion = next
			}
		} else {
			session.CurrentQuestionID = ""
		}

		result.Score = session.Score
		return nil
	})
	if err != nil {
		return AnswerResult{}, err
	}

	if result.GameOver {
		s.recordFinished(ctx, room, updated)
	}
	return result, nil
}

// Forfeit ends an in-progress session as forfeited and returns its final
// state.
func (s *GameService) Forfeit(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.mutate(ctx, sessionID, func(session *domain.Session) error {
		if session.Status.Terminal() {
			return domain.ErrInvalidSession
		}
		session.Status = domain.StatusForfeited
		session.CurrentQuestionID = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	if room, err := s.rooms.GetRoom(ctx, session.RoomID); err == nil {
		s.recordFinished(ctx, room, session)
	}
	return session, nil
}

// mutate serializes a load-modify-save cycle for one session, retrying a
// bounded number of times when a concurrent writer won the version race.
const saveAttempts = 3

func (s *GameService) mutate(ctx context.Context, sessionID string, fn func(*domain.Session) error) (*domain.Session, error) {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		session, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if err := fn(session); err != nil {
			return nil, err
		}
		if err := s.sessions.Save(ctx, session); err != nil {
			if errors.Is(err, domain.ErrWriteConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return session, nil
	}
	return nil, lastErr
}

func (s *GameService) intn(n int) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(n)
}

func (s *GameService) shuffle(n int, swap func(i, j int)) {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	s.rnd.Shuffle(n, swap)
}

// validPIN accepts the fixed-width numeric join code format.
func validPIN(pin string) bool {
	if len(pin) != 6 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

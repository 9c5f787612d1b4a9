package app

import (
	"time"

	"quizshow-game-service/internal/domain"
)

// Feedback strings surfaced to players.
const (
	feedbackCorrect       = "Correct!"
	feedbackVictory       = "Congratulations! You completed the game."
	feedbackClassicLoss   = "Wrong! Game over (classic mode)."
	feedbackSecondMistake = "Wrong! Second mistake. Game over."
	feedbackLevelDrop     = "Wrong! You dropped levels."
	feedbackTimeout       = "Time expired. Question discarded."
	feedbackExhausted     = "No more questions available!"
)

// mistakeLimit ends the game on the second wrong answer outside classic mode.
const mistakeLimit = 2

type answerOutcome struct {
	correct  bool
	gameOver bool
	feedback string
}

// applyAnswer is the scoring and leveling policy: it evaluates the submitted
// answer against the question, records it in history and advances the
// session. It never touches the store; the caller persists the session once.
func applyAnswer(session *domain.Session, cfg domain.RoomConfig, question domain.Question, answer string, now time.Time) answerOutcome {
	timedOut := answer == domain.AnswerTimeout
	correct := !timedOut && answer == question.Correct

	session.History = append(session.History, domain.AnswerRecord{
		QuestionID: question.ID,
		Statement:  question.Statement,
		Submitted:  answer,
		Correct:    question.Correct,
		Right:      correct,
		At:         now,
	})
	if !session.HasAnswered(question.ID) {
		session.Answered = append(session.Answered, question.ID)
	}

	if timedOut {
		// No penalty: level, round, score and mistakes stay put. The
		// question is burned and a fresh one gets drawn.
		return answerOutcome{feedback: feedbackTimeout}
	}

	if correct {
		session.Score += cfg.PointsForLevel(session.Level)
		session.Round++
		if session.Round > domain.RoundsPerLevel {
			session.Round = 1
			session.Level++
		}
		if session.Level > domain.MaxLevel {
			session.Level = domain.MaxLevel
			session.Status = domain.StatusWon
			return answerOutcome{correct: true, gameOver: true, feedback: feedbackVictory}
		}
		return answerOutcome{correct: true, feedback: feedbackCorrect}
	}

	if cfg.Mode == domain.ModeClassic {
		session.Status = domain.StatusLost
		return answerOutcome{gameOver: true, feedback: feedbackClassicLoss}
	}

	session.Mistakes++
	if session.Mistakes >= mistakeLimit {
		session.Status = domain.StatusLost
		return answerOutcome{gameOver: true, feedback: feedbackSecondMistake}
	}

	session.Level -= 2
	if session.Level < 1 {
		session.Level = 1
	}
	session.Round = 1
	return answerOutcome{feedback: feedbackLevelDrop}
}

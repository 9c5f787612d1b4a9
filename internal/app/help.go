package app

import (
	"context"
	"fmt"

	"quizshow-game-service/internal/domain"
)

// HelpResult carries the type-specific payload of a power-up. Exactly one of
// Remove, Votes or Message is populated, matching Type.
type HelpResult struct {
	Type    domain.HelpType `json:"type"`
	Remove  []string        `json:"remove,omitempty"`
	Votes   map[string]int  `json:"votes,omitempty"`
	Message string          `json:"message,omitempty"`
}

// audienceWeight is the crowd accuracy per difficulty tier; harder questions
// get a less reliable audience.
func audienceWeight(d domain.Difficulty) float64 {
	switch d {
	case domain.DifficultyVeryEasy:
		return 0.90
	case domain.DifficultyEasy:
		return 0.75
	case domain.DifficultyMedium:
		return 0.55
	case domain.DifficultyHard:
		return 0.40
	default:
		return 0.25
	}
}

// ProcessHelp runs one power-up. Each type is usable at most once per
// session; the flag is consumed and persisted only after the payload was
// produced, so a failed chat call leaves the help available for retry.
func (s *GameService) ProcessHelp(ctx context.Context, sessionID string, helpType domain.HelpType, questionID string) (HelpResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return HelpResult{}, err
	}
	if session.Status.Terminal() {
		return HelpResult{}, domain.ErrInvalidSession
	}
	if session.CurrentQuestionID != "" && session.CurrentQuestionID != questionID {
		return HelpResult{}, domain.ErrQuestionMismatch
	}
	if session.HelpUsed.Used(helpType) {
		return HelpResult{}, domain.ErrHelpAlreadyUsed
	}

	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return HelpResult{}, err
	}

	result := HelpResult{Type: helpType}
	switch helpType {
	case domain.HelpEliminate:
		result.Remove = eliminateAlternatives(question)
	case domain.HelpAudience:
		result.Votes = s.audienceVotes(question)
	case domain.HelpChat:
		text, err := s.explainer.Explain(ctx, question.Statement, question.Alternatives())
		if err != nil {
			return HelpResult{}, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
		}
		result.Message = text
	default:
		return HelpResult{}, fmt.Errorf("unknown help type %q", helpType)
	}

	if _, err := s.mutate(ctx, sessionID, func(session *domain.Session) error {
		if session.Status.Terminal() {
			return domain.ErrInvalidSession
		}
		if session.HelpUsed.Used(helpType) {
			return domain.ErrHelpAlreadyUsed
		}
		session.HelpUsed.Mark(helpType)
		return nil
	}); err != nil {
		return HelpResult{}, err
	}
	return result, nil
}

// eliminateAlternatives returns the alternatives removed by the eliminate
// help: the pre-marked eliminable ones, or the first two incorrect ones when
// none are marked. The correct answer is never removed and at least one
// incorrect alternative always survives.
func eliminateAlternatives(q domain.Question) []string {
	marked := q.Eliminable
	if len(marked) == 0 {
		n := 2
		if len(q.Incorrect) < n {
			n = len(q.Incorrect)
		}
		marked = q.Incorrect[:n]
	}

	out := make([]string, 0, len(marked))
	for _, alt := range marked {
		if alt != q.Correct {
			out = append(out, alt)
		}
	}
	if max := len(q.Incorrect) - 1; max >= 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// audienceVotes synthesizes a 100-point vote distribution: the correct
// alternative gets the floor of its tier weight, the rest is spread over the
// incorrect ones with the last absorbing the remainder so the total is
// always exactly 100.
func (s *GameService) audienceVotes(q domain.Question) map[string]int {
	votes := make(map[string]int, 1+len(q.Incorrect))

	correctVotes := int(audienceWeight(q.Difficulty) * 100)
	votes[q.Correct] = correctVotes

	remaining := 100 - correctVotes
	if len(q.Incorrect) == 0 {
		votes[q.Correct] += remaining
		return votes
	}
	for i, alt := range q.Incorrect {
		if i == len(q.Incorrect)-1 {
			votes[alt] += remaining
			break
		}
		share := s.intn(remaining + 1)
		votes[alt] += share
		remaining -= share
	}
	return votes
}

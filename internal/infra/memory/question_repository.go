package memory

import (
	"context"
	"sync"

	"quizshow-game-service/internal/app"
	"quizshow-game-service/internal/domain"
)

// QuestionRepository is an in-memory question bank (useful for tests/demos).
// Questions keep insertion order, which makes offset-based selection
// deterministic for a fixed filter.
type QuestionRepository struct {
	mu        sync.RWMutex
	questions []domain.Question
}

func NewQuestionRepository(questions []domain.Question) *QuestionRepository {
	return &QuestionRepository{questions: questions}
}

// Add appends a question to the bank.
func (r *QuestionRepository) Add(q domain.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, q)
}

func (r *QuestionRepository) Count(_ context.Context, f app.QuestionFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for i := range r.questions {
		if matches(r.questions[i], f) {
			count++
		}
	}
	return count, nil
}

func (r *QuestionRepository) FindAtOffset(_ context.Context, f app.QuestionFilter, offset int) (domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := 0
	for i := range r.questions {
		if !matches(r.questions[i], f) {
			continue
		}
		if seen == offset {
			return r.questions[i], nil
		}
		seen++
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (r *QuestionRepository) FindByID(_ context.Context, id string) (domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.questions {
		if r.questions[i].ID == id {
			return r.questions[i], nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func matches(q domain.Question, f app.QuestionFilter) bool {
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	if f.OwnerID != "" && q.OwnerID != f.OwnerID {
		return false
	}
	if len(f.Themes) > 0 {
		found := false
		for _, theme := range f.Themes {
			if q.Theme == theme {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, id := range f.ExcludeIDs {
		if q.ID == id {
			return false
		}
	}
	return true
}

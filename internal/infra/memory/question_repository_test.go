package memory

import (
	"context"
	"errors"
	"testing"

	"quizshow-game-service/internal/app"
	"quizshow-game-service/internal/domain"
)

func sampleBank() []domain.Question {
	return []domain.Question{
		{ID: "q1", OwnerID: "prof-1", Theme: "history", Difficulty: domain.DifficultyVeryEasy, Correct: "a", Incorrect: []string{"b"}},
		{ID: "q2", OwnerID: "prof-1", Theme: "history", Difficulty: domain.DifficultyVeryEasy, Correct: "a", Incorrect: []string{"b"}},
		{ID: "q3", OwnerID: "prof-1", Theme: "science", Difficulty: domain.DifficultyVeryEasy, Correct: "a", Incorrect: []string{"b"}},
		{ID: "q4", OwnerID: "prof-2", Theme: "history", Difficulty: domain.DifficultyVeryEasy, Correct: "a", Incorrect: []string{"b"}},
		{ID: "q5", OwnerID: "prof-1", Theme: "history", Difficulty: domain.DifficultyEasy, Correct: "a", Incorrect: []string{"b"}},
	}
}

func TestQuestionRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository(sampleBank())

	count, err := repo.Count(ctx, app.QuestionFilter{
		OwnerID:    "prof-1",
		Difficulty: domain.DifficultyVeryEasy,
		Themes:     []string{"history"},
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 matches, got %d", count)
	}

	// An empty theme set means no restriction, not "match nothing".
	count, err = repo.Count(ctx, app.QuestionFilter{OwnerID: "prof-1", Difficulty: domain.DifficultyVeryEasy})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 matches with no theme filter, got %d", count)
	}

	count, err = repo.Count(ctx, app.QuestionFilter{
		OwnerID:    "prof-1",
		Difficulty: domain.DifficultyVeryEasy,
		ExcludeIDs: []string{"q1", "q2"},
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 match after exclusions, got %d", count)
	}
}

func TestQuestionRepositoryFindAtOffset(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository(sampleBank())
	filter := app.QuestionFilter{OwnerID: "prof-1", Difficulty: domain.DifficultyVeryEasy, Themes: []string{"history"}}

	first, err := repo.FindAtOffset(ctx, filter, 0)
	if err != nil {
		t.Fatalf("offset 0: %v", err)
	}
	second, err := repo.FindAtOffset(ctx, filter, 1)
	if err != nil {
		t.Fatalf("offset 1: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("offsets must address distinct questions")
	}

	if _, err := repo.FindAtOffset(ctx, filter, 2); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found past the end, got %v", err)
	}
}

func TestQuestionRepositoryFindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository(sampleBank())

	q, err := repo.FindByID(ctx, "q3")
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if q.Theme != "science" {
		t.Fatalf("wrong question: %+v", q)
	}

	if _, err := repo.FindByID(ctx, "nope"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

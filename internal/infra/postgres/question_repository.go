package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizshow-game-service/internal/app"
	"quizshow-game-service/internal/domain"
)

// QuestionRepository reads the question bank from Postgres. Offset-based
// selection orders by id so a (count, random offset) pair from the game
// service lands on a stable row.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func (r *QuestionRepository) Count(ctx context.Context, f app.QuestionFilter) (int, error) {
	where, args := buildFilter(f)

	var count int
	query := "SELECT COUNT(*) FROM questions" + where
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

func (r *QuestionRepository) FindAtOffset(ctx context.Context, f app.QuestionFilter, offset int) (domain.Question, error) {
	where, args := buildFilter(f)
	args = append(args, offset)

	query := fmt.Sprintf(
		"SELECT id, owner_id, theme, difficulty, statement, correct, incorrect, eliminable, created_at FROM questions%s ORDER BY id OFFSET $%d LIMIT 1",
		where, len(args),
	)
	return r.scanQuestion(r.pool.QueryRow(ctx, query, args...))
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (domain.Question, error) {
	return r.scanQuestion(r.pool.QueryRow(ctx,
		"SELECT id, owner_id, theme, difficulty, statement, correct, incorrect, eliminable, created_at FROM questions WHERE id=$1",
		id,
	))
}

func (r *QuestionRepository) scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q             domain.Question
		incorrectRaw  []byte
		eliminableRaw []byte
		createdAt     time.Time
	)
	err := row.Scan(&q.ID, &q.OwnerID, &q.Theme, &q.Difficulty, &q.Statement, &q.Correct, &incorrectRaw, &eliminableRaw, &createdAt)
	if err == pgx.ErrNoRows {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	if err := json.Unmarshal(incorrectRaw, &q.Incorrect); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal incorrect alternatives: %w", err)
	}
	if len(eliminableRaw) > 0 {
		if err := json.Unmarshal(eliminableRaw, &q.Eliminable); err != nil {
			return domain.Question{}, fmt.Errorf("unmarshal eliminable alternatives: %w", err)
		}
	}
	q.CreatedAt = createdAt
	return q, nil
}

// buildFilter renders the WHERE clause for a question filter. An empty theme
// set adds no theme predicate at all: no restriction, not "match nothing".
func buildFilter(f app.QuestionFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.Difficulty != "" {
		add("difficulty = $%d", string(f.Difficulty))
	}
	if f.OwnerID != "" {
		add("owner_id = $%d", f.OwnerID)
	}
	if len(f.Themes) > 0 {
		add("theme = ANY($%d)", f.Themes)
	}
	if len(f.ExcludeIDs) > 0 {
		add("NOT (id = ANY($%d))", f.ExcludeIDs)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizshow-game-service/internal/app"
	"quizshow-game-service/internal/domain"
	pgstore "quizshow-game-service/internal/infra/postgres"
	pgmigrations "quizshow-game-service/internal/infra/postgres/migrations"
	redisstore "quizshow-game-service/internal/infra/redis"
)

type noopExplainer struct{}

func (noopExplainer) Explain(context.Context, string, []string) (string, error) {
	return "explanation", nil
}

func TestFullGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedGameData(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	service := app.NewGameService(
		pgstore.NewRoomRepository(pool),
		pgstore.NewQuestionRepository(pool),
		redisstore.NewSessionStore(redisClient, time.Hour),
		redisstore.NewRankingStore(redisClient, time.Hour),
		noopExplainer{},
	)

	started, err := service.StartSession(ctx, "123456", "Alice")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if started.Question == nil || started.Question.Level != 1 {
		t.Fatalf("expected a level-1 question, got %+v", started.Question)
	}

	// Play the whole game: every question's correct answer is derivable
	// from its ID the way the seed encodes it.
	question := started.Question
	var last app.AnswerResult
	for i := 0; i < domain.MaxLevel*domain.RoundsPerLevel; i++ {
		last, err = service.ProcessAnswer(ctx, started.SessionID, question.ID, "right-"+question.ID)
		if err != nil {
			t.Fatalf("answer %d: %v", i+1, err)
		}
		if !last.Correct {
			t.Fatalf("answer %d unexpectedly wrong", i+1)
		}
		question = last.NextQuestion
	}
	if !last.GameOver || last.Score != 450 {
		t.Fatalf("expected victory with 450 points, got %+v", last)
	}

	session, err := service.SessionDetail(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("session detail: %v", err)
	}
	if session.Status != domain.StatusWon {
		t.Fatalf("expected won, got %s", session.Status)
	}

	entries, err := service.FinalRanking(ctx, session.RoomID, 10)
	if err != nil {
		t.Fatalf("final ranking: %v", err)
	}
	if len(entries) != 1 || entries[0].Nickname != "Alice" || entries[0].Score != 450 {
		t.Fatalf("expected Alice's victory recorded, got %+v", entries)
	}

	live, err := service.TopRanking(ctx, session.RoomID, 10)
	if err != nil {
		t.Fatalf("top ranking: %v", err)
	}
	if len(live) != 1 || live[0].Status != domain.StatusWon {
		t.Fatalf("expected live board to show the finished session, got %+v", live)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "game", "POSTGRES_PASSWORD": "gamepass", "POSTGRES_DB": "gamedb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://game:gamepass@%s:%s/gamedb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

// seedGameData applies migrations and inserts a room plus three questions per
// difficulty tier.
func seedGameData(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	config, err := json.Marshal(domain.RoomConfig{
		Mode:        domain.ModeClassic,
		TimeMode:    domain.TimeFixed,
		ShowRanking: true,
	})
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO rooms (id, pin, host_id, active, config) VALUES (?, ?, ?, TRUE, ?::jsonb)`,
		"room-1", "123456", "prof-1", string(config),
	); err != nil {
		t.Fatalf("insert room: %v", err)
	}

	for level := 1; level <= domain.MaxLevel; level++ {
		difficulty := domain.DifficultyForLevel(level)
		for i := 1; i <= domain.RoundsPerLevel; i++ {
			id := fmt.Sprintf("q-%s-%d", difficulty, i)
			incorrect, _ := json.Marshal([]string{"wrong-1-" + id, "wrong-2-" + id, "wrong-3-" + id})
			if _, err := db.ExecContext(ctx,
				`INSERT INTO questions (id, owner_id, theme, difficulty, statement, correct, incorrect) VALUES (?, ?, ?, ?, ?, ?, ?::jsonb)`,
				id, "prof-1", "math", string(difficulty), "statement "+id, "right-"+id, string(incorrect),
			); err != nil {
				t.Fatalf("insert question: %v", err)
			}
		}
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizshow-game-service/internal/app"
	"quizshow-game-service/internal/config"
	"quizshow-game-service/internal/domain"
	"quizshow-game-service/internal/infra/genai"
	"quizshow-game-service/internal/infra/memory"
	pgstore "quizshow-game-service/internal/infra/postgres"
	redisstore "quizshow-game-service/internal/infra/redis"
	transport "quizshow-game-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var rooms app.RoomRepository
	var questions app.QuestionRepository
	if pool != nil {
		rooms = pgstore.NewRoomRepository(pool)
		questions = pgstore.NewQuestionRepository(pool)
	} else {
		rooms = memory.NewRoomRepository(sampleRoom())
		questions = memory.NewQuestionRepository(sampleQuestions())
	}
	roomCacheTTL := config.TTLDuration(cfg.Room.CacheTTL, 10*time.Minute)
	rooms = memory.NewRoomCache(rooms, roomCacheTTL)

	var sessions app.SessionStore
	var ranking app.RankingStore
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
		ranking = redisstore.NewRankingStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
		ranking = memory.NewRankingStore()
	}

	explainer := genai.NewExplainer(cfg.GenAI.BaseURL, cfg.GenAI.Model, cfg.GenAI.APIKey)

	service := app.NewGameService(rooms, questions, sessions, ranking, explainer)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting game service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleRoom and sampleQuestions provide a playable demo pool when no
// Postgres is configured; swap in the database-backed repositories in
// production.
func sampleRoom() domain.Room {
	return domain.Room{
		ID:     "room-demo",
		PIN:    "123456",
		HostID: "host-demo",
		Config: domain.RoomConfig{
			Mode:        domain.ModeClassic,
			TimeMode:    domain.TimeFixed,
			ShowRanking: true,
		},
		Active:    true,
		CreatedAt: time.Now(),
	}
}

func sampleQuestions() []domain.Question {
	questions := make([]domain.Question, 0, domain.MaxLevel*domain.RoundsPerLevel)
	statements := map[domain.Difficulty]string{
		domain.DifficultyVeryEasy: "What is 2 + 2?",
		domain.DifficultyEasy:     "What is 12 x 12?",
		domain.DifficultyMedium:   "What is the square root of 1024?",
		domain.DifficultyHard:     "What is 2 to the power of 10?",
		domain.DifficultyVeryHard: "What is the 10th prime number?",
	}
	answers := map[domain.Difficulty][2]string{
		domain.DifficultyVeryEasy: {"4", "5"},
		domain.DifficultyEasy:     {"144", "142"},
		domain.DifficultyMedium:   {"32", "34"},
		domain.DifficultyHard:     {"1024", "2048"},
		domain.DifficultyVeryHard: {"29", "31"},
	}
	for level := 1; level <= domain.MaxLevel; level++ {
		difficulty := domain.DifficultyForLevel(level)
		for round := 1; round <= domain.RoundsPerLevel; round++ {
			questions = append(questions, domain.Question{
				ID:         string(difficulty) + "-" + string(rune('0'+round)),
				OwnerID:    "host-demo",
				Theme:      "math",
				Statement:  statements[difficulty],
				Difficulty: difficulty,
				Correct:    answers[difficulty][0],
				Incorrect:  []string{answers[difficulty][1], "7", "11"},
				CreatedAt:  time.Now(),
			})
		}
	}
	return questions
}

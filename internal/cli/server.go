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

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/app"
	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/config"
	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/infra/memory"
	pgloader "github.com/connorrli/cs1531-Project-Backend-sub000/internal/infra/postgres"
	redisinfra "github.com/connorrli/cs1531-Project-Backend-sub000/internal/infra/redis"
	transport "github.com/connorrli/cs1531-Project-Backend-sub000/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.DurationOr(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var snapshots app.SnapshotStore = app.NopSnapshotStore{}
	if redisClient != nil {
		snapshotTTL := config.DurationOr(cfg.Redis.TTL, 24*time.Hour)
		snapshots = redisinfra.NewSnapshotStore(redisClient, snapshotTTL)
	}

	service := app.NewSessionService(app.Config{
		Sessions:          memory.NewSessionStore(),
		Quizzes:           quizRepo,
		Snapshots:         snapshots,
		Scheduler:         app.NewTimerScheduler(),
		Countdown:         config.DurationOr(cfg.Session.Countdown, app.DefaultCountdown),
		MaxActiveSessions: cfg.Session.MaxActive,
		MaxAutoStart:      cfg.Session.MaxAutoStart,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewHandler(service).Register(mux)
	mux.HandleFunc("GET /v1/ws", transport.NewWSHandler(service).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz session service on :%s", finalPort)
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

// sampleQuizzes provides demo quiz data for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{
					ID:       "q1",
					Prompt:   "What is 2 + 2?",
					Duration: 30,
					Points:   5,
					Answers: []domain.Answer{
						{ID: "a1", Text: "3", Colour: "red"},
						{ID: "a2", Text: "4", Colour: "blue", Correct: true},
						{ID: "a3", Text: "5", Colour: "green"},
					},
				},
				{
					ID:       "q2",
					Prompt:   "Which of these are primes?",
					Duration: 45,
					Points:   10,
					Answers: []domain.Answer{
						{ID: "a1", Text: "2", Colour: "red", Correct: true},
						{ID: "a2", Text: "4", Colour: "blue"},
						{ID: "a3", Text: "7", Colour: "green", Correct: true},
					},
				},
			},
		},
	}
}

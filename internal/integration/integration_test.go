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

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/app"
	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/infra/memory"
	pgloader "github.com/connorrli/cs1531-Project-Backend-sub000/internal/infra/postgres"
	pgmigrations "github.com/connorrli/cs1531-Project-Backend-sub000/internal/infra/postgres/migrations"
	infraredis "github.com/connorrli/cs1531-Project-Backend-sub000/internal/infra/redis"
)

func TestSessionLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuiz(t, ctx, pgURL, sampleQuiz())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	quizRepo := infraredis.NewQuizRepository(redisClient, pgloader.NewQuizLoader(pool), 5*time.Minute)
	snapshots := infraredis.NewSnapshotStore(redisClient, time.Hour)
	service := app.NewSessionService(app.Config{
		Sessions:  memory.NewSessionStore(),
		Quizzes:   quizRepo,
		Snapshots: snapshots,
	})

	sessionID, err := service.StartSession(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	alice, err := service.Join(ctx, sessionID, "Alice")
	if err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if _, err := service.Join(ctx, sessionID, "Bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}

	if err := service.ApplyAction(ctx, sessionID, "NEXT_QUESTION"); err != nil {
		t.Fatalf("next question: %v", err)
	}
	if err := service.ApplyAction(ctx, sessionID, "SKIP_COUNTDOWN"); err != nil {
		t.Fatalf("skip countdown: %v", err)
	}
	if err := service.SubmitAnswer(ctx, alice, 1, []string{"a2"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := service.ApplyAction(ctx, sessionID, "GO_TO_ANSWER"); err != nil {
		t.Fatalf("go to answer: %v", err)
	}

	results, err := service.QuestionResults(alice, 1)
	if err != nil {
		t.Fatalf("question results: %v", err)
	}
	if len(results.PlayersCorrectList) != 1 || results.PlayersCorrectList[0] != "Alice" {
		t.Fatalf("unexpected correct list %v", results.PlayersCorrectList)
	}
	if results.PercentCorrect != 50 {
		t.Fatalf("expected 50%% correct, got %d", results.PercentCorrect)
	}

	if err := service.ApplyAction(ctx, sessionID, "GO_TO_FINAL_RESULTS"); err != nil {
		t.Fatalf("go to final results: %v", err)
	}
	final, err := service.FinalResults(sessionID)
	if err != nil {
		t.Fatalf("final results: %v", err)
	}
	if final.UsersRankedByScore[0].Name != "Alice" || final.UsersRankedByScore[0].Score != 5 {
		t.Fatalf("unexpected winner %+v", final.UsersRankedByScore)
	}

	if err := service.ApplyAction(ctx, sessionID, "END"); err != nil {
		t.Fatalf("end: %v", err)
	}

	// Every step snapshots the session to Redis; after END the stored
	// record reflects the terminal state.
	snap, err := snapshots.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snap.State != domain.StateEnd || len(snap.Players) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func seedQuiz(t *testing.T, ctx context.Context, dsn string, quiz domain.Quiz) {
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

	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO quizzes (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, quiz.ID, string(data)); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
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
		},
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

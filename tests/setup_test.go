//go:build integration

package tests

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	httpAdapter "github.com/gruzdev-dev/codex-users/adapters/http"
	postgresAdapter "github.com/gruzdev-dev/codex-users/adapters/storage/postgres"
	"github.com/gruzdev-dev/codex-users/configs"
	"github.com/gruzdev-dev/codex-users/core/ports"
	"github.com/gruzdev-dev/codex-users/core/services"
	"github.com/gruzdev-dev/codex-users/migrations"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/dig"
	"go.uber.org/mock/gomock"
)

type TestEnv struct {
	Container *dig.Container
	DB        *pgxpool.Pool
	ServerURL string
	CacheMock *ports.MockUserCache
	Cleanup   func()
}

func SetupTestEnv(t *testing.T) *TestEnv {
	ctx := context.Background()

	// create logger
	logger := log.New(io.Discard, "", 0)

	// create db pool and postgres container
	dbPool, pgContainer := newPool(t, ctx, logger)

	// create config
	config := newConfig(t, ctx, pgContainer)

	// create gomock controller
	ctrl := gomock.NewController(t)

	// cache is mocked; the redis adapter itself is covered by the health probe
	cacheMock := ports.NewMockUserCache(ctrl)

	// redis client pointing nowhere, so the health probe reports unhealthy
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	container := newContainer(t, config, dbPool, cacheMock, rdb)

	var handler *httpAdapter.Handler
	var health *httpAdapter.HealthHandler
	err := container.Invoke(func(h *httpAdapter.Handler, hh *httpAdapter.HealthHandler) {
		handler = h
		health = hh
	})
	require.NoError(t, err)

	// http test server
	router := mux.NewRouter()
	health.RegisterRoutes(router)
	handler.RegisterRoutes(router.PathPrefix("/api").Subrouter())
	ts := httptest.NewServer(router)

	return &TestEnv{
		Container: container,
		DB:        dbPool,
		ServerURL: ts.URL,
		CacheMock: cacheMock,
		Cleanup: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			ts.Close()
			_ = rdb.Close()
			dbPool.Close()
			_ = pgContainer.Terminate(ctx)
			ctrl.Finish()
		},
	}
}

func newContainer(t *testing.T, config *configs.Config, pool *pgxpool.Pool, cacheMock *ports.MockUserCache, rdb *redis.Client) *dig.Container {
	container := dig.New()

	if err := container.Provide(func() *configs.Config { return config }); err != nil {
		t.Fatalf("failed to provide config: %v", err)
	}

	if err := container.Provide(func() *pgxpool.Pool { return pool }); err != nil {
		t.Fatalf("failed to provide db pool: %v", err)
	}

	if err := container.Provide(func() *redis.Client { return rdb }); err != nil {
		t.Fatalf("failed to provide redis client: %v", err)
	}

	if err := container.Provide(postgresAdapter.NewUserRepo, dig.As(new(ports.UserRepository))); err != nil {
		t.Fatalf("failed to provide user repo: %v", err)
	}

	if err := container.Provide(func() ports.UserCache { return cacheMock }); err != nil {
		t.Fatalf("failed to provide cache mock: %v", err)
	}

	if err := container.Provide(newUserService); err != nil {
		t.Fatalf("failed to provide user service: %v", err)
	}

	if err := container.Provide(httpAdapter.NewHandler); err != nil {
		t.Fatalf("failed to provide http handler: %v", err)
	}

	if err := container.Provide(httpAdapter.NewHealthHandler); err != nil {
		t.Fatalf("failed to provide health handler: %v", err)
	}

	return container
}

func newPool(t *testing.T, ctx context.Context, logger *log.Logger) (*pgxpool.Pool, *postgres.PostgresContainer) {
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("codex_users_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithSQLDriver("pgx"),
		testcontainers.WithLogger(logger),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)

	if err != nil {
		t.Fatalf("failed to run postgres container: %v", err)
	}

	connectionString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")

	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping db: %v", err)
	}

	migrationSQL, err := migrations.FS.ReadFile("001_create_users.up.sql")
	if err != nil {
		t.Fatalf("failed to read migration file: %s", err)
	}

	_, err = pool.Exec(ctx, string(migrationSQL))
	if err != nil {
		t.Fatalf("failed to apply migration: %s", err)
	}

	return pool, pgContainer
}

func newConfig(t *testing.T, ctx context.Context, pgContainer *postgres.PostgresContainer) *configs.Config {
	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	cfg, err := configs.NewConfig()

	if err != nil {
		t.Fatalf("failed to create config: %v", err)
	}

	cfg.HTTP.Port = "8080"
	cfg.DB.Host = host
	cfg.DB.Port = port.Port()
	cfg.DB.User = "testuser"
	cfg.DB.Password = "testpass"
	cfg.DB.Database = "codex_users_test"
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = "1"

	return cfg
}

func newUserService(repo ports.UserRepository, cache ports.UserCache) *services.UserService {
	return services.NewUserService(repo, cache, services.DefaultCacheTTL)
}

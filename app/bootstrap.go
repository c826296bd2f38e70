package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"postboard/internal/auth"
	"postboard/internal/comment"
	"postboard/internal/db"
	"postboard/internal/maintenance"
	"postboard/internal/observability"
	"postboard/internal/post"
	"postboard/internal/redis"
)

type Options struct {
	LoadDotEnv    bool
	RunMigrations bool
}

type Runtime struct {
	Handler http.Handler
	Close   func() error
}

// Build wires the whole service from environment configuration and returns a
// ready http.Handler. Signing secrets and TTLs are injected into constructors
// here; business logic never reads ambient state.
func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	logger := observability.NewLogger()

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	accessSecret, err := mustEnv("JWT_ACCESS_SECRET")
	if err != nil {
		return nil, err
	}
	refreshSecret, err := mustEnv("JWT_REFRESH_SECRET")
	if err != nil {
		return nil, err
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if err := observability.InitSentry(os.Getenv("SENTRY_DSN"), envOrDefault("APP_ENV", "development")); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	database, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database.SetMaxOpenConns(envIntOrDefault("DB_MAX_OPEN_CONNS", 10))
	database.SetMaxIdleConns(envIntOrDefault("DB_MAX_IDLE_CONNS", 5))
	database.SetConnMaxLifetime(envMinutesOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30))
	database.SetConnMaxIdleTime(envMinutesOrDefault("DB_CONN_MAX_IDLE_TIME_MINUTES", 10))

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if options.RunMigrations {
		if err := db.RunMigrations(database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	authRepo := auth.NewRepository(database)

	registry, closeRegistry, err := buildRegistry(authRepo)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	hasher := auth.NewHasher(envIntOrDefault("BCRYPT_COST", bcrypt.DefaultCost))
	issuer := auth.NewTokenIssuer(
		accessSecret,
		refreshSecret,
		envMinutesOrDefault("ACCESS_TOKEN_TTL_MINUTES", 60),
		envHoursOrDefault("REFRESH_TOKEN_TTL_HOURS", 168),
	)

	authService := auth.NewService(authRepo, registry, hasher, issuer)
	authHandler := auth.NewHandler(authService)

	cleanupHandler := maintenance.NewCleanupHandler(
		authRepo,
		logger,
		os.Getenv("CRON_SECRET"),
		envIntOrDefault("AUTH_CLEANUP_BATCH_SIZE", 500),
	)

	postHandler := post.NewHandler(post.NewRepository(database))
	commentHandler := comment.NewHandler(comment.NewRepository(database))

	protect := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(issuer, authRepo, h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("POST /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("GET /health", healthHandler(database))
	mux.HandleFunc("GET /posts", postHandler.List)
	mux.HandleFunc("GET /posts/{id}", postHandler.Get)
	mux.Handle("POST /posts", protect(postHandler.Create))
	mux.Handle("PUT /posts/{id}", protect(postHandler.Update))
	mux.Handle("DELETE /posts/{id}", protect(postHandler.Delete))
	mux.HandleFunc("GET /comments", commentHandler.List)
	mux.HandleFunc("GET /comments/{id}", commentHandler.Get)
	mux.Handle("POST /comments", protect(commentHandler.Create))
	mux.Handle("PUT /comments/{id}", protect(commentHandler.Update))
	mux.Handle("DELETE /comments/{id}", protect(commentHandler.Delete))

	handler := observability.RecoverMiddleware(logger, observability.RequestLoggingMiddleware(logger, mux))

	return &Runtime{
		Handler: handler,
		Close: func() error {
			observability.FlushSentry()
			if closeRegistry != nil {
				_ = closeRegistry()
			}
			return database.Close()
		},
	}, nil
}

// buildRegistry selects the refresh-token registry backend. Postgres is the
// default; Redis keys tokens with a TTL; the in-memory backend is for local
// development only.
func buildRegistry(authRepo *auth.Repository) (auth.TokenRegistry, func() error, error) {
	switch backend := envOrDefault("REGISTRY_BACKEND", "postgres"); backend {
	case "postgres":
		return authRepo, nil, nil
	case "redis":
		addr, err := mustEnv("REDIS_ADDR")
		if err != nil {
			return nil, nil, err
		}
		client, err := redis.New(addr, os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return auth.NewRedisRegistry(client), client.Close, nil
	case "memory":
		return auth.NewMemoryRegistry(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown REGISTRY_BACKEND: %s", backend)
	}
}

func healthHandler(database *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if err := database.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = map[string]any{"status": "degraded", "time": time.Now().UTC().Format(time.RFC3339)}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func mustEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("missing required env: %s", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envMinutesOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Minute
}

func envHoursOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Hour
}

func EnvBoolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if value == "" {
		return fallback
	}

	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

package main

import (
	"appliance-intake-service/internal/adapters/geocode"
	"appliance-intake-service/internal/adapters/history"
	"appliance-intake-service/internal/adapters/repositories"
	"appliance-intake-service/internal/api"
	"appliance-intake-service/internal/config"
	"appliance-intake-service/internal/platform/db"
	"appliance-intake-service/internal/platform/logging"
	"appliance-intake-service/internal/platform/metrics"
	"appliance-intake-service/internal/ports"
	"appliance-intake-service/internal/services"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Kakao, SQL, Redis) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Info("No .env file found (using environment variables)")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server_exit", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	m := metrics.New(nil)

	geocoder, err := geocode.NewKakaoGeocoder(cfg.KakaoRestKey, cfg.KakaoBaseURL, cfg.GeocodeTimeout, m)
	if err != nil {
		return fmt.Errorf("KAKAO_REST_KEY is required: %w", err)
	}

	conn, intakes, err := openIntakes(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	store, closeStore, err := openHistory(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	resolver := services.NewResolver(geocoder, store, intakes, cfg.Navigation, services.ResolverOptions{
		Timeout: cfg.ResolveTimeout,
		Metrics: m,
		Logger:  log,
	})

	router := api.NewRouter(api.Deps{
		Geocoder:       geocoder,
		Resolver:       resolver,
		History:        store,
		Intakes:        intakes,
		Metrics:        metrics.Handler(),
		StaticDir:      cfg.StaticDir,
		AdminToken:     cfg.AdminToken,
		SecureCookies:  cfg.SecureCookies,
		TrustProxy:     cfg.TrustProxy,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// WriteTimeout leaves room for a full RESOLVE_TIMEOUT plus the company lookup.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.ResolveTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Postgres when DATABASE_URL is set, otherwise a local SQLite file.
func openIntakes(cfg *config.Config) (*sql.DB, ports.IntakeRepository, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitPostgresSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return conn, repositories.NewSQLIntakeRepository(conn), nil
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create db dir %q: %w", dir, err)
		}
	}
	conn, err := db.OpenSqlite(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, repositories.NewSqliteIntakeRepository(conn), nil
}

// Redis when REDIS_ADDR is set, otherwise process memory.
func openHistory(cfg *config.Config, log *slog.Logger) (ports.HistoryStore, func(), error) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set; selection history is kept in memory")
		return history.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	return history.NewRedisStore(client, cfg.HistoryKeyPrefix), func() { _ = client.Close() }, nil
}

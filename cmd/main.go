package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cleo_backend/internal/config"
	"cleo_backend/internal/handlers"
	"cleo_backend/internal/logger"
	"cleo_backend/internal/metrics"
	"cleo_backend/internal/repository"
	"cleo_backend/internal/repository/db"
	"cleo_backend/internal/server"
	"cleo_backend/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

const redisPingTimeout = 5 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load configs/config.yml + CLEO_* env
	cfg, err := config.Load("configs")
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.Log.Level)

	// open DB
	conn, err := db.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatalw("failed to open database", "driver", cfg.DB.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	sessions, closeSessions := openSessionStore(cfg, conn, log)
	defer closeSessions()

	// wire dependencies
	repos := repository.NewRepository(conn, sessions)
	services := service.NewService(repos, service.Options{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
		SessionTTL: cfg.Session.TTL,
		CacheTTL:   cfg.Simulation.CacheTTL,
		CacheSize:  cfg.Simulation.CacheSize,
		Log:        log,
	})
	metrics.ObserveSessionCache(func() (uint64, uint64) {
		st := services.CacheStats()
		return st.Hits, st.Misses
	})
	apiHandler := handlers.NewHandler(services, log.Named("http"),
		handlers.WithAllowedOrigins(cfg.CORS.AllowedOrigins...),
		handlers.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// purge expired sessions
	go services.Janitor.Run(ctx, cfg.Session.CleanupInterval)

	// start HTTP server
	srv := server.New(server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout,
		Write:      cfg.Server.WriteTimeout,
		Idle:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, cfg.Server.ShutdownTimeout, log)
}

// openSessionStore returns the Redis store when configured; nil selects the
// SQL store inside repository.NewRepository.
func openSessionStore(cfg *config.Config, conn *sqlx.DB, log *logger.Logger) (repository.SessionStore, func()) {
	if cfg.Session.Backend != "redis" {
		log.Infow("session store ready", "backend", "sql", "driver", conn.DriverName())
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalw("failed to reach redis", "addr", cfg.Redis.Addr, "err", err)
	}
	log.Infow("session store ready", "backend", "redis", "addr", cfg.Redis.Addr)
	return repository.NewSessionRedis(client), func() {
		if err := client.Close(); err != nil {
			log.Errorw("failed to close redis", "err", err)
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}

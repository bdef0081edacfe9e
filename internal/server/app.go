// Package server initializes and runs the authgate server. It wires the
// credential store, password codec, session store, and auth service, and
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/avolkov/authgate/internal/logging"
	"github.com/avolkov/authgate/internal/server/auth"
	"github.com/avolkov/authgate/internal/server/config"
	"github.com/avolkov/authgate/internal/server/httpapi"
	"github.com/avolkov/authgate/internal/server/password"
	"github.com/avolkov/authgate/internal/server/repositories/repomanager"
	"github.com/avolkov/authgate/internal/server/session"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.HTTPServer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	codec, err := password.NewCodec(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password codec error: %w", err)
	}

	sessions := newSessionStore(ctx, cfg, logger)

	as := auth.NewService(rm.Users(db), codec, sessions, logger, cfg.UsernameMaxLen)
	hs := httpapi.NewHTTPServer(cfg.EndpointAddrHTTP, logger, as, sessions)

	return &App{config: cfg, logger: logger, db: db, httpServer: hs}, nil
}

// newSessionStore picks the Redis-backed session store when an address is
// configured and falls back to the in-process store otherwise.
func newSessionStore(ctx context.Context, cfg *config.Config, logger logging.Logger) session.Store {
	if cfg.RedisAddr == "" {
		logger.Warn(ctx, "no redis address configured, sessions are in-process only")
		return session.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return session.NewRedisStore(client, cfg.SessionTTL)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing db", "error", err)
	}
}

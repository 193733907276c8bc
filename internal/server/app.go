// Package server initializes and runs the pixo backend. It opens the store,
// applies migrations, wires the services, and runs the HTTP API and the gRPC
// health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/pixo/internal/logging"
	"github.com/dmitrijs2005/pixo/internal/server/cache"
	"github.com/dmitrijs2005/pixo/internal/server/config"
	"github.com/dmitrijs2005/pixo/internal/server/httpapi"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/memory"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pixo/internal/server/services"
	"github.com/go-redis/redis/v8"

	gs "github.com/dmitrijs2005/pixo/internal/server/grpc"
)

// memoryDSN selects the in-process store instead of PostgreSQL.
const memoryDSN = "memory://"

const startupTimeout = 30 * time.Second

type App struct {
	config       *config.Config
	logger       logging.Logger
	repomanager  repomanager.RepositoryManager
	redis        *redis.Client
	userService  *services.UserService
	feedService  *services.FeedService
	likeService  *services.LikeService
	assetService *services.AssetService
}

// NewApp connects to the store and builds the services. Failing to reach
// the store or to migrate it is fatal; a missing Redis only disables the
// profile cache.
func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var rm repomanager.RepositoryManager
	if strings.HasPrefix(c.DatabaseDSN, memoryDSN) {
		logger.Warn(ctx, "using in-memory store; data is lost on exit")
		rm = repomanager.NewMemoryRepositoryManager(memory.NewStore())
	} else {
		db, err := repomanager.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager(db)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	app := &App{config: c, logger: logger, repomanager: rm}

	var profiles cache.ProfileCache = cache.Noop{}
	if c.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, c.RedisURL)
		if err != nil {
			logger.Warn(ctx, "profile cache disabled", "error", err)
		} else {
			app.redis = client
			profiles = cache.NewRedisProfileCache(client, c.ProfileCacheTTL)
		}
	}

	app.userService = services.NewUserService(rm, profiles, logger.With("module", "user_service"), c)
	app.feedService = services.NewFeedService(rm, c)
	app.likeService = services.NewLikeService(rm, c)
	app.assetService = services.NewAssetService(c)

	if !app.assetService.Enabled() {
		logger.Info(ctx, "S3 bucket not configured; /upload-url disabled")
	}

	return app, nil
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
	s := httpapi.NewServer(app.config, app.logger, app.userService, app.feedService, app.likeService, app.assetService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.repomanager)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a server fails, then releases the
// store and cache connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close", "error", err)
		}
	}
	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "store close", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}

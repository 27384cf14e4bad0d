package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	flix "github.com/goliatone/go-flix"
	"github.com/goliatone/go-logger/glog"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *Config
	logger *glog.BaseLogger
	db     *bun.DB
	server *fiber.App
	repo   flix.RepositoryManager
	auth   *flix.RouteAuthenticator
}

func main() {
	godotenv.Load()

	app := &App{
		config: NewConfigFromEnv(),
		logger: glog.NewLogger(
			glog.WithLoggerTypePretty(),
			glog.WithLevel(glog.Info),
			glog.WithName("flixd"),
			glog.WithAddSource(false),
			glog.WithRichErrorHandler(errors.ToSlogAttributes),
		),
	}

	lgr := app.GetLogger("boot")

	if app.config.SigningKey == "" {
		lgr.Error("FLIX_SIGNING_KEY is required")
		os.Exit(1)
	}

	if err := app.initPersistence(); err != nil {
		lgr.Error("persistence setup failed", "error", err)
		os.Exit(1)
	}

	if err := app.initAuth(); err != nil {
		lgr.Error("auth setup failed", "error", err)
		os.Exit(1)
	}

	app.initServer()

	go func() {
		if err := app.server.Listen(app.config.Addr); err != nil {
			lgr.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	lgr.Info("flixd listening", "addr", app.config.Addr)

	WaitExitSignal()

	lgr.Info("shutting down")
	if err := app.server.ShutdownWithTimeout(10 * time.Second); err != nil {
		lgr.Error("shutdown error", "error", err)
	}
	app.db.Close()
}

func (a *App) initPersistence() error {
	sqldb, err := sql.Open(sqliteshim.ShimName, a.config.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	a.db = bun.NewDB(sqldb, sqlitedialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := flix.RunMigrations(ctx, a.db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	a.repo = flix.NewRepositoryManager(a.db)

	return a.repo.Validate()
}

// GetLogger hands out a scoped logger, bridging glog to the flix Logger
// contract.
func (a *App) GetLogger(name string) flix.Logger {
	return a.logger.GetLogger(name)
}

func (a *App) initAuth() error {
	provider := flix.NewUserProvider(userStoreAdapter{users: a.repo.Users()}).
		WithLoggerProvider(a)

	auther := flix.NewAuthenticator(provider, a.config).
		WithLogger(a.GetLogger("flix.auth"))

	httpAuth, err := flix.NewHTTPAuthenticator(auther, a.config)
	if err != nil {
		return err
	}
	httpAuth.Logger = a.GetLogger("flix.http")

	a.auth = httpAuth

	return nil
}

func (a *App) initServer() {
	a.server = fiber.New(fiber.Config{
		AppName:               "flixd",
		DisableStartupMessage: true,
	})

	a.server.Use(a.auth.Authenticate())

	a.server.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	flix.RegisterAuthRoutes(a.server.Group("/api/auth"),
		flix.WithAuthControllerRepo(a.repo),
		flix.WithAuthControllerAuther(a.auth),
		flix.WithAuthControllerLogger(a.GetLogger("flix.controller")),
	)

	flix.RegisterRatingsRoutes(a.server.Group("/api/ratings"),
		flix.WithRatingsControllerRepo(a.repo),
		flix.WithRatingsControllerAuther(a.auth),
		flix.WithRatingsControllerLogger(a.GetLogger("flix.ratings")),
	)

	flix.RegisterWatchlistRoutes(a.server.Group("/api/watchlist"),
		flix.WithWatchlistControllerRepo(a.repo),
		flix.WithWatchlistControllerAuther(a.auth),
		flix.WithWatchlistControllerLogger(a.GetLogger("flix.watchlist")),
	)
}

// userStoreAdapter narrows the users repository to the lookup the identity
// provider needs.
type userStoreAdapter struct {
	users flix.Users
}

func (a userStoreAdapter) GetByIdentifier(ctx context.Context, identifier string) (*flix.User, error) {
	return a.users.GetByIdentifier(ctx, identifier)
}

// WaitExitSignal blocks until the process receives an exit signal.
func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 2)
	signal.Notify(
		ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

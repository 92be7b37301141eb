package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ordering/cmd"
	apihttp "ordering/internal/adapters/in/http"
	"ordering/internal/adapters/out/dms"
	"ordering/internal/adapters/out/postgres"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title						Ordering API
// @version					1.0
// @description				Order lifecycle: status transitions, edit locks and DMS reconciliation.
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				JWT as "Bearer <token>"
func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(configs)
	if err = run(configs, logger); err != nil {
		logger.Error("Service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(configs cmd.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := postgres.RunMigrations(configs.DatabaseURL()); err != nil {
		return err
	}

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DatabaseURL()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	dmsDB, err := dms.Open(configs.DMSDatabaseURL())
	if err != nil {
		return err
	}
	defer dmsDB.Close()

	app := cmd.NewCompositionRoot(configs, gormDB, dmsDB, logger)
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Warn("Failed to flush audit sink", "error", closeErr)
		}
	}()

	// Locks do not survive a restart; neither may their projection.
	if err = app.Coordinator().ResetProjections(ctx); err != nil {
		return fmt.Errorf("failed to reset editing projections: %w", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	e := newWebServer(app, configs, logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout())
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newWebServer(app *cmd.CompositionRoot, configs cmd.Config, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(gommonLevel(configs.LogLevel))

	e.Use(middleware.Recover(), middleware.RequestID(), apihttp.RequestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/ws", echo.WrapHandler(app.CreateWSHandler()))
	apihttp.RegisterDocs(e)

	api := e.Group("/api/v1", apihttp.Authenticate(app.Tokens()))
	app.CreateServer().Register(api, app.CreateRateLimiter().Middleware())

	return e
}

func newLogger(configs cmd.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(configs.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(configs.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func gommonLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}

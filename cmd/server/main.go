package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/alert"
	"github.com/fadilmartias/hiring-pipeline/internal/config"
	"github.com/fadilmartias/hiring-pipeline/internal/domain/fiber/handler"
	"github.com/fadilmartias/hiring-pipeline/internal/logging"
	"github.com/fadilmartias/hiring-pipeline/internal/middleware"
	"github.com/fadilmartias/hiring-pipeline/internal/repository"
	"github.com/fadilmartias/hiring-pipeline/internal/service"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/fadilmartias/hiring-pipeline/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	lg := logging.New(appConfig.LogLevel).With("app", appConfig.Name, "env", appConfig.Env)
	slog.SetDefault(lg)

	pipelineConfig, err := config.LoadPipelineConfig()
	if err != nil {
		lg.Error("invalid pipeline config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	alerts := alert.NewCache(pipelineConfig.AlertCacheTTL)
	storeOpts := []store.Option{
		store.WithLogger(lg.With("component", "store")),
		store.WithCommitHook(usecase.InvalidateAlerts(alerts)),
	}
	var repo *repository.PipelineRepository
	if config.LoadDBConfig().Enabled {
		repo = repository.NewPipelineRepository(ConnectDB(lg))
		storeOpts = append(storeOpts, store.WithPersister(repo))
	}
	st := store.New(storeOpts...)
	if repo != nil {
		snapshot, audit, err := repo.LoadAll(ctx)
		if err != nil {
			lg.Error("load pipeline state", "error", err)
			os.Exit(1)
		}
		if err := st.Hydrate(ctx, snapshot, audit); err != nil {
			lg.Error("hydrate store", "error", err)
			os.Exit(1)
		}
		lg.Info("pipeline state loaded", "candidates", len(snapshot.Candidates), "requirements", len(snapshot.Requirements), "audit_entries", len(audit))
	}

	opts := []usecase.Option{
		usecase.WithLogger(lg),
		usecase.WithNotifier(service.NewNotifier(config.LoadNotifierConfig(), lg)),
		usecase.WithStageWeights(pipelineConfig.StageWeights),
		usecase.WithAlertPolicy(pipelineConfig.Alerts),
		usecase.WithAlertCache(alerts),
	}
	if summarizer := newSummarizer(ctx, lg); summarizer != nil {
		opts = append(opts, usecase.WithSummarizer(summarizer))
	}
	uc := usecase.NewPipelineUsecase(st, opts...)

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: int(pipelineConfig.MaxUploadBytes) + 1024*1024,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(100, 1*time.Minute))

	handler.NewPipelineHandler(uc, pipelineConfig, lg).RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				lg.Debug("runtime stats", "goroutines", runtime.NumGoroutine())
			}
		}
	}()

	go func() {
		<-ctx.Done()
		lg.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			lg.Error("shutdown", "error", err)
		}
	}()

	lg.Info("server running", "port", appConfig.Port, "persistence", repo != nil)
	if err := app.Listen(":" + appConfig.Port); err != nil {
		lg.Error("listen", "error", err)
		os.Exit(1)
	}
}

// newSummarizer picks the LLM backend named by SUMMARIZER_PROVIDER. Without
// one the summary endpoint answers with a validation error.
func newSummarizer(ctx context.Context, lg *slog.Logger) service.SummarizerInterface {
	switch provider := config.SummarizerProvider(); provider {
	case "":
		return nil
	case "gemini":
		gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig(), lg)
		if err != nil {
			lg.Error("gemini summarizer disabled", "error", err)
			return nil
		}
		return gemini
	case "openrouter":
		return service.NewOpenRouterService(config.LoadOpenRouterConfig())
	default:
		lg.Warn("unknown summarizer provider", "provider", provider)
		return nil
	}
}

func ConnectDB(lg *slog.Logger) *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		lg.Error("could not connect to database", "error", err)
		os.Exit(1)
	}
	pgDB, err := db.DB()
	if err != nil {
		lg.Error("could not get database instance", "error", err)
		os.Exit(1)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := repository.NewPipelineRepository(db).Migrate(); err != nil {
		lg.Error("migration failed", "error", err)
		os.Exit(1)
	}
	return db
}

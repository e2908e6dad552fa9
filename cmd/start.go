package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reconciler/core/database"
	"reconciler/core/loader"
	"reconciler/core/lock"
	"reconciler/core/logger"
	"reconciler/core/metrics"
	"reconciler/core/middleware/auth"
	"reconciler/core/middleware/rayid"
	"reconciler/core/reconcile"
	"reconciler/core/storage"

	"reconciler/feature/integrity"
	"reconciler/feature/jobs"
	"reconciler/feature/playground"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "reconciler/docs/swagger"
)

// @title Reconciler API
// @version 1.0
// @description API for matching records between two sources and reviewing the results.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciler server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, logg, err := loadRuntime()
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		engine, err := reconcile.NewEngine(cfg.Matching)
		if err != nil {
			logg.Fatal("Invalid matching configuration", zap.Error(err))
		}

		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		// Jobs need the database; simulation and integrity checks run without it.
		var db *gorm.DB
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed, jobs disabled", zap.Error(err))
		} else {
			db = conn
			logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
		}

		var jobService *jobs.Service
		if db != nil {
			svc, locker, err := newJobService(ctx, cfg, logg, db, store, engine)
			if err != nil {
				logg.Fatal("Failed to initialize jobs", zap.Error(err))
			}
			defer closeLocker(locker, logg)
			jobService = svc

			// Only a process-local guard proves no other instance is mid-run.
			if cfg.Lock.Backend == lock.BackendMemory {
				if err := jobService.RecoverInterrupted(ctx); err != nil {
					logg.Warn("Failed to reset interrupted jobs", zap.Error(err))
				}
			}
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(playground.NewFeature(playground.NewService(engine, logg)))
		mgr.Register(jobs.NewFeature(jobService, db != nil))
		mgr.Register(integrity.NewFeature(store, cfg.Storage.Bucket, cfg.Storage.RecordsPrefix, logg, db))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			started := time.Now()
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			l.Info("Request completed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("duration", time.Since(started)),
			)
			return err
		})

		// Public routes are registered ahead of the auth middleware.
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok", "database": db != nil})
		})
		app.Get("/metrics", metrics.Handler())
		app.Get("/swagger/*", swagger.HandlerDefault)

		if !cfg.Server.AuthEnabled() {
			logg.Warn("API key not configured, requests are not authenticated")
		}
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logg.Error("Server shutdown failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

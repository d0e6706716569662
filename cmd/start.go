package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"cardstock/core/config"
	"cardstock/core/database"
	"cardstock/core/loader"
	"cardstock/core/logger"
	"cardstock/core/middleware/auth"
	"cardstock/core/middleware/rayid"
	"cardstock/core/provider"
	"cardstock/core/ratelimit"
	"cardstock/core/storage"

	"cardstock/feature/catalog"
	"cardstock/feature/catalog/store"
	catalogsync "cardstock/feature/catalog/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "cardstock/docs/swagger"
)

// @title Cardstock API
// @version 1.0
// @description API for catalog synchronization against the remote card provider.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}

		st, err := store.New(db, cfg.Provider.Name)
		if err != nil {
			logg.Fatal("Failed to create catalog store", zap.Error(err))
		}
		if err := st.Migrate(); err != nil {
			logg.Fatal("Failed to migrate catalog tables", zap.Error(err))
		}

		// 4. Initialize Storage (report archive)
		// The archive is supplementary; a run still completes when uploads
		// are unavailable.
		var archiver *catalogsync.Archiver
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Report archive disabled", zap.Error(err))
		} else {
			archiver = catalogsync.NewArchiver(client, cfg.Storage.Bucket, cfg.Sync.ReportPrefix)
		}

		// 5. Provider client behind the shared rate limiter
		limiter := ratelimit.New(cfg.Provider.RequestsPerSecond, cfg.Provider.Burst)
		api := provider.NewClient(cfg.Provider, limiter, logg)

		svc := catalog.NewService(api, st, st, archiver, cfg.Sync, logg)

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// 7. Feature Loader
		mgr := loader.NewManager()
		mgr.Register(catalog.NewFeature(svc))

		// Middleware Registration
		// RayID must be first so every request is traceable.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"score-ledger/core/loader"
	"score-ledger/core/logger"
	"score-ledger/core/metrics"
	"score-ledger/core/middleware/auth"
	"score-ledger/core/middleware/rayid"
	"score-ledger/core/storage"
	"score-ledger/feature/comparison"
	"score-ledger/feature/results"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// manualSource tags results entered through the HTTP API.
const manualSource = "manual"

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the score ledger server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		a, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)
		cfg := a.cfg

		m := metrics.New()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		mgr := loader.NewManager()

		// Sweeps need a channel to compare against
		if cfg.Comparison.ChannelID != "" {
			sweeps, err := a.comparisonService(ctx, client, m)
			if err != nil {
				logg.Fatal("Failed to prepare comparison", zap.Error(err))
			}
			mgr.Register(comparison.NewFeature(sweeps, comparison.NewHandler(sweeps, logg), true))
		} else {
			logg.Warn("comparison.channel_id is empty, comparison disabled")
		}

		entries := results.NewService(a.store, a.rules, a.set, manualSource, logg)
		mgr.Register(results.NewFeature(results.NewHandler(entries, cfg.Comparison.Window())))

		// RayID first so every later log line carries it
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

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/metrics"}}))
		app.Get("/metrics", m.Handler())

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded), zap.Bool("auth", cfg.Server.AuthEnabled()))

		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

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

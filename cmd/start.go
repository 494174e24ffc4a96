package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"sheet-reconciler/core/loader"
	"sheet-reconciler/core/logger"
	"sheet-reconciler/core/middleware/auth"
	"sheet-reconciler/core/middleware/rayid"
	"sheet-reconciler/core/storage"
	"sheet-reconciler/feature/merge"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "sheet-reconciler/docs/swagger"
)

// @title Sheet Reconciler API
// @version 1.0
// @description API for merging child CSV datasets into master datasets.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the merge API server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadApp(false)
		if err != nil {
			return err
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		store := openLedger(cmd.Context(), cfg.Database, logg)

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return err
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(merge.NewFeature(client, store, merge.Options{
			Bucket:       cfg.Storage.Bucket,
			Region:       cfg.Storage.Region,
			Upload:       cfg.Merge.Upload,
			UploadPrefix: cfg.Merge.UploadPrefix,
			MaxAttempts:  cfg.Merge.MaxAttempts,
		}, logg))

		// RayID must come first so every later log line carries it.
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

		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

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
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

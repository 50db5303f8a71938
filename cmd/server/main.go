package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"customerdash/internal/api"
	"customerdash/internal/config"
	"customerdash/internal/engine"
	"customerdash/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Customer performance dashboard backend",
	Long: `Loads the customer and province coordinate tables once and serves the
dashboard aggregates (profession volume, geographic demand, generation
distribution, profession by gender, income vs experience) as JSON.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Log.Development)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (data loads in the background)",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sources() engine.Sources {
	return engine.Sources{Customers: cfg.Data.Customers, Coordinates: cfg.Data.Coordinates}
}

func options() engine.Options {
	return engine.Options{Professions: cfg.Catalog.Professions, Generations: cfg.Catalog.Generations}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := api.NewEcho(api.ServerOptions{
		RateLimit:   cfg.Server.RateLimit,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, logger)

	// The API is live immediately and answers 503 until the store is set.
	h := api.NewHandler(nil, api.Defaults{MinAge: cfg.Controls.DefaultMinAge, MaxAge: cfg.Controls.DefaultMaxAge})
	h.RegisterRoutes(e)

	loadErr := make(chan error, 1)
	go func() {
		logger.Info("loading record store",
			zap.String("customers", cfg.Data.Customers),
			zap.String("coordinates", cfg.Data.Coordinates))
		store, err := engine.Load(ctx, sources(), options(), logger)
		if err == nil {
			err = store.Validate()
		}
		if err != nil {
			loadErr <- err
			return
		}
		h.SetStore(store)
		logger.Info("API is fully ready")
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		serveErr <- e.Start(cfg.Server.Addr)
	}()

	var err error
	select {
	case err = <-loadErr:
		logger.Error("record store failed to load", zap.Error(err))
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := e.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("shutdown", zap.Error(serr))
	}
	return err
}

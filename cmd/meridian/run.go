package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"veritas-hq/meridian"
	"veritas-hq/meridian/pkg/cli"
	"veritas-hq/meridian/pkg/config"
)

var runFlags struct {
	rulesPath string
	logLevel  string
	dryRun    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Meridian evaluator",
	Long: `Start the Meridian evaluator with the specified configuration.

Rules, the service catalog, and the optional org export are loaded at
startup; with watching enabled, rule file changes hot-reload the compiled
rule set. The Prometheus endpoint serves metrics while running.

Examples:
  # Start with default config
  meridian run

  # Start with custom config
  meridian run --config /etc/meridian/config.yaml

  # Override the rule source
  meridian run --rules /etc/meridian/rules.d

  # Validate config without starting
  meridian run --dry-run`,
	RunE: runEvaluator,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.rulesPath, "rules", "r", "", "override rule file or directory")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runEvaluator(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if runFlags.rulesPath != "" {
		cfg.Rules.Path = runFlags.rulesPath
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger := newLogger(cfg.Telemetry.Logging)
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Meridian v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := meridian.New(ctx, cfg, meridian.Options{Logger: logger})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer rt.Close()

	fmt.Printf("✓ Rules loaded (%d rules)\n", rt.Engine.RuleCount())
	fmt.Println("✓ Audit pipeline started")

	errChan := make(chan error, 1)
	var metricsSrv *http.Server
	if cfg.Telemetry.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, rt.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:    cfg.Telemetry.Metrics.ListenAddress,
			Handler: mux,
		}
		go func() {
			slog.Info("starting metrics endpoint",
				"address", cfg.Telemetry.Metrics.ListenAddress,
				"path", cfg.Telemetry.Metrics.Path,
			)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	fmt.Println("\nPress Ctrl+C to stop")

	sigCtx, stop := cli.NotifyShutdown(ctx)
	defer stop()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case <-sigCtx.Done():
		// Restore default signal behavior so a second Ctrl+C kills a
		// hung shutdown.
		stop()
		fmt.Println("\nShutdown signal received, stopping gracefully...")
		cancel()

		if metricsSrv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", "error", err)
			}
		}

		if err := rt.Close(); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Evaluator stopped")
		return nil
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

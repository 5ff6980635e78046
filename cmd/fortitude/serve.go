package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fortitude-run/fortitude/pkg/cli"
	"github.com/fortitude-run/fortitude/pkg/httpapi"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Fortitude HTTP API server",
	Long: `Start the HTTP server that exposes the research pipeline, cache,
and classifier over /api/v1. Runs until interrupted.

Examples:
  fortitude serve
  fortitude serve --listen 0.0.0.0:9090
  fortitude serve --config /etc/fortitude/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if serveFlags.listenAddress != "" {
		a.cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		a.cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	configureLogging(a.cfg.Telemetry.Logging.Level)

	srv := httpapi.NewServer(a.cfg.Server, httpapi.Deps{
		Pipeline:      a.pipeline,
		Store:         a.store,
		Classifier:    a.classify,
		Authenticator: a.authenticator,
		Metrics:       a.metrics,
		MetricsPath:   a.cfg.Telemetry.Metrics.Path,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.proactive != nil {
		if err := a.proactive.Start(ctx); err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("failed to start proactive supervisor: %w", err))
		}
		fmt.Println("proactive research supervisor started")
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
		close(errChan)
	}()

	fmt.Printf("fortitude listening on %s\n", a.cfg.Server.ListenAddress)
	if a.cfg.MCP.Enabled {
		fmt.Printf("MCP tool/resource surface %q ready for a transport adapter (not started: transport framing is out of scope)\n", a.cfg.MCP.ServerName)
	}
	fmt.Println("press Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		return nil
	case sig := <-sigChan:
		fmt.Printf("received signal %s, shutting down\n", sig)
		cancel()
		if err := <-errChan; err != nil {
			return cli.NewCommandError("serve", err)
		}
		fmt.Println("server stopped")
		return nil
	}
}

func configureLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

// Command homebridge-exporter serves the accessories of a Homebridge hub as
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/obsidianstack/homebridge-exporter/exporter/internal/api"
	"github.com/obsidianstack/homebridge-exporter/exporter/internal/auth"
	"github.com/obsidianstack/homebridge-exporter/exporter/internal/hub"
	"github.com/obsidianstack/homebridge-exporter/exporter/internal/session"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:    "homebridge-exporter",
		Usage:   "export Homebridge accessory readings as Prometheus metrics",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   flags(),
		Action:  run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("homebridge-exporter failed", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("homebridge-exporter starting", "version", Version, "config", c.String("config"))

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	slog.Info("config loaded",
		"hub_uri", cfg.Hub.URI,
		"http_port", cfg.HTTP.Port,
		"prefix", cfg.Metrics.Prefix,
		"keyfile", cfg.Auth.KeyFile,
		"restart_min_interval", cfg.Restart.MinInterval,
	)

	password := cfg.Hub.EffectivePassword()
	if password == "" {
		slog.Warn("hub password is empty; login will likely be rejected")
	}

	client, err := hub.New(cfg.Hub)
	if err != nil {
		return err
	}
	sess := session.New(client, cfg.Hub.Username, password)

	keySet, err := auth.LoadKeySet(cfg.Auth.KeyFile)
	if err != nil {
		return err
	}
	keys := auth.NewKeys(keySet)

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Auth.Watch {
		go func() {
			if err := auth.Watch(ctx, cfg.Auth.KeyFile, keys); err != nil {
				slog.Error("key file watcher stopped", "err", err)
			}
		}()
	}

	handler := api.New(sess, client, keys, api.Options{
		Prefix:          cfg.Metrics.Prefix,
		RestartInterval: cfg.Restart.MinInterval,
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// A scrape may wait on a login plus the accessory fetch.
		WriteTimeout: 2*cfg.Hub.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTP.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("homebridge-exporter shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return httpSrv.Shutdown(shutdownCtx)
}

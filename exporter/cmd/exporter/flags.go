package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/obsidianstack/homebridge-exporter/exporter/internal/config"
)

const envPrefix = "HOMEBRIDGE_EXPORTER_"

func env(name string) []string { return []string{envPrefix + name} }

// flags returns the command line flags. Every flag can also be set through
// its HOMEBRIDGE_EXPORTER_* variable and, when set, overrides the config file.
func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML config file; built-in defaults are used when empty",
			EnvVars: env("CONFIG"),
		},
		&cli.StringFlag{
			Name:    "uri",
			Usage:   "Homebridge UI base URI",
			EnvVars: env("URI"),
			Value:   config.DefaultHubURI,
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Homebridge UI username",
			EnvVars: env("USERNAME"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Homebridge UI password",
			EnvVars: env("PASSWORD"),
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "port to serve /metrics, /restart and /ping on",
			EnvVars: env("PORT"),
			Value:   config.DefaultHTTPPort,
		},
		&cli.StringFlag{
			Name:    "prefix",
			Usage:   "metric name prefix; empty disables it",
			EnvVars: env("PREFIX"),
			Value:   config.DefaultPrefix,
		},
		&cli.StringFlag{
			Name:    "keyfile",
			Usage:   "YAML file listing the bearer keys allowed to call /restart",
			EnvVars: env("KEYFILE"),
			Value:   config.DefaultKeyFile,
		},
		&cli.DurationFlag{
			Name:    "restart-interval",
			Usage:   "minimum time between accepted restarts; 0 disables throttling",
			EnvVars: env("RESTART_INTERVAL"),
			Value:   config.DefaultRestartMinInterval,
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			EnvVars: env("LOG_LEVEL"),
			Value:   "info",
		},
	}
}

// loadConfig builds the effective configuration: defaults, then the config
// file when one is given, then every flag the user set explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(c.String("config"), func(cfg *config.Config) {
		if c.IsSet("uri") {
			cfg.Hub.URI = c.String("uri")
		}
		if c.IsSet("username") {
			cfg.Hub.Username = c.String("username")
		}
		if c.IsSet("password") {
			cfg.Hub.Password = c.String("password")
		}
		if c.IsSet("port") {
			cfg.HTTP.Port = c.Int("port")
		}
		if c.IsSet("prefix") {
			cfg.Metrics.Prefix = c.String("prefix")
		}
		if c.IsSet("keyfile") {
			cfg.Auth.KeyFile = c.String("keyfile")
		}
		if c.IsSet("restart-interval") {
			cfg.Restart.MinInterval = c.Duration("restart-interval")
		}
	})
}

// parseLevel maps a --log-level value to a slog.Level.
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

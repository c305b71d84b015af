package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/busylightd/cmd"
	"github.com/smazurov/busylightd/internal/api"
	"github.com/smazurov/busylightd/internal/config"
	"github.com/smazurov/busylightd/internal/controller"
	"github.com/smazurov/busylightd/internal/events"
	"github.com/smazurov/busylightd/internal/logging"
	"github.com/smazurov/busylightd/internal/transport"
	"github.com/smazurov/busylightd/internal/updater"
	"github.com/smazurov/busylightd/internal/version"
)

// Options for the daemon - flat structure with toml/env mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"busylightd.toml"`

	// Server settings
	Port        string   `help:"Address to listen on" short:"p" default:":8080" toml:"server.port" env:"PORT"`
	CorsOrigins []string `help:"Allowed CORS origins, empty allows any" toml:"server.cors_origins" env:"CORS_ORIGINS"`

	// Device plane settings
	PollIntervalMs int `help:"Hotplug poll interval in milliseconds" default:"1000" toml:"registry.poll_interval_ms" env:"POLL_INTERVAL_MS"`
	WriteTimeoutMs int `help:"Transport write timeout in milliseconds" default:"100" toml:"registry.write_timeout_ms" env:"WRITE_TIMEOUT_MS"`
	DefaultDwellMs int `help:"Default effect frame dwell in milliseconds" default:"500" toml:"engine.default_dwell_ms" env:"DEFAULT_DWELL_MS"`
	DefaultDim     float64 `help:"Default brightness factor" default:"1.0" toml:"lights.dim" env:"DIM"`

	// Auth settings
	AuthUser string `help:"Basic auth user, empty disables auth" toml:"auth.user" env:"AUTH_USER"`
	AuthPass string `help:"Basic auth password" toml:"auth.pass" env:"AUTH_PASS"`

	// Logging settings
	LoggingLevel  string `help:"Logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	Debug         bool   `help:"Shorthand for --logging-level=debug" default:"false" toml:"logging.debug" env:"DEBUG"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("failed to load config", "error", loadErr)
		}

		level := opts.LoggingLevel
		if opts.Debug {
			level = "debug"
		}
		logging.Initialize(logging.Config{Level: level, Format: opts.LoggingFormat})
		logger := logging.GetLogger("main")
		logger.Info("starting", "version", version.Get().String())

		sys, err := transport.NewSystem()
		if err != nil {
			logger.Error("transport initialization failed", "error", err)
			os.Exit(1)
		}

		bus := events.New()
		ctrl := controller.New(sys, bus, logging.GetLogger("controller"), controller.Config{
			PollInterval: time.Duration(opts.PollIntervalMs) * time.Millisecond,
			WriteTimeout: time.Duration(opts.WriteTimeoutMs) * time.Millisecond,
			DefaultDwell: time.Duration(opts.DefaultDwellMs) * time.Millisecond,
		})

		server := api.NewServer(&api.Options{
			Controller:  ctrl,
			EventBus:    bus,
			Updater:     updater.New(version.Get().Version, logging.GetLogger("updater")),
			AuthUser:    opts.AuthUser,
			AuthPass:    opts.AuthPass,
			CorsOrigins: opts.CorsOrigins,
			DefaultDim:  opts.DefaultDim,
		})

		// Reload the main logger's level when the config file changes;
		// device plane tunables stay fixed for the process lifetime.
		watcher := config.NewWatcher(opts.Config, logging.GetLogger("config"), func() {
			reloaded := *opts
			if err := config.LoadConfig(&reloaded, nil); err != nil {
				logger.Warn("config reload failed", "error", err)
				return
			}
			level := reloaded.LoggingLevel
			if reloaded.Debug {
				level = "debug"
			}
			logging.SetModuleLevel("main", level)
			logger.Info("config reloaded", "level", level)
		})

		hooks.OnStart(func() {
			if err := ctrl.Start(context.Background()); err != nil {
				logger.Error("device plane failed to start", "error", err)
				os.Exit(1)
			}
			logger.Info("device plane started", "lights", len(ctrl.List()))

			if err := watcher.Start(); err != nil {
				logger.Warn("config watcher unavailable", "error", err)
			}

			logger.Info("starting HTTP server", "addr", opts.Port)
			if err := server.Start(opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")
			if err := server.Stop(); err != nil {
				logger.Error("stopping HTTP server", "error", err)
			}
			watcher.Stop()
			ctrl.Shutdown()
			if err := sys.Close(); err != nil {
				logger.Debug("closing transports", "error", err)
			}
		})
	})

	root := cli.Root()
	root.Use = "busylightd"
	root.Version = version.Get().Version
	root.AddCommand(
		cmd.CreateOnCmd(),
		cmd.CreateOffCmd(),
		cmd.CreateBlinkCmd(),
		cmd.CreateRainbowCmd(),
		cmd.CreatePulseCmd(),
		cmd.CreateFliCmd(),
		cmd.CreateListCmd(),
		cmd.CreateUpdateCmd(),
	)

	cli.Run()
}

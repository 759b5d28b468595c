package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/whimsicalfrog/frogshop/internal/commands"
	"github.com/whimsicalfrog/frogshop/internal/core/config"
	"github.com/whimsicalfrog/frogshop/internal/core/logging"
	"github.com/whimsicalfrog/frogshop/internal/core/styles"
	"github.com/whimsicalfrog/frogshop/internal/metrics"
	"github.com/whimsicalfrog/frogshop/internal/profiler"
	"github.com/whimsicalfrog/frogshop/internal/shop"
	"github.com/whimsicalfrog/frogshop/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		shopApp     = &shop.App{}
		diagnostics *profiler.Server
		sweepCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "frogshop",
		Usage:     "Browse the WhimsicalFrog shop from your terminal",
		UsageText: "frogshop [global options] command [command options]",
		Description: `frogshop keeps a cart, suggests add-ons that pair well with it and shows
what happened as toast notifications.

Run 'frogshop' with no arguments to open the interactive console.
Run 'frogshop upsell --sku SKU' to print suggestions for a cart.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("FROGSHOP_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/frogshop.log)",
				Sources:     cli.EnvVars("FROGSHOP_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("FROGSHOP_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("FROGSHOP_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "base URL of the shop API (overrides api_url in the config file)",
				Sources:     cli.EnvVars("FROGSHOP_API_URL"),
				Destination: &flags.APIURL,
			},
			&cli.StringFlag{
				Name:        "metrics-addr",
				Usage:       "serve /metrics and /debug/pprof on this address (e.g. localhost:9090)",
				Sources:     cli.EnvVars("FROGSHOP_METRICS_ADDR"),
				Destination: &flags.MetricsAddr,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Read(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.APIURL != "" {
				cfg.APIURL = flags.APIURL
			}
			if flags.MetricsAddr != "" {
				cfg.MetricsAddr = flags.MetricsAddr
			}
			flags.Config = cfg

			// Always log to a file; stdout and stderr belong to commands and the TUI
			logFile := flags.LogFile
			if logFile == "" {
				logFile = cfg.LogFile()
			}
			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logger = logger.Hook(logging.ContextHook{})
			log.Logger = logger
			logCloser = closer
			shopApp.Logger = logger
			shopApp.Config = cfg

			// config commands report validation problems themselves
			if c.Args().First() == "config" {
				return ctx, nil
			}
			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config: %w", err)
			}

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			m := metrics.NewManager()
			if cfg.MetricsAddr != "" {
				diagnostics = profiler.New(cfg.MetricsAddr, m.Handler(), logutils.Component(logger, "diagnostics"))
				if err := diagnostics.Start(ctx); err != nil {
					return ctx, fmt.Errorf("start diagnostics server: %w", err)
				}
				log.Info().
					Str("url", fmt.Sprintf("http://%s/metrics", diagnostics.Addr())).
					Msg("metrics endpoint available")
			}

			database, err := shop.OpenDB(cfg.DataDir, logger)
			if err != nil {
				return ctx, err
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*shopApp = *shop.NewApp(cfg, database, m, logger)

			sweepCtx, cancel := context.WithCancel(context.Background())
			sweepCancel = cancel
			go shopApp.Sweep(sweepCtx, shop.DefaultSweepInterval)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sweepCancel != nil {
				sweepCancel()
			}

			if diagnostics != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := diagnostics.Shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("failed to shutdown diagnostics server")
				}
				cancel()
			}

			if shopApp.DB != nil {
				if err := shopApp.DB.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, shopApp)

	app = commands.NewUpsellCmd(flags, shopApp).Register(app)
	app = commands.NewClickCmd(flags, shopApp).Register(app)
	app = commands.NewNotificationsCmd(flags, shopApp).Register(app)
	app = commands.NewConfigCmd(flags, shopApp).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'frogshop --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/programme-lv/cardiorisk/internal/environment"
	"github.com/programme-lv/cardiorisk/internal/xdg"
	"github.com/urfave/cli/v3"
)

const appName = "cardiorisk"

// app carries the configuration resolved by the root command.
type app struct {
	cfg     *environment.EnvConfig
	logger  *slog.Logger
	noColor bool
	dirs    *xdg.Dirs
}

func main() {
	a := &app{dirs: xdg.New(appName)}

	root := &cli.Command{
		Name:  appName,
		Usage: "privacy-preserving heart-disease risk demo harness",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file with CARDIORISK_* settings (optional)",
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "application root holding the exchange files",
				Sources: cli.EnvVars(environment.EnvRoot),
			},
			&cli.StringFlag{
				Name:    "result-path",
				Usage:   "result file written by the client, relative to the root",
				Sources: cli.EnvVars(environment.EnvResultPath),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars(environment.EnvLogLevel),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "disable coloured output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			trainCmd(a),
			generateCmd(a),
			diagnoseCmd(a),
			watchCmd(a),
			listenCmd(a),
			scenarioCmd(a),
			healthCmd(a),
			renderCmd(a),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.Run(ctx, os.Args)
	stop()
	if err != nil {
		logger := a.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	envFiles := []string{
		cmd.String("env-file"),
		a.dirs.ConfigFile(),
	}
	cfg, err := environment.ReadEnvConfig(envFiles...)
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("root") {
		cfg.Root = cmd.String("root")
	}
	if cmd.IsSet("result-path") {
		cfg.ResultPath = cmd.String("result-path")
	}
	if cmd.IsSet("log-level") {
		lvl, err := environment.ParseLevel(cmd.String("log-level"))
		if err != nil {
			return ctx, err
		}
		cfg.LogLevel = lvl
	}
	a.cfg = cfg
	a.noColor = cmd.Bool("no-color")

	a.logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.TimeOnly,
		NoColor:    a.noColor,
	}))
	slog.SetDefault(a.logger)
	return ctx, nil
}

func systemInfo() string {
	host, _ := os.Hostname()
	return fmt.Sprintf("%s %s/%s %s", host, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

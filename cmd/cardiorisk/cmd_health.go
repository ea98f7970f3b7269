package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	pretty_table "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nats-io/nats.go"
	"github.com/programme-lv/cardiorisk/internal/environment"
	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/orchestrator"
	"github.com/programme-lv/cardiorisk/internal/s3downl"
	"github.com/programme-lv/cardiorisk/internal/trainer"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/urfave/cli/v3"
)

type health int

const (
	healthOk health = iota
	healthWarn
	healthError
)

type feedbackRow struct {
	unit    string
	health  health
	message string
}

func healthCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check the exchange directory, client, model and broker",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{Name: "nats", Usage: "also try to connect to the NATS server"},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server",
				Sources: cli.EnvVars(environment.EnvNatsURL),
			},
		}, orchestratorFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			o, err := a.newOrchestrator(cmd)
			if err != nil {
				return err
			}

			feedback := []feedbackRow{
				ensureRootOk(o.Layout),
				ensureTableOk(o.Table),
				ensureClientOk(o),
				ensureModelOk(o.Layout),
				ensureManifestOk(o.Layout, o.Table),
				ensureDatasetOk(a.cfg),
				ensureSharedOk(o.Layout),
			}
			if cmd.Bool("nats") {
				url := a.cfg.NatsURL
				if cmd.IsSet("nats-url") {
					url = cmd.String("nats-url")
				}
				feedback = append(feedback, ensureNatsOk(url))
			}

			outputFeedback(feedback, a.noColor)
			for _, row := range feedback {
				if row.health == healthError {
					return fmt.Errorf("health check failed: %s", row.unit)
				}
			}
			return nil
		},
	}
}

func ensureRootOk(l exchange.Layout) feedbackRow {
	st, err := os.Stat(l.Root)
	if err != nil {
		return feedbackRow{unit: "Application root", health: healthError, message: err.Error()}
	}
	if !st.IsDir() {
		return feedbackRow{unit: "Application root", health: healthError, message: l.Root + " is not a directory"}
	}
	return feedbackRow{unit: "Application root", health: healthOk, message: l.Root}
}

func ensureTableOk(t vitals.RangeTable) feedbackRow {
	if err := t.Validate(); err != nil {
		return feedbackRow{unit: "Range table", health: healthError, message: err.Error()}
	}
	return feedbackRow{unit: "Range table", health: healthOk, message: t.Version}
}

func ensureClientOk(o *orchestrator.Orchestrator) feedbackRow {
	l := &orchestrator.Launcher{Path: o.ClientPath()}
	if err := l.Check(); err != nil {
		return feedbackRow{unit: "Client executable", health: healthError, message: err.Error()}
	}
	st, err := os.Stat(l.Path)
	if err == nil && st.Mode().Perm()&0111 == 0 {
		return feedbackRow{unit: "Client executable", health: healthWarn, message: l.Path + " is not executable"}
	}
	return feedbackRow{unit: "Client executable", health: healthOk, message: l.Path}
}

func ensureModelOk(l exchange.Layout) feedbackRow {
	m, err := exchange.ReadModel(l)
	if err != nil {
		return feedbackRow{unit: "Model artifacts", health: healthWarn, message: err.Error()}
	}
	return feedbackRow{
		unit:    "Model artifacts",
		health:  healthOk,
		message: fmt.Sprintf("weights=[%s] bias=%s", exchange.FormatWeights(m.Weights), exchange.FormatBias(m.Bias)),
	}
}

func ensureManifestOk(l exchange.Layout, t vitals.RangeTable) feedbackRow {
	m, err := trainer.ReadManifest(l.Root)
	if errors.Is(err, os.ErrNotExist) {
		return feedbackRow{unit: "Model manifest", health: healthWarn, message: "no " + trainer.ManifestFile + ", model origin unknown"}
	}
	if err != nil {
		return feedbackRow{unit: "Model manifest", health: healthError, message: err.Error()}
	}
	if m.TableVersion != t.Version {
		return feedbackRow{
			unit:    "Model manifest",
			health:  healthWarn,
			message: fmt.Sprintf("trained with range table %q, inputs use %q", m.TableVersion, t.Version),
		}
	}
	return feedbackRow{
		unit:    "Model manifest",
		health:  healthOk,
		message: fmt.Sprintf("trained %s, R²=%.4f", m.TrainedAt.Format(time.DateTime), m.R2),
	}
}

func ensureDatasetOk(cfg *environment.EnvConfig) feedbackRow {
	if s3downl.IsURL(cfg.Dataset) {
		return feedbackRow{unit: "Dataset", health: healthOk, message: "remote " + cfg.Dataset}
	}
	path := cfg.Dataset
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Root, path)
	}
	if _, err := os.Stat(path); err != nil {
		return feedbackRow{unit: "Dataset", health: healthWarn, message: err.Error()}
	}
	return feedbackRow{unit: "Dataset", health: healthOk, message: path}
}

func ensureSharedOk(l exchange.Layout) feedbackRow {
	ct := exchange.ReadCiphertext(l)
	if !ct.SharedDirExists {
		return feedbackRow{unit: "Shared channel", health: healthWarn, message: l.SharedPath() + " does not exist yet"}
	}
	return feedbackRow{
		unit:    "Shared channel",
		health:  healthOk,
		message: fmt.Sprintf("server %s, %d files", exchange.ProbeServer(l), len(ct.SharedFiles)),
	}
}

func ensureNatsOk(url string) feedbackRow {
	nc, err := nats.Connect(url, nats.Name(appName), nats.Timeout(3*time.Second))
	if err != nil {
		return feedbackRow{unit: "NATS", health: healthError, message: err.Error()}
	}
	defer nc.Close()
	return feedbackRow{unit: "NATS", health: healthOk, message: nc.ConnectedUrl()}
}

func outputFeedback(feedback []feedbackRow, noColor bool) {
	t := pretty_table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(pretty_table.Row{"Unit", "Health", "Message"})
	for _, row := range feedback {
		healthCode := ""
		switch row.health {
		case healthOk:
			healthCode = "OKAY"
		case healthWarn:
			healthCode = "WARN"
		case healthError:
			healthCode = "ERROR"
		}
		t.AppendRow(pretty_table.Row{row.unit, healthCode, row.message})
	}
	t.SetStyle(pretty_table.StyleLight)
	t.SetColumnConfigs([]pretty_table.ColumnConfig{
		{
			Name:        "Health",
			Transformer: verdictColor(noColor),
			Align:       text.AlignCenter,
		},
	})
	t.Render()
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/programme-lv/cardiorisk/internal/environment"
	"github.com/programme-lv/cardiorisk/internal/gatherer"
	"github.com/programme-lv/cardiorisk/internal/gatherer/respbuilder"
	"github.com/programme-lv/cardiorisk/internal/gatherer/sqsgath"
	"github.com/programme-lv/cardiorisk/internal/gatherer/termgath"
	"github.com/programme-lv/cardiorisk/internal/visual"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/urfave/cli/v3"
)

func diagnoseCmd(a *app) *cli.Command {
	flags := []cli.Flag{
		&cli.FloatFlag{Name: "age", Value: 50, Usage: "age in years"},
		&cli.FloatFlag{Name: "bp", Value: 120, Usage: "resting blood pressure (mm Hg)"},
		&cli.FloatFlag{Name: "chol", Value: 200, Usage: "serum cholesterol (mg/dl)"},
		&cli.FloatFlag{Name: "hr", Value: 150, Usage: "maximum heart rate achieved"},
		&cli.BoolFlag{Name: "json", Usage: "print the full response as JSON instead of the console report"},
		&cli.StringFlag{Name: "png", Usage: "also write the ciphertext heat-map to this file"},
		&cli.IntFlag{Name: "png-size", Value: visual.DefaultSize, Usage: "heat-map edge in pixels (128, 256 or 512)"},
		&cli.StringFlag{
			Name:    "res-sqs-url",
			Usage:   "also send the event stream to this SQS queue",
			Sources: cli.EnvVars(environment.EnvResSqsURL),
		},
	}
	return &cli.Command{
		Name:  "diagnose",
		Usage: "run one encrypted risk prediction for the given vitals",
		Flags: append(flags, orchestratorFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			o, err := a.newOrchestrator(cmd)
			if err != nil {
				return err
			}
			sample := vitals.ClinicalSample{
				Age:           cmd.Float("age"),
				BloodPressure: cmd.Float("bp"),
				Cholesterol:   cmd.Float("chol"),
				MaxHeartRate:  cmd.Float("hr"),
			}

			requestUuid := uuid.NewString()
			resp := respbuilder.New(requestUuid)
			g := gatherer.Multi{resp}
			if !cmd.Bool("json") {
				g = append(g, termgath.NewWriter(os.Stdout, a.noColor))
			}

			sqsUrl := a.cfg.ResSqsURL
			if cmd.IsSet("res-sqs-url") {
				sqsUrl = cmd.String("res-sqs-url")
			}
			if sqsUrl != "" {
				client, err := sqsgath.NewClient(ctx, a.cfg.AwsRegion)
				if err != nil {
					return err
				}
				g = append(g, sqsgath.New(client, requestUuid, sqsUrl, a.logger))
			}

			out := o.DiagnoseWith(ctx, requestUuid, sample, o.Policy, g)

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(resp.Response()); err != nil {
					return err
				}
			}

			if png := cmd.String("png"); png != "" && out.Ciphertext != nil && out.Ciphertext.HasBinary {
				if err := visual.Render(o.Layout, cmd.Int("png-size"), png); err != nil {
					a.logger.Warn("heat-map not written", "error", err)
				} else if !cmd.Bool("json") {
					fmt.Printf("Ciphertext heat-map written to %s\n", png)
				}
			}

			if out.Err != nil {
				return out.Err
			}
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/programme-lv/cardiorisk/internal/environment"
	"github.com/programme-lv/cardiorisk/internal/s3downl"
	"github.com/programme-lv/cardiorisk/internal/trainer"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/urfave/cli/v3"
)

func trainCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "fit the linear risk model and write weights.txt, bias.txt and model.toml",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dataset",
				Usage:   "CSV dataset: local path, .csv.zst or S3 https URL",
				Sources: cli.EnvVars(environment.EnvDataset),
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Value: trainer.DefaultSeed,
				Usage: "shuffle seed for the train/test split",
			},
			&cli.FloatFlag{
				Name:  "test-size",
				Value: trainer.DefaultTestFraction,
				Usage: "held-out fraction",
				Validator: func(f float64) error {
					if f <= 0 || f >= 1 {
						return fmt.Errorf("test-size must be in (0, 1)")
					}
					return nil
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			source := a.cfg.Dataset
			if cmd.IsSet("dataset") {
				source = cmd.String("dataset")
			}

			t := trainer.New(vitals.DefaultTable, a.cfg.Layout(), a.logger)
			t.Seed = cmd.Uint64("seed")
			t.TestFraction = cmd.Float("test-size")

			if s3downl.IsURL(source) {
				cacheDir, err := a.dirs.DatasetCache()
				if err != nil {
					return err
				}
				download, err := s3downl.NewDownloadFunc(ctx, a.cfg.AwsRegion, a.logger)
				if err != nil {
					return err
				}
				t.CacheDir = cacheDir
				t.Download = download
			}

			report, err := t.Run(ctx, source)
			if err != nil {
				return err
			}

			fmt.Printf("Model trained on %d rows, tested on %d rows\n", report.Manifest.TrainRows, report.Manifest.TestRows)
			fmt.Printf("R² score: %.4f\n", report.R2)
			for _, f := range vitals.Features() {
				fmt.Printf("  %-9s % .6f\n", f.Column(), report.Model.Weights[f])
			}
			fmt.Printf("  %-9s % .6f\n", "bias", report.Model.Bias)
			if len(report.Drift) > 0 {
				fmt.Printf("%d feature ranges differ from range table %s (see model.toml)\n", len(report.Drift), vitals.DefaultTable.Version)
			}
			return nil
		},
	}
}

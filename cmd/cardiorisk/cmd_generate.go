package main

import (
	"context"
	"fmt"

	"github.com/programme-lv/cardiorisk/internal/generator"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/urfave/cli/v3"
)

func generateCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "write a random patient to raw_data.txt",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			g := generator.New(vitals.DefaultTable, nil)
			p, err := g.Produce(a.cfg.Layout())
			if err != nil {
				return err
			}

			vals := p.Sample.Values()
			fmt.Println("Generated patient:")
			for _, f := range vitals.Features() {
				fmt.Printf("  %-15s %4g -> %.6f\n", f.String(), vals[f], p.Features[f])
			}
			fmt.Printf("Saved to %s\n", p.Path)
			return nil
		},
	}
}

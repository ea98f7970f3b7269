package main

import (
	"context"
	"fmt"

	"github.com/programme-lv/cardiorisk/internal/visual"
	"github.com/urfave/cli/v3"
)

func renderCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "draw the current ciphertext binary as a PNG heat-map",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "ciphertext.png", Usage: "output file"},
			&cli.IntFlag{Name: "size", Value: visual.DefaultSize, Usage: "edge in pixels (128, 256 or 512)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			out := cmd.String("out")
			size := cmd.Int("size")
			if err := visual.Render(a.cfg.Layout(), size, out); err != nil {
				return err
			}
			fmt.Printf("Ciphertext heat-map (%dx%d) written to %s\n", size, size, out)
			return nil
		},
	}
}

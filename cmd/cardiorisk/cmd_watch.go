package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/monitor"
	"github.com/urfave/cli/v3"
)

func watchCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "follow the AI server status through the shared channel sentinels",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "once", Usage: "print the current status and exit"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paint := statusPainter(a.noColor)
			if cmd.Bool("once") {
				fmt.Println(paint(exchange.ProbeServer(a.cfg.Layout())))
				return nil
			}

			m, err := monitor.New(a.cfg.Layout(), a.logger)
			if err != nil {
				return err
			}
			if err := m.Start(ctx); err != nil {
				return err
			}
			defer m.Stop()

			for ev := range m.Events() {
				fmt.Printf("%s  %s\n", ev.Time.Format("15:04:05"), paint(ev.Status))
			}
			return nil
		},
	}
}

func statusPainter(noColor bool) func(exchange.ServerStatus) string {
	colors := map[exchange.ServerStatus]*color.Color{
		exchange.ServerIdle:            color.New(color.FgHiBlack),
		exchange.ServerRequestDetected: color.New(color.FgYellow, color.Bold),
		exchange.ServerResponseSent:    color.New(color.FgGreen, color.Bold),
	}
	labels := map[exchange.ServerStatus]string{
		exchange.ServerIdle:            "idle",
		exchange.ServerRequestDetected: "encrypted request detected",
		exchange.ServerResponseSent:    "encrypted response sent",
	}
	return func(s exchange.ServerStatus) string {
		c, ok := colors[s]
		if !ok {
			return string(s)
		}
		if noColor {
			c.DisableColor()
		}
		return c.Sprint(labels[s])
	}
}

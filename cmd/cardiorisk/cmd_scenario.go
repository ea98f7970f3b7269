package main

import (
	"context"
	"fmt"
	"os"

	pretty_table "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/programme-lv/cardiorisk/internal/behave"
	"github.com/programme-lv/cardiorisk/internal/gatherer"
	"github.com/programme-lv/cardiorisk/internal/gatherer/termgath"
	"github.com/urfave/cli/v3"
)

func scenarioCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "scenario",
		Usage:     "run a TOML scenario suite through the client",
		ArgsUsage: "<scenarios.toml>",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "print each diagnosis as it runs"},
		}, orchestratorFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one scenario file")
			}
			cases, err := behave.Parse(cmd.Args().First())
			if err != nil {
				return err
			}
			o, err := a.newOrchestrator(cmd)
			if err != nil {
				return err
			}

			var newGatherer func(behave.Case) gatherer.ResultGatherer
			if cmd.Bool("verbose") {
				newGatherer = func(c behave.Case) gatherer.ResultGatherer {
					fmt.Printf("\n### %s\n", c.Name)
					return termgath.NewWriter(os.Stdout, a.noColor)
				}
			}
			results := behave.Run(ctx, o, cases, newGatherer)

			failed := 0
			t := pretty_table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(pretty_table.Row{"Scenario", "Result", "State", "Probability", "Details"})
			for _, r := range results {
				verdict := "PASS"
				if !r.Passed() {
					verdict = "FAIL"
					failed++
				}
				prob := "-"
				if r.Outcome.OK() {
					prob = fmt.Sprintf("%.4f", r.Outcome.Probability)
				}
				t.AppendRow(pretty_table.Row{r.Case.Name, verdict, string(r.Outcome.State()), prob, r.Mismatch})
			}
			t.SetStyle(pretty_table.StyleLight)
			t.SetColumnConfigs([]pretty_table.ColumnConfig{
				{
					Name:        "Result",
					Transformer: verdictColor(a.noColor),
					Align:       text.AlignCenter,
				},
			})
			t.Render()

			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
			}
			return nil
		},
	}
}

func verdictColor(noColor bool) text.Transformer {
	return func(s interface{}) string {
		str := fmt.Sprint(s)
		if noColor {
			return str
		}
		switch str {
		case "PASS", "OKAY":
			return text.FgHiGreen.Sprint(str)
		case "WARN":
			return text.FgHiYellow.Sprint(str)
		case "FAIL", "ERROR":
			return text.FgHiRed.Sprint(str)
		}
		return str
	}
}

// Package termgath renders diagnosis events for an operator console.
package termgath

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/cardiorisk/api"
)

type TerminalGatherer struct {
	StartedAt time.Time

	out io.Writer

	title *color.Color
	info  *color.Color
	good  *color.Color
	warn  *color.Color
	bad   *color.Color
}

func NewWriter(out io.Writer, noColor bool) *TerminalGatherer {
	t := &TerminalGatherer{
		StartedAt: time.Now(),
		out:       out,
		title:     color.New(color.Bold),
		info:      color.New(color.FgCyan),
		good:      color.New(color.FgGreen, color.Bold),
		warn:      color.New(color.FgYellow),
		bad:       color.New(color.FgRed, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{t.title, t.info, t.good, t.warn, t.bad} {
			c.DisableColor()
		}
	}
	return t
}

func (t *TerminalGatherer) StartJob(systemInfo string, vitals api.Vitals, features []float64) {
	t.StartedAt = time.Now()
	t.title.Fprintln(t.out, "== Diagnosis started ==")
	if systemInfo != "" {
		fmt.Fprintf(t.out, "System: %s\n", systemInfo)
	}
	fmt.Fprintf(t.out, "Vitals: age=%g bp=%g chol=%g heart_rate=%g\n",
		vitals.Age, vitals.BloodPressure, vitals.Cholesterol, vitals.MaxHeartRate)
	fmt.Fprint(t.out, "Normalized:")
	for _, f := range features {
		fmt.Fprintf(t.out, " %.6f", f)
	}
	fmt.Fprintln(t.out)
}

func (t *TerminalGatherer) StartClient(clientPath string) {
	t.info.Fprintf(t.out, "-> Running encrypted inference client %s\n", clientPath)
}

func (t *TerminalGatherer) FinishClient(run *api.ClientRun) {
	if run == nil {
		return
	}
	t.info.Fprintf(t.out, "<- Client finished: exit=%d wall=%dms", run.ExitCode, run.WallMillis)
	if run.Killed {
		t.bad.Fprint(t.out, " (killed)")
	}
	fmt.Fprintln(t.out)
	if run.Stderr != "" {
		fmt.Fprintf(t.out, "stderr:\n%s\n", run.Stderr)
	}
}

func (t *TerminalGatherer) Warn(state string, msg string) {
	t.warn.Fprintf(t.out, "warning [%s]: %s\n", state, msg)
}

func (t *TerminalGatherer) FinishSuccess(probability float64, riskBand string, ct *api.CiphertextInfo) {
	fmt.Fprintf(t.out, "Risk probability: %.2f%%\n", probability*100)
	if riskBand == "high" {
		t.bad.Fprintln(t.out, "HIGH RISK OF HEART DISEASE")
	} else {
		t.good.Fprintln(t.out, "NORMAL RISK")
	}
	if ct != nil {
		if ct.SizeBytes != nil {
			fmt.Fprintf(t.out, "Ciphertext size: %s\n", FormatSize(*ct.SizeBytes))
		}
		if ct.Text != nil {
			fmt.Fprintf(t.out, "Ciphertext info:\n%s\n", *ct.Text)
		}
	}
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	t.title.Fprintf(t.out, "== Diagnosis finished in %s ==\n", dur)
}

func (t *TerminalGatherer) FinishError(state string, kind string, msg string, hints []string) {
	t.bad.Fprintf(t.out, "== Diagnosis failed in state %s (%s): %s ==\n", state, kind, msg)
	if len(hints) > 0 {
		fmt.Fprintln(t.out, "Possible causes:")
		for _, h := range hints {
			fmt.Fprintf(t.out, "  - %s\n", h)
		}
	}
}

// FormatSize renders a byte count with the largest unit of B, KB or MB
// that keeps the value at least 1.
func FormatSize(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB (%d B)", float64(n)/(1024*1024), n)
	case n >= 1024:
		return fmt.Sprintf("%.2f KB (%d B)", float64(n)/1024, n)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

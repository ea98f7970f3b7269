// Package orchestrator drives one diagnosis through the file-exchange
// protocol: it writes the normalized vitals, runs the encrypted inference
// client and interprets what the client left behind.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/cardiorisk/api"
	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/gatherer"
	"github.com/programme-lv/cardiorisk/internal/trainer"
	"github.com/programme-lv/cardiorisk/internal/vitals"
)

const DefaultTimeout = 30 * time.Second

type Orchestrator struct {
	Layout exchange.Layout
	// Client is the executable path, relative to the layout root unless absolute.
	Client  string
	Timeout time.Duration
	Table   vitals.RangeTable
	Policy  vitals.Policy

	Gatherer   gatherer.ResultGatherer
	SystemInfo string
	Logger     *slog.Logger

	// the exchange files are shared by all requests
	mu sync.Mutex
}

func New(layout exchange.Layout, client string, table vitals.RangeTable, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		Layout:   layout,
		Client:   client,
		Timeout:  DefaultTimeout,
		Table:    table,
		Policy:   vitals.Reject,
		Gatherer: gatherer.Nop{},
		Logger:   logger,
	}
}

// Outcome is the full record of one request.
type Outcome struct {
	RequestUuid string
	States      []State

	Sample   vitals.ClinicalSample
	Features vitals.FeatureVector

	Client *Run

	Probability float64
	RiskBand    RiskBand
	Ciphertext  *exchange.Ciphertext

	Warnings []string
	Elapsed  time.Duration

	// Err is nil only for Success.
	Err *Error
}

// State is the last state the request reached.
func (o *Outcome) State() State {
	if len(o.States) == 0 {
		return Idle
	}
	return o.States[len(o.States)-1]
}

func (o *Outcome) OK() bool {
	return o.Err == nil && o.State() == Success
}

// ClientPath resolves the client executable against the layout root.
func (o *Orchestrator) ClientPath() string {
	if filepath.IsAbs(o.Client) {
		return o.Client
	}
	return filepath.Join(o.Layout.Root, o.Client)
}

// Diagnose runs a request with a fresh uuid and the default gatherer.
func (o *Orchestrator) Diagnose(ctx context.Context, sample vitals.ClinicalSample) *Outcome {
	return o.DiagnoseWith(ctx, uuid.NewString(), sample, o.Policy, o.Gatherer)
}

// DiagnoseWith runs a request, streaming its events to g. Concurrent calls
// are serialized.
func (o *Orchestrator) DiagnoseWith(ctx context.Context, requestUuid string, sample vitals.ClinicalSample, policy vitals.Policy, g gatherer.ResultGatherer) *Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	if g == nil {
		g = gatherer.Nop{}
	}
	r := &request{
		o:      o,
		g:      g,
		logger: o.Logger.With("request_uuid", requestUuid),
		out: &Outcome{
			RequestUuid: requestUuid,
			States:      []State{Idle},
			Sample:      sample,
		},
		started: time.Now(),
	}
	r.run(ctx, policy)
	r.out.Elapsed = time.Since(r.started)
	return r.out
}

type request struct {
	o       *Orchestrator
	g       gatherer.ResultGatherer
	logger  *slog.Logger
	out     *Outcome
	started time.Time
}

func (r *request) enter(s State) {
	r.out.States = append(r.out.States, s)
	r.logger.Debug("state", "state", string(s))
}

func (r *request) warn(msg string) {
	r.out.Warnings = append(r.out.Warnings, msg)
	r.logger.Warn(msg, "state", string(r.out.State()))
	r.g.Warn(string(r.out.State()), msg)
}

func (r *request) fail(e *Error) {
	if e.State.Terminal() && r.out.State() != e.State {
		r.enter(e.State)
	}
	r.out.Err = e
	r.logger.Error("diagnosis failed", "kind", string(e.Kind), "state", string(e.State), "error", e.Error())
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	r.g.FinishError(string(e.State), string(e.Kind), msg, e.Hints)
}

func (r *request) run(ctx context.Context, policy vitals.Policy) {
	o := r.o

	r.enter(Preparing)
	sample, err := o.Table.Check(r.out.Sample, policy)
	if err != nil {
		r.fail(&Error{Kind: KindInput, State: Preparing, Msg: "vitals rejected", Err: err})
		return
	}
	r.out.Sample = sample
	r.out.Features = o.Table.Normalize(sample)
	r.g.StartJob(o.SystemInfo, ToApiVitals(sample), r.out.Features[:])

	r.checkModel()

	if err := exchange.RemoveResult(o.Layout); err != nil {
		r.fail(&Error{Kind: KindConfiguration, State: Preparing, Msg: "cannot clear previous result", Err: err})
		return
	}
	if err := exchange.WriteRawInput(o.Layout, r.out.Features); err != nil {
		r.fail(&Error{Kind: KindConfiguration, State: Preparing, Msg: "cannot write raw input", Err: err})
		return
	}

	if err := ctx.Err(); err != nil {
		r.fail(&Error{Kind: KindCancelled, State: Cancelled, Msg: "request cancelled", Err: err})
		return
	}

	r.enter(Launching)
	l := &Launcher{Path: o.ClientPath(), Dir: o.Layout.Root}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r.g.StartClient(l.Path)
	wait, err := l.Start(ctx, timeout)
	if err != nil {
		hints := hintsClientMissing
		if !errors.Is(err, ErrClientMissing) {
			hints = nil
		}
		r.fail(&Error{Kind: KindConfiguration, State: Launching, Msg: "cannot launch client", Hints: hints, Err: err})
		return
	}

	r.enter(Waiting)
	run, err := wait()
	r.out.Client = run
	r.g.FinishClient(ToApiClientRun(run))
	switch {
	case errors.Is(err, ErrTimeout):
		r.fail(&Error{Kind: KindTimeout, State: TimedOut, Msg: fmt.Sprintf("client did not finish within %s and was terminated", timeout), Hints: hintsTimeout})
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.fail(&Error{Kind: KindCancelled, State: Cancelled, Msg: "request cancelled, client terminated", Err: err})
		return
	case err != nil:
		r.fail(&Error{Kind: KindConfiguration, State: Waiting, Msg: "client failed", Err: err})
		return
	}

	r.enter(Completed)
	r.logger.Info("client finished", "exit_code", run.ExitCode, "elapsed", run.Elapsed)
	if run.ExitCode != 0 {
		r.warn(fmt.Sprintf("client exited with code %d", run.ExitCode))
	}

	p, err := exchange.ReadResult(o.Layout)
	var invalid *exchange.InvalidResultError
	switch {
	case errors.Is(err, exchange.ErrResultMissing):
		r.fail(&Error{Kind: KindProtocol, State: ResultMissing, Msg: fmt.Sprintf("%s was not created", o.Layout.Rel(exchange.Result)), Hints: hintsResultMissing})
		return
	case errors.Is(err, exchange.ErrResultEmpty):
		r.fail(&Error{Kind: KindProtocol, State: ResultEmpty, Msg: fmt.Sprintf("%s is empty", o.Layout.Rel(exchange.Result)), Hints: hintsResultEmpty})
		return
	case errors.As(err, &invalid):
		r.fail(&Error{Kind: KindProtocol, State: ResultInvalid, Msg: fmt.Sprintf("%s does not hold a decimal: %q", o.Layout.Rel(exchange.Result), invalid.Raw)})
		return
	case err != nil:
		r.fail(&Error{Kind: KindProtocol, State: ResultMissing, Msg: "cannot read result", Err: err})
		return
	}

	r.enter(Success)
	r.out.Probability = p
	r.out.RiskBand = Band(p)
	if p < 0 || p > 1 {
		r.warn(fmt.Sprintf("probability %g is outside [0, 1]", p))
	}

	ct := exchange.ReadCiphertext(o.Layout)
	r.out.Ciphertext = &ct
	for _, a := range ct.Missing() {
		r.warn(fmt.Sprintf("%s not found", o.Layout.Rel(a)))
	}
	if ct.SizeErr != nil {
		r.warn(ct.SizeErr.Error())
	}

	r.logger.Info("diagnosis finished", "probability", p, "risk_band", string(r.out.RiskBand))
	r.g.FinishSuccess(p, string(r.out.RiskBand), ToApiCiphertext(ct))
}

// checkModel warns when the trained model was scaled with another range
// table or when the model artifacts are missing.
func (r *request) checkModel() {
	o := r.o
	for _, a := range []exchange.Artifact{exchange.Weights, exchange.Bias} {
		if _, err := os.Stat(o.Layout.Path(a)); errors.Is(err, os.ErrNotExist) {
			r.warn(fmt.Sprintf("%s not found, run train first", o.Layout.Rel(a)))
		}
	}
	m, err := trainer.ReadManifest(o.Layout.Root)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		r.warn(err.Error())
		return
	}
	if m.TableVersion != o.Table.Version {
		r.warn(fmt.Sprintf("model was trained with range table %q, inputs use %q", m.TableVersion, o.Table.Version))
	}
}

func ToApiVitals(s vitals.ClinicalSample) api.Vitals {
	return api.Vitals{
		Age:           s.Age,
		BloodPressure: s.BloodPressure,
		Cholesterol:   s.Cholesterol,
		MaxHeartRate:  s.MaxHeartRate,
	}
}

func FromApiVitals(v api.Vitals) vitals.ClinicalSample {
	return vitals.ClinicalSample{
		Age:           v.Age,
		BloodPressure: v.BloodPressure,
		Cholesterol:   v.Cholesterol,
		MaxHeartRate:  v.MaxHeartRate,
	}
}

func ToApiClientRun(run *Run) *api.ClientRun {
	if run == nil {
		return nil
	}
	return &api.ClientRun{
		Stdout:     run.Stdout,
		Stderr:     run.Stderr,
		ExitCode:   int64(run.ExitCode),
		WallMillis: run.Elapsed.Milliseconds(),
		Killed:     run.Killed,
	}
}

func ToApiCiphertext(ct exchange.Ciphertext) *api.CiphertextInfo {
	res := &api.CiphertextInfo{
		HasBinary:   ct.HasBinary,
		SharedFiles: ct.SharedFiles,
	}
	if ct.HasText {
		text := ct.Text
		res.Text = &text
	}
	if ct.HasSize && ct.SizeErr == nil {
		size := ct.SizeBytes
		res.SizeBytes = &size
	}
	return res
}

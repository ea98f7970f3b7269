package respbuilder

import (
	"sync"
	"time"

	"github.com/programme-lv/cardiorisk/api"
)

// Builder gathers diagnosis events and builds a complete api.DiagnoseResponse.
type Builder struct {
	mu sync.Mutex

	requestUuid string
	systemInfo  string

	started  time.Time
	finished *time.Time

	vitals   api.Vitals
	features []float64

	client     *api.ClientRun
	ciphertext *api.CiphertextInfo
	warnings   []string

	state        string
	status       api.DiagnoseStatus
	probability  *float64
	riskBand     *string
	errorMessage *string
	hints        []string
}

func New(requestUuid string) *Builder {
	return &Builder{
		requestUuid: requestUuid,
		started:     time.Now(),
		status:      api.Success,
	}
}

// StartJob implements ResultGatherer.
func (b *Builder) StartJob(systemInfo string, vitals api.Vitals, features []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.systemInfo = systemInfo
	b.vitals = vitals
	b.features = append([]float64(nil), features...)
}

// StartClient implements ResultGatherer.
func (b *Builder) StartClient(clientPath string) {}

// FinishClient implements ResultGatherer.
func (b *Builder) FinishClient(run *api.ClientRun) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if run != nil {
		c := *run
		b.client = &c
	}
}

// Warn implements ResultGatherer.
func (b *Builder) Warn(state string, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.warnings = append(b.warnings, state+": "+msg)
}

// FinishSuccess implements ResultGatherer.
func (b *Builder) FinishSuccess(probability float64, riskBand string, ct *api.CiphertextInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = "success"
	b.status = api.Success
	b.probability = &probability
	b.riskBand = &riskBand
	b.ciphertext = ct
	b.finish()
}

// FinishError implements ResultGatherer.
func (b *Builder) FinishError(state string, kind string, msg string, hints []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
	b.status = statusOf(kind)
	b.errorMessage = &msg
	b.hints = append([]string(nil), hints...)
	b.finish()
}

func (b *Builder) finish() {
	now := time.Now()
	b.finished = &now
}

func statusOf(kind string) api.DiagnoseStatus {
	switch kind {
	case "timeout":
		return api.TimeoutError
	case "configuration":
		return api.ConfigurationError
	case "cancelled":
		return api.Cancelled
	case "input":
		return api.InvalidInput
	default:
		return api.ProtocolError
	}
}

// Response builds the api.DiagnoseResponse from gathered data.
func (b *Builder) Response() api.DiagnoseResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := b.started.Format(time.RFC3339)
	finish := start
	total := int64(0)
	if b.finished != nil {
		finish = b.finished.Format(time.RFC3339)
		total = b.finished.Sub(b.started).Milliseconds()
	}
	return api.DiagnoseResponse{
		RequestUuid:  b.requestUuid,
		Status:       b.status,
		State:        b.state,
		Vitals:       b.vitals,
		Features:     b.features,
		Probability:  b.probability,
		RiskBand:     b.riskBand,
		Client:       b.client,
		Ciphertext:   b.ciphertext,
		Warnings:     b.warnings,
		ErrorMessage: b.errorMessage,
		Hints:        b.hints,
		StartTime:    start,
		FinishTime:   finish,
		TotalTimeMs:  total,
		SystemInfo: func() *string {
			if b.systemInfo == "" {
				return nil
			}
			v := b.systemInfo
			return &v
		}(),
	}
}

// Package gatherer defines the sink for diagnosis lifecycle events.
package gatherer

import "github.com/programme-lv/cardiorisk/api"

type ResultGatherer interface {
	StartJob(systemInfo string, vitals api.Vitals, features []float64)

	StartClient(clientPath string)
	FinishClient(run *api.ClientRun)

	Warn(state string, msg string)

	FinishSuccess(probability float64, riskBand string, ct *api.CiphertextInfo)
	FinishError(state string, kind string, msg string, hints []string)
}

// Multi forwards every event to each gatherer in order.
type Multi []ResultGatherer

func (m Multi) StartJob(systemInfo string, vitals api.Vitals, features []float64) {
	for _, g := range m {
		g.StartJob(systemInfo, vitals, features)
	}
}

func (m Multi) StartClient(clientPath string) {
	for _, g := range m {
		g.StartClient(clientPath)
	}
}

func (m Multi) FinishClient(run *api.ClientRun) {
	for _, g := range m {
		g.FinishClient(run)
	}
}

func (m Multi) Warn(state string, msg string) {
	for _, g := range m {
		g.Warn(state, msg)
	}
}

func (m Multi) FinishSuccess(probability float64, riskBand string, ct *api.CiphertextInfo) {
	for _, g := range m {
		g.FinishSuccess(probability, riskBand, ct)
	}
}

func (m Multi) FinishError(state string, kind string, msg string, hints []string) {
	for _, g := range m {
		g.FinishError(state, kind, msg, hints)
	}
}

// Nop drops all events.
type Nop struct{}

func (Nop) StartJob(string, api.Vitals, []float64) {}
func (Nop) StartClient(string) {}
func (Nop) FinishClient(*api.ClientRun) {}
func (Nop) Warn(string, string) {}
func (Nop) FinishSuccess(float64, string, *api.CiphertextInfo) {}
func (Nop) FinishError(string, string, string, []string) {}

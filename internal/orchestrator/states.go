package orchestrator

// State is a step of a single diagnosis request.
type State string

const (
	Idle      State = "idle"
	Preparing State = "preparing"
	Launching State = "launching"
	Waiting   State = "waiting"
	Completed State = "completed"

	TimedOut      State = "timed_out"
	Cancelled     State = "cancelled"
	ResultMissing State = "result_missing"
	ResultEmpty   State = "result_empty"
	ResultInvalid State = "result_invalid"
	Success       State = "success"
)

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	switch s {
	case TimedOut, Cancelled, ResultMissing, ResultEmpty, ResultInvalid, Success:
		return true
	}
	return false
}

// RiskBand classifies a predicted probability.
type RiskBand string

const (
	Normal RiskBand = "normal"
	High   RiskBand = "high"
)

// HighRiskThreshold is exclusive: p must exceed it to be high risk.
const HighRiskThreshold = 0.7

func Band(p float64) RiskBand {
	if p > HighRiskThreshold {
		return High
	}
	return Normal
}

package api

// Simple, non-streaming response type for one diagnosis

type DiagnoseStatus string

const (
	Success            DiagnoseStatus = "success"
	ProtocolError      DiagnoseStatus = "protocol_error"
	TimeoutError       DiagnoseStatus = "timeout"
	ConfigurationError DiagnoseStatus = "configuration_error"
	Cancelled          DiagnoseStatus = "cancelled"
	InvalidInput       DiagnoseStatus = "invalid_input"
)

// DiagnoseResponse is a complete summary of a diagnosis
type DiagnoseResponse struct {
	RequestUuid string `json:"request_uuid"`

	Status DiagnoseStatus `json:"status"`
	// Terminal state of the orchestrator
	State string `json:"state"`

	Vitals   Vitals    `json:"vitals"`
	Features []float64 `json:"features"`

	Probability *float64 `json:"probability,omitempty"`
	RiskBand    *string  `json:"risk_band,omitempty"`

	Client     *ClientRun      `json:"client,omitempty"`
	Ciphertext *CiphertextInfo `json:"ciphertext,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`

	ErrorMessage *string  `json:"error_message,omitempty"`
	Hints        []string `json:"hints,omitempty"`

	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`

	SystemInfo *string `json:"system_info,omitempty"`
}

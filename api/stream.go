package api

import "time"

// MsgType is a message type for streaming responses
type MsgType string

// Streaming message type constants
const (
	StartJobMsg     MsgType = "job_start"
	StartClientMsg  MsgType = "client_start"
	FinishClientMsg MsgType = "client_finish"
	WarningMsg      MsgType = "warning"
	FinishJobMsg    MsgType = "job_finish"
	ServerStatusMsg MsgType = "server_status"
)

// Client output size constraints for streaming
const (
	MaxClientOutputHeight = 40
	MaxClientOutputWidth  = 80
)

// Header is the common header for all streaming response messages
type Header struct {
	RequestUuid string  `json:"request_uuid"`
	MsgType     MsgType `json:"msg_type"`
}

// ClientRun describes one execution of the encrypted-inference client.
type ClientRun struct {
	Stdout     string `json:"out"`
	Stderr     string `json:"err"`
	ExitCode   int64  `json:"exit"`
	WallMillis int64  `json:"wall_ms"`
	Killed     bool   `json:"killed"`
}

// CiphertextInfo is what the server left in the shared channel.
type CiphertextInfo struct {
	Text        *string  `json:"text"`
	SizeBytes   *int64   `json:"size_bytes"`
	HasBinary   bool     `json:"has_binary"`
	SharedFiles []string `json:"shared_files"`
}

// StartJob message sent when a diagnosis begins
type StartJob struct {
	Header
	SystemInfo  string    `json:"system_info"`
	StartedTime string    `json:"started_time"`
	Vitals      Vitals    `json:"vitals"`
	Features    []float64 `json:"features"`
}

// StartClient message sent right before the client is launched
type StartClient struct {
	Header
	ClientPath string `json:"client_path"`
}

// FinishClient message sent once the client exited or was killed
type FinishClient struct {
	Header
	Client *ClientRun `json:"client"`
}

// Warning message carries a non-fatal anomaly
type Warning struct {
	Header
	State   string `json:"state"`
	Message string `json:"message"`
}

// FinishJob message sent when the diagnosis reaches a terminal state
type FinishJob struct {
	Header
	State        string          `json:"state"`
	Probability  *float64        `json:"probability"`
	RiskBand     *string         `json:"risk_band"`
	Ciphertext   *CiphertextInfo `json:"ciphertext"`
	ErrorKind    *string         `json:"error_kind"`
	ErrorMessage *string         `json:"error_message"`
	Hints        []string        `json:"hints,omitempty"`
}

// ServerStatus message is published whenever the sentinel files change
type ServerStatus struct {
	MsgType MsgType `json:"msg_type"`
	Status  string  `json:"status"`
	Time    string  `json:"time"`
}

// Helper function to create a header
func NewHeader(requestUuid string, msgType MsgType) Header {
	return Header{
		RequestUuid: requestUuid,
		MsgType:     msgType,
	}
}

// Helper functions to create specific streaming message types
func NewStartJob(requestUuid, systemInfo string, vitals Vitals, features []float64) StartJob {
	return StartJob{
		Header:      NewHeader(requestUuid, StartJobMsg),
		SystemInfo:  systemInfo,
		StartedTime: time.Now().Format(time.RFC3339),
		Vitals:      vitals,
		Features:    features,
	}
}

func NewStartClient(requestUuid, clientPath string) StartClient {
	return StartClient{
		Header:     NewHeader(requestUuid, StartClientMsg),
		ClientPath: clientPath,
	}
}

func NewFinishClient(requestUuid string, client *ClientRun) FinishClient {
	return FinishClient{
		Header: NewHeader(requestUuid, FinishClientMsg),
		Client: client,
	}
}

func NewWarning(requestUuid, state, message string) Warning {
	return Warning{
		Header:  NewHeader(requestUuid, WarningMsg),
		State:   state,
		Message: message,
	}
}

func NewFinishSuccess(requestUuid string, probability float64, riskBand string, ct *CiphertextInfo) FinishJob {
	return FinishJob{
		Header:      NewHeader(requestUuid, FinishJobMsg),
		State:       "success",
		Probability: &probability,
		RiskBand:    &riskBand,
		Ciphertext:  ct,
	}
}

func NewFinishError(requestUuid, state, kind, message string, hints []string) FinishJob {
	return FinishJob{
		Header:       NewHeader(requestUuid, FinishJobMsg),
		State:        state,
		ErrorKind:    &kind,
		ErrorMessage: &message,
		Hints:        hints,
	}
}

func NewServerStatus(status string) ServerStatus {
	return ServerStatus{
		MsgType: ServerStatusMsg,
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
	}
}

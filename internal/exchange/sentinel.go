package exchange

import (
	"os"
)

// ServerStatus is what the presence of the sentinel files says about the
// encrypted-inference server.
type ServerStatus string

const (
	ServerIdle            ServerStatus = "idle"
	ServerRequestDetected ServerStatus = "request_detected"
	ServerResponseSent    ServerStatus = "response_sent"
)

// StatusFromSentinels applies the precedence request > response > idle.
func StatusFromSentinels(request, response bool) ServerStatus {
	switch {
	case request:
		return ServerRequestDetected
	case response:
		return ServerResponseSent
	default:
		return ServerIdle
	}
}

// ProbeServer checks the sentinel files once. Their content is never read.
func ProbeServer(l Layout) ServerStatus {
	return StatusFromSentinels(exists(l.Path(RequestSentinel)), exists(l.Path(ResponseSentinel)))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

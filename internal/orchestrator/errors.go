package orchestrator

import (
	"fmt"
	"strings"
)

type Kind string

const (
	// KindConfiguration covers a missing client executable or an
	// unwritable application root.
	KindConfiguration Kind = "configuration"
	// KindInput is a sample rejected by the out-of-range policy.
	KindInput     Kind = "input"
	KindTimeout   Kind = "timeout"
	KindProtocol  Kind = "protocol"
	KindCancelled Kind = "cancelled"
)

// Error terminates a diagnosis. State is where the request stopped.
type Error struct {
	Kind  Kind
	State State
	Msg   string
	Hints []string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s error in state %s: %s", e.Kind, e.State, e.Msg)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	hintsClientMissing = []string{
		"build the encrypted inference client",
		"point CARDIORISK_CLIENT at the client executable",
	}
	hintsResultMissing = []string{
		"the AI server may not be running",
		"the Shared_Channel directory may be missing",
		"the client may have failed to read raw_data.txt",
		"inspect the client output above",
	}
	hintsResultEmpty = []string{
		"the client may have been interrupted while writing the result",
	}
	hintsTimeout = []string{
		"the AI server may not be responding",
		"raise the timeout with --timeout",
	}
)

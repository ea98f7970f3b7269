package exchange

import (
	"fmt"
	"path/filepath"
)

// Artifact is a file exchanged with the external encrypted-inference client
// and server. Each artifact has a fixed path relative to the application root.
type Artifact int

const (
	RawInput Artifact = iota
	Result
	CiphertextInfo
	CiphertextSize
	CiphertextBinary
	Weights
	Bias
	RequestSentinel
	ResponseSentinel
)

const (
	DefaultSharedDir  = "Shared_Channel"
	DefaultResultPath = "Client_Hospital/result.txt"
)

var artifactNames = map[Artifact]string{
	RawInput:         "raw input",
	Result:           "result",
	CiphertextInfo:   "ciphertext info",
	CiphertextSize:   "ciphertext size",
	CiphertextBinary: "ciphertext binary",
	Weights:          "weights",
	Bias:             "bias",
	RequestSentinel:  "request sentinel",
	ResponseSentinel: "response sentinel",
}

func (a Artifact) String() string {
	if name, ok := artifactNames[a]; ok {
		return name
	}
	return fmt.Sprintf("artifact(%d)", int(a))
}

// Layout resolves artifacts against the application root. The external
// client is started with the root as its working directory, so every
// relative path here is also the client's path.
type Layout struct {
	Root       string
	SharedDir  string
	ResultPath string
}

func NewLayout(root string) Layout {
	return Layout{
		Root:       root,
		SharedDir:  DefaultSharedDir,
		ResultPath: DefaultResultPath,
	}
}

// Rel returns the artifact path relative to the root.
func (l Layout) Rel(a Artifact) string {
	shared := l.SharedDir
	if shared == "" {
		shared = DefaultSharedDir
	}
	switch a {
	case RawInput:
		return "raw_data.txt"
	case Result:
		if l.ResultPath == "" {
			return DefaultResultPath
		}
		return l.ResultPath
	case CiphertextInfo:
		return filepath.Join(shared, "ciphertext_info.txt")
	case CiphertextSize:
		return filepath.Join(shared, "ciphertext_size.txt")
	case CiphertextBinary:
		return filepath.Join(shared, "ciphertext_binary.dat")
	case Weights:
		return "weights.txt"
	case Bias:
		return "bias.txt"
	case RequestSentinel:
		return filepath.Join(shared, "request.ckks")
	case ResponseSentinel:
		return filepath.Join(shared, "response.ckks")
	}
	panic(fmt.Sprintf("unknown artifact %d", int(a)))
}

// Path returns the artifact path joined with the root.
func (l Layout) Path(a Artifact) string {
	return filepath.Join(l.Root, l.Rel(a))
}

// SharedPath is the directory shared between the client and the server.
func (l Layout) SharedPath() string {
	shared := l.SharedDir
	if shared == "" {
		shared = DefaultSharedDir
	}
	return filepath.Join(l.Root, shared)
}

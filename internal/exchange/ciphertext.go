package exchange

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Ciphertext gathers the optional diagnostic artifacts the server leaves
// in the shared directory. Every field degrades to its zero value when the
// artifact is absent.
type Ciphertext struct {
	Text      string `json:"text,omitempty"`
	HasText   bool   `json:"has_text"`
	SizeBytes int64  `json:"size_bytes"`
	HasSize   bool   `json:"has_size"`
	SizeErr   error  `json:"-"`

	HasBinary  bool   `json:"has_binary"`
	BinaryPath string `json:"-"`

	SharedDirExists bool     `json:"shared_dir_exists"`
	SharedFiles     []string `json:"shared_files,omitempty"`
}

// Found reports whether any ciphertext artifact was present.
func (c Ciphertext) Found() bool {
	return c.HasText || c.HasSize || c.HasBinary
}

// Missing names the absent artifacts.
func (c Ciphertext) Missing() []Artifact {
	var res []Artifact
	if !c.HasText {
		res = append(res, CiphertextInfo)
	}
	if !c.HasSize {
		res = append(res, CiphertextSize)
	}
	if !c.HasBinary {
		res = append(res, CiphertextBinary)
	}
	return res
}

// ReadCiphertext loads whatever ciphertext artifacts exist. It never fails.
func ReadCiphertext(l Layout) Ciphertext {
	info := Ciphertext{}

	if entries, err := os.ReadDir(l.SharedPath()); err == nil {
		info.SharedDirExists = true
		for _, e := range entries {
			info.SharedFiles = append(info.SharedFiles, e.Name())
		}
		sort.Strings(info.SharedFiles)
	}

	if data, err := os.ReadFile(l.Path(CiphertextInfo)); err == nil {
		info.Text = string(data)
		info.HasText = true
	}

	if data, err := os.ReadFile(l.Path(CiphertextSize)); err == nil {
		info.HasSize = true
		raw := strings.TrimSpace(string(data))
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || size < 0 {
			info.SizeErr = fmt.Errorf("ciphertext size is not a byte count: %q", raw)
		} else {
			info.SizeBytes = size
		}
	}

	binPath := l.Path(CiphertextBinary)
	if st, err := os.Stat(binPath); err == nil && st.Mode().IsRegular() {
		info.HasBinary = true
		info.BinaryPath = binPath
	}

	return info
}

// ReadCiphertextBinary returns the raw ciphertext bytes for visualization.
func ReadCiphertextBinary(l Layout) ([]byte, error) {
	data, err := os.ReadFile(l.Path(CiphertextBinary))
	if err != nil {
		return nil, fmt.Errorf("failed to read ciphertext binary: %w", err)
	}
	return data, nil
}

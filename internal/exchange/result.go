package exchange

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrResultMissing means the client finished without producing a result file.
	ErrResultMissing = errors.New("result file was not created")
	// ErrResultEmpty means the result file exists but holds no value.
	ErrResultEmpty = errors.New("result file is empty")
)

// InvalidResultError carries the raw content of a result that is not a decimal.
type InvalidResultError struct {
	Raw string
}

func (e *InvalidResultError) Error() string {
	return fmt.Sprintf("result file is malformed: %q", e.Raw)
}

// ParseResult parses the content of a result file.
func ParseResult(content string) (float64, error) {
	raw := strings.TrimSpace(content)
	if raw == "" {
		return 0, ErrResultEmpty
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, &InvalidResultError{Raw: raw}
	}
	return p, nil
}

// ReadResult reads the predicted probability written by the client.
func ReadResult(l Layout) (float64, error) {
	data, err := os.ReadFile(l.Path(Result))
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrResultMissing
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read result: %w", err)
	}
	return ParseResult(string(data))
}

// RemoveResult deletes a result left over from a previous request and
// makes sure the directory the client writes it into exists.
func RemoveResult(l Layout) error {
	path := l.Path(Result)
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale result: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create result dir: %w", err)
	}
	return nil
}

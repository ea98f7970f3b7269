package exchange

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/programme-lv/cardiorisk/internal/vitals"
)

// FormatRawInput renders a feature vector as four lines with six fractional
// digits each. The last line has no trailing newline.
func FormatRawInput(v vitals.FeatureVector) string {
	lines := make([]string, 0, vitals.NumFeatures)
	for _, x := range v {
		lines = append(lines, strconv.FormatFloat(x, 'f', 6, 64))
	}
	return strings.Join(lines, "\n")
}

// ParseRawInput reads the raw input format back. Blank lines, CRLF line
// endings and a trailing newline are tolerated; anything else that is not
// exactly four decimals is an error.
func ParseRawInput(content string) (vitals.FeatureVector, error) {
	var v vitals.FeatureVector
	n := 0
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if n == vitals.NumFeatures {
			return v, fmt.Errorf("raw input has more than %d values (line %d: %q)", vitals.NumFeatures, i+1, line)
		}
		x, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return v, fmt.Errorf("raw input line %d is not a decimal: %q", i+1, line)
		}
		v[n] = x
		n++
	}
	if n != vitals.NumFeatures {
		return v, fmt.Errorf("raw input has %d values, want %d", n, vitals.NumFeatures)
	}
	return v, nil
}

// WriteRawInput replaces the raw input file with the given vector.
func WriteRawInput(l Layout, v vitals.FeatureVector) error {
	path := l.Path(RawInput)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale raw input: %w", err)
	}
	if err := os.WriteFile(path, []byte(FormatRawInput(v)), 0644); err != nil {
		return fmt.Errorf("failed to write raw input: %w", err)
	}
	return nil
}

func ReadRawInput(l Layout) (vitals.FeatureVector, error) {
	data, err := os.ReadFile(l.Path(RawInput))
	if err != nil {
		return vitals.FeatureVector{}, fmt.Errorf("failed to read raw input: %w", err)
	}
	return ParseRawInput(string(data))
}

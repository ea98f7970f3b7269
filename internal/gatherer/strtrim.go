package gatherer

import (
	"strings"
	"unicode/utf8"

	"github.com/programme-lv/cardiorisk/api"
)

// TrimStrToRect cuts s to at most maxHeight lines of maxWidth runes,
// marking each cut with "[...]".
func TrimStrToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	var res strings.Builder
	lines := strings.Split(s, "\n")
	cut := len(lines) > maxHeight
	if cut {
		lines = lines[:maxHeight]
	}
	for i, line := range lines {
		if i > 0 {
			res.WriteString("\n")
		}
		res.WriteString(trimWidth(line, maxWidth))
	}
	if cut {
		res.WriteString("\n[...]")
	}
	return res.String()
}

// trimWidth keeps the first maxWidth runes of line.
func trimWidth(line string, maxWidth int) string {
	if utf8.RuneCountInString(line) <= maxWidth {
		return line
	}
	n := 0
	for i := range line {
		if n == maxWidth {
			return line[:i] + "[...]"
		}
		n++
	}
	return line
}

// TrimClientRun returns a copy of run with its output trimmed for streaming.
func TrimClientRun(run *api.ClientRun) *api.ClientRun {
	if run == nil {
		return nil
	}
	res := *run
	res.Stdout = TrimStrToRect(run.Stdout, api.MaxClientOutputHeight, api.MaxClientOutputWidth)
	res.Stderr = TrimStrToRect(run.Stderr, api.MaxClientOutputHeight, api.MaxClientOutputWidth)
	return &res
}

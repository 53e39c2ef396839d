package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// Runs of comment leaders stripped from grabbed editor lines, so "///" and
// "//" both vanish in one match.
var leaderRe = regexp.MustCompile(`^[ \t]*(?://+|--+|#+|;+|\*+|>+)[ \t]*`)

// MaxBytes bounds a single prompt; anything larger is a host bug, not a
// query.
const MaxBytes = 32 * 1024

// Clean trims whitespace and leading comment markers from every line of a
// grabbed prompt. A line like "\t// explain this" becomes "explain this".
func Clean(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func cleanLine(line string) string {
	s := strings.TrimLeft(line, " \t")
	for {
		m := leaderRe.FindString(s)
		if m == "" {
			break
		}
		s = s[len(m):]
	}
	return strings.TrimRight(s, " \t")
}

// Validate rejects prompts a provider cannot meaningfully answer.
func Validate(cleaned string) error {
	if cleaned == "" {
		return fmt.Errorf("prompt is empty")
	}
	if len(cleaned) > MaxBytes {
		return fmt.Errorf("prompt too large: %d bytes (max %d)", len(cleaned), MaxBytes)
	}
	return nil
}

package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatHack renders program words as the textual .hack format: one
// 16-character binary string per line.
func FormatHack(words []uint16) string {
	var b strings.Builder
	for _, w := range words {
		fmt.Fprintf(&b, "%016b\n", w)
	}
	return b.String()
}

// ParseHack reads the textual .hack format.
func ParseHack(text string) ([]uint16, error) {
	var words []uint16
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(line) != 16 {
			return nil, fmt.Errorf("line %d: expected 16 binary digits, got %d characters", i+1, len(line))
		}
		v, err := strconv.ParseUint(line, 2, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binary word %q", i+1, line)
		}
		words = append(words, uint16(v))
	}
	if len(words) > ROMSize {
		return nil, fmt.Errorf("program too large: %d words", len(words))
	}
	return words, nil
}

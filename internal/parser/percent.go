package parser

import (
	"strconv"
	"strings"
)

// ParsePercent parses "40", "40%" or "done". Range checking is left to the
// tracker so every entry point reports the same validation error.
func ParsePercent(input string) (int, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "done", "complete":
		return 100, nil
	case "":
		return 0, NewPercentError(input)
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, NewPercentError(input)
	}
	return n, nil
}

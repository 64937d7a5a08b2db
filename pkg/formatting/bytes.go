// Package formatting provides human-readable formatting and parsing for byte
// sizes, used by upload limits and log output.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const unitStep = 1024.0

var byteUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

var byteSizePattern = regexp.MustCompile(`^(\d+\.?\d*)\s*([A-Za-z]*)$`)

// FormatBytes converts a byte count to a human-readable string using base-1024 units.
// Negative precision values are clamped to zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}
	if precision < 0 {
		precision = 0
	}

	size := float64(n)
	idx := 0
	for math.Abs(size) >= unitStep && idx < len(byteUnits)-1 {
		size /= unitStep
		idx++
	}

	return strconv.FormatFloat(size, 'f', precision, 64) + " " + byteUnits[idx]
}

// ParseBytes parses a human-readable byte size string (e.g., "50MB") into a
// byte count. Units B through YB are base-1024 and case-insensitive; an
// optional space between number and unit is allowed. A bare number with no
// unit is treated as bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := byteSizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := strings.ToUpper(matches[2])
	if unit == "" {
		return int64(value), nil
	}

	for idx, u := range byteUnits {
		if u == unit {
			return int64(value * math.Pow(unitStep, float64(idx))), nil
		}
	}

	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}

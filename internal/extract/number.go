package extract

import (
	"math"
	"strconv"
	"strings"
)

// ParseMagnitude converts a human-formatted count such as "1,234", "2.5k" or
// "1.2M" into an integer. Anything it cannot read yields 0.
func ParseMagnitude(text string) int {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, ",", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult = 1_000
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "m")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	v := f * mult
	if v >= math.MaxInt64 {
		return 0
	}
	return int(v)
}

package policy

import (
	"fmt"
	"math"
	"strings"
)

const statusWidth = 30

// StatusLine renders current as a marker on a gauge between low and high:
//
//	  0.3055 |------{  0.3020}------------------------| 0.3100
//
// Values outside the range are clamped to the ends. When low == high the
// gauge has no extent and the marker sits at the midpoint.
func StatusLine(low, current, high float64, width int) string {
	if width < 0 {
		width = 0
	}

	pos := width / 2

	if high != low && !math.IsNaN(current) && !math.IsNaN(low) && !math.IsNaN(high) {
		ratio := (current - low) / (high - low)
		ratio = math.Max(0, math.Min(1, ratio))
		pos = int(ratio * float64(width))
	}

	return fmt.Sprintf("%8.4f |%s{%8.4f}%s| %8.4f",
		low, strings.Repeat("-", pos), current, strings.Repeat("-", width-pos), high)
}

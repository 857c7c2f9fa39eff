package analytics

import (
	"fmt"
	"strconv"
)

// FormatCompact renders a count in an abbreviated human form for dashboard
// tiles: 1234567 becomes "1.2M", 3400 becomes "3.4K", smaller values are
// printed as plain integers.
func FormatCompact(value int) string {
	switch {
	case value >= 1_000_000 || value <= -1_000_000:
		return fmt.Sprintf("%.1fM", float64(value)/1_000_000)
	case value >= 1_000 || value <= -1_000:
		return fmt.Sprintf("%.1fK", float64(value)/1_000)
	default:
		return strconv.Itoa(value)
	}
}

// Package format renders numbers and dates as short human-readable strings
// for user-facing metadata messages.
package format

import (
	"fmt"
	"time"
)

// Duration renders a duration in seconds as MM:SS, or HH:MM:SS when it
// reaches a full hour.
func Duration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}

	return fmt.Sprintf("%02d:%02d", m, s)
}

// Count abbreviates large counts: 1_532_000 -> "1.5M", 12_300 -> "12.3K",
// anything under a thousand verbatim.
func Count(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	case n < 0:
		return "0"
	default:
		return fmt.Sprintf("%d", n)
	}
}

// Size renders a byte count using decimal units, two decimals for KB and MB.
func Size(bytes int64) string {
	switch {
	case bytes >= 1_000_000:
		return fmt.Sprintf("%.2f MB", float64(bytes)/1_000_000)
	case bytes >= 1_000:
		return fmt.Sprintf("%.2f KB", float64(bytes)/1_000)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Date converts an upload date in YYYYMMDD form to "02 Jan 2006".
// Unparseable input is returned unchanged.
func Date(yyyymmdd string) string {
	t, err := time.Parse("20060102", yyyymmdd)
	if err != nil {
		return yyyymmdd
	}

	return t.Format("02 Jan 2006")
}

// Truncate cuts a string down to max runes, appending "..." when anything
// was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max]) + "..."
}

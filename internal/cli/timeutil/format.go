// Package timeutil provides time formatting for CLI output.
package timeutil

import (
	"fmt"
	"time"
)

// LocalTimeFormat mirrors the original's ctime(3) output layout
// ("Mon Jan _2 15:04:05 2006", day space-padded), used by query to render
// a lease timestamp.
const LocalTimeFormat = "Mon Jan _2 15:04:05 2006"

// FormatMicros renders a 64-bit microsecond-resolution Unix timestamp the
// way the original's query command does: a ctime-style local time plus the
// microsecond remainder.
func FormatMicros(us uint64) string {
	sec := int64(us / 1_000_000)
	usec := int64(us % 1_000_000)
	t := time.Unix(sec, 0)
	return fmt.Sprintf("%s, %d usec", t.Format(LocalTimeFormat), usec)
}

// Package htutil has helpers shared by the CLI layers.
package htutil

import (
	"strings"
	"time"
)

// TruncateDuration truncates the provided duration to a more human-friendly
// form, depending on its magnitude. Span durations are usually well under a
// second, so sub-millisecond magnitudes keep microsecond precision.
func TruncateDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Hour:
		return d.Truncate(time.Minute)
	case d >= time.Minute:
		return d.Truncate(time.Second)
	case d >= time.Second:
		return d.Truncate(10 * time.Millisecond)
	case d >= 10*time.Millisecond:
		return d.Truncate(100 * time.Microsecond)
	case d >= time.Millisecond:
		return d.Truncate(10 * time.Microsecond)
	default:
		return d.Truncate(time.Microsecond)
	}
}

// HumanizeDuration truncates the duration and returns a human-friendly
// string representation.
func HumanizeDuration(d time.Duration) string {
	dd := TruncateDuration(d)
	ds := dd.String()

	if dd >= time.Hour && strings.HasSuffix(ds, "0s") {
		ds = strings.TrimSuffix(ds, "0s")
	}

	return ds
}

package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRunID mints the identifier a single source run or scheduled job
// execution is tagged with in logs and error reports.
func NewRunID() string {
	return uuid.New().String()
}

// FormatDuration renders a duration for log fields: sub-second values keep
// Go's default form, values under a minute are seconds with two fractional
// digits, and longer ones are minutes or hours with one fractional digit.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.String()
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}

package utils

import (
	"fmt"
	"time"
)

// FormatDate renders t as "Jan 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatRelative renders the age of t relative to now ("just now", "5m ago", "3h ago", "2d ago"),
// falling back to FormatDate after 30 days.
func FormatRelative(t, now time.Time) string {
	diff := now.Sub(t)
	minutes := int(diff / time.Minute)
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%dd ago", days)
	}
	return FormatDate(t)
}

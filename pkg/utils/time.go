package utils

import (
	"time"
)

// UnixToTime converts a Unix timestamp (seconds) to UTC time.Time
func UnixToTime(timestamp int64) time.Time {
	return time.Unix(timestamp, 0).UTC()
}

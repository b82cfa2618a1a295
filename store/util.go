package store

import (
	"strings"
	"time"

	"github.com/pborman/uuid"
)

// TimeLayout is the time of day layout of `Message.Time`, same as the legacy clients expect.
const TimeLayout = "15/04/05"

// FormatTime formats t as the time of day of a message.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// NowMillis converts t to unix milliseconds.
func NowMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// ElapsedSeconds counts whole seconds between two unix millisecond timestamps,
// each truncated to the second before subtracting.
func ElapsedSeconds(nowMillis, thenMillis int64) int64 {
	return nowMillis/1000 - thenMillis/1000
}

func newID() string {
	return strings.ReplaceAll(uuid.New(), "-", "")
}

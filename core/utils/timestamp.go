package utils

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Chat timestamps are epoch seconds with a microsecond fraction ("1700000000.123456").

// ParseTS converts a chat timestamp to fractional epoch seconds.
func ParseTS(ts string) (float64, error) {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	return f, nil
}

// TSTime converts a chat timestamp to a time.Time. Unparseable input yields the zero time.
func TSTime(ts string) time.Time {
	f, err := ParseTS(ts)
	if err != nil {
		return time.Time{}
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(math.Round(frac*1e6))*int64(time.Microsecond))
}

// TimeTS renders t as a chat timestamp.
func TimeTS(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
}

// FormatTS renders a chat timestamp as "2006/01/02 15:04:05" in loc.
func FormatTS(ts string, loc *time.Location) string {
	t := TSTime(ts)
	if t.IsZero() {
		return ts
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006/01/02 15:04:05")
}

// LaterTS returns the later of two chat timestamps. Empty values are ignored.
func LaterTS(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	fa, errA := ParseTS(a)
	fb, errB := ParseTS(b)
	if errA != nil {
		return b
	}
	if errB != nil || fa >= fb {
		return a
	}
	return b
}

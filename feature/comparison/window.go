package comparison

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var afterParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseAfter resolves the start of a sweep window. It accepts a number of days
// back from now, an RFC 3339 time, a 2006-01-02 date or an English phrase such
// as "3 days ago" or "last monday". An empty value yields def.
func ParseAfter(value string, now time.Time, def time.Duration) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now.Add(-def), nil
	}
	if days, err := strconv.Atoi(value); err == nil {
		if days < 0 {
			return time.Time{}, fmt.Errorf("invalid window %q: days must not be negative", value)
		}
		return now.AddDate(0, 0, -days), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, now.Location()); err == nil {
		return t, nil
	}

	r, err := afterParser.Parse(strings.ToLower(value), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid window %q: %w", value, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("invalid window %q: not a date", value)
	}
	if r.Time.After(now) {
		return time.Time{}, fmt.Errorf("invalid window %q: lies in the future", value)
	}
	return r.Time, nil
}

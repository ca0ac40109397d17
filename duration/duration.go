// Package duration parses and formats the human-entered durations used for
// leave requests and strikes.
//
// Months are 30 days and years are 365 days.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ASHU16DEV/StaffManager/models"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// Max is the longest accepted duration.
const Max = year

var units = map[string]time.Duration{
	"s":       time.Second,
	"sec":     time.Second,
	"second":  time.Second,
	"seconds": time.Second,
	"m":       time.Minute,
	"min":     time.Minute,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"h":       time.Hour,
	"hr":      time.Hour,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"d":       day,
	"day":     day,
	"days":    day,
	"w":       week,
	"week":    week,
	"weeks":   week,
	"month":   month,
	"months":  month,
	"y":       year,
	"year":    year,
	"years":   year,
}

var tokenPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([a-z]+)`)

// Kind classifies a parse failure.
type Kind int

// Parse failure kinds.
const (
	InvalidFormat Kind = iota + 1
	InvalidUnit
	OutOfRange
)

// Error is returned by Parse. It matches models.ErrInvalidInput.
type Error struct {
	Kind  Kind
	Input string
	Unit  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidUnit:
		return fmt.Sprintf("invalid duration unit: %s", e.Unit)
	case OutOfRange:
		return "duration must be greater than 0 and at most 1 year"
	default:
		return "invalid duration format, use formats like: 2h, 30m, 5d, 1month"
	}
}

// Is reports whether target is models.ErrInvalidInput.
func (e *Error) Is(target error) bool {
	return target == models.ErrInvalidInput
}

// Parse sums every <number><unit> token in text, e.g. "2d 3h".
func Parse(text string) (time.Duration, error) {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, &Error{Kind: InvalidFormat, Input: text}
	}

	var total float64
	for _, match := range matches {
		unit := strings.ToLower(match[2])
		multiplier, ok := units[unit]
		if !ok {
			return 0, &Error{Kind: InvalidUnit, Input: text, Unit: unit}
		}

		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, &Error{Kind: InvalidFormat, Input: text}
		}
		total += value * float64(multiplier/time.Millisecond)
	}

	// Range check on the float total; the int64 product below would wrap.
	if total <= 0 || total > float64(Max/time.Millisecond) {
		return 0, &Error{Kind: OutOfRange, Input: text}
	}
	d := time.Duration(total) * time.Millisecond
	if d <= 0 {
		return 0, &Error{Kind: OutOfRange, Input: text}
	}
	return d, nil
}

// Format renders d as its largest unit plus one remainder unit, e.g.
// "2 days, 3 hours".
func Format(d time.Duration) string {
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	months := days / 30

	switch {
	case months > 0:
		return pair(months, "month", days%30, "day")
	case days > 0:
		return pair(days, "day", hours%24, "hour")
	case hours > 0:
		return pair(hours, "hour", minutes%60, "minute")
	case minutes > 0:
		return pair(minutes, "minute", seconds%60, "second")
	}
	return plural(seconds, "second")
}

// FormatShort renders d as a single abbreviated unit, e.g. "2d".
func FormatShort(d time.Duration) string {
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	months := days / 30

	switch {
	case months > 0:
		return fmt.Sprintf("%dmo", months)
	case days > 0:
		return fmt.Sprintf("%dd", days)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", seconds)
}

func pair(n int64, unit string, rem int64, remUnit string) string {
	if rem > 0 {
		return plural(n, unit) + ", " + plural(rem, remUnit)
	}
	return plural(n, unit)
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

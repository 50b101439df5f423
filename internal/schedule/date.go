// Package schedule turns human date phrases into the wire dates the platform
// expects for banner and exhibition scheduling windows.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const wireLayout = "2006-01-02"

var (
	wireDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	inSpan    = regexp.MustCompile(`^in (\d+) (day|week|month)s?$`)
	plusDays  = regexp.MustCompile(`^\+(\d+)$`)
	weekdays  = map[string]time.Weekday{}
	shorthand = map[string]func(time.Time) time.Time{
		"today":     func(t time.Time) time.Time { return t },
		"tomorrow":  func(t time.Time) time.Time { return t.AddDate(0, 0, 1) },
		"yesterday": func(t time.Time) time.Time { return t.AddDate(0, 0, -1) },
		"next week": func(t time.Time) time.Time { return t.AddDate(0, 0, 7) },
		"next month": func(t time.Time) time.Time {
			return t.AddDate(0, 1, 0)
		},
		"eow":          func(t time.Time) time.Time { return upcoming(t, time.Friday, false) },
		"end of week":  func(t time.Time) time.Time { return upcoming(t, time.Friday, false) },
		"eom":          lastOfMonth,
		"end of month": lastOfMonth,
	}
)

func init() {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		weekdays[name] = d
		weekdays[name[:3]] = d
	}
}

// Date resolves a phrase against the current clock. Unrecognized input is
// returned untouched so the server can reject it with its own message.
func Date(input string) string {
	return DateFrom(input, time.Now())
}

// DateFrom resolves a phrase against an explicit reference time.
func DateFrom(input string, now time.Time) string {
	phrase := strings.ToLower(strings.TrimSpace(input))

	if wireDate.MatchString(phrase) {
		return phrase
	}
	if fn, ok := shorthand[phrase]; ok {
		return fn(now).Format(wireLayout)
	}
	if day, ok := weekdays[strings.TrimPrefix(phrase, "next ")]; ok {
		skipWeek := strings.HasPrefix(phrase, "next ")
		return upcoming(now, day, skipWeek).Format(wireLayout)
	}
	if m := plusDays.FindStringSubmatch(phrase); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, n).Format(wireLayout)
	}
	if m := inSpan.FindStringSubmatch(phrase); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "day":
			return now.AddDate(0, 0, n).Format(wireLayout)
		case "week":
			return now.AddDate(0, 0, n*7).Format(wireLayout)
		case "month":
			return now.AddDate(0, n, 0).Format(wireLayout)
		}
	}
	return input
}

// ParseDate is the strict form: it fails on phrases Date would pass through.
func ParseDate(input string) (string, error) {
	out := DateFrom(input, time.Now())
	if !wireDate.MatchString(out) {
		return "", fmt.Errorf("unrecognized date %q", input)
	}
	return out, nil
}

// upcoming finds the next occurrence of day strictly after now. With skipWeek
// ("next monday") the coming occurrence is skipped, except when today is
// already that weekday: then both forms mean seven days out.
func upcoming(now time.Time, day time.Weekday, skipWeek bool) time.Time {
	ahead := int(day-now.Weekday()+7) % 7
	if ahead == 0 {
		ahead = 7
	} else if skipWeek {
		ahead += 7
	}
	return now.AddDate(0, 0, ahead)
}

func lastOfMonth(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
}

package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// textualLayouts are tried for dates that spell the month out. These are
// unambiguous, so the format epoch does not apply to them.
var textualLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
}

// parseEventDate parses a raw date cell into a UTC midnight time.
//
// Accepted forms:
//
//   - numeric day/month/year or month/day/year with '/', '.' or '-' as the
//     separator
//   - ISO year-month-day (four-digit first component)
//   - "2 January 2006" and "2 Jan 2006"
//
// The sheet switched from US month/day ordering to day/month ordering on
// the epoch day, so ambiguous numeric dates are read by where they land:
// the day/month reading is used when it falls strictly after the epoch, the
// month/day reading when it falls on or before it. A date whose only
// self-consistent reading lands on the wrong side of the epoch is rejected
// rather than guessed at.
func parseEventDate(raw string, epoch time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("convert: empty date")
	}

	if strings.IndexFunc(s, unicode.IsLetter) >= 0 {
		for _, layout := range textualLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("convert: unrecognized date %q", raw)
	}

	sep := detectSeparator(s)
	if sep == 0 {
		return time.Time{}, fmt.Errorf("convert: unrecognized date %q", raw)
	}
	parts := strings.Split(s, string(sep))
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("convert: unrecognized date %q", raw)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("convert: unrecognized date %q", raw)
		}
		nums[i] = n
	}

	// Four digits first means ISO year-month-day; no epoch logic involved.
	if len(parts[0]) == 4 {
		if t, ok := makeDate(nums[0], nums[1], nums[2]); ok {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("convert: impossible date %q", raw)
	}

	year := expandYear(nums[2], len(parts[2]))

	if t, ok := makeDate(year, nums[1], nums[0]); ok && t.After(epoch) {
		return t, nil
	}
	if t, ok := makeDate(year, nums[0], nums[1]); ok && !t.After(epoch) {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("convert: date %q has no valid reading for its era", raw)
}

// detectSeparator returns the first recognized separator in s, or 0. The
// whole date must then use that one separator consistently or the split
// will not yield three numeric parts.
func detectSeparator(s string) byte {
	if i := strings.IndexAny(s, "/.-"); i >= 0 {
		return s[i]
	}
	return 0
}

// expandYear maps two-digit years into the 2000s. The corpus starts in
// 2021, so there is no ambiguity with the previous century.
func expandYear(y, digits int) int {
	if digits <= 2 {
		return 2000 + y
	}
	return y
}

// makeDate builds a UTC midnight time and reports whether the components
// name a real calendar date. time.Date normalizes overflow (April 31
// becomes May 1), so the components are checked against the result.
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

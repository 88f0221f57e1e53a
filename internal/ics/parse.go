package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "eventconv/internal/log"
)

// vevent is the normalized representation of one VEVENT as read from the
// booking calendar, before recurrence expansion.
type vevent struct {
	UID string

	Summary     string
	Description string
	Location    string
	Organizer   string // ORGANIZER common-name parameter, when present
	URL         string // URL property, when present
	Categories  string // first CATEGORIES value, when present

	Start  time.Time
	AllDay bool

	RawRRule     string
	ExDates      []time.Time
	RecurrenceID *time.Time // set when this VEVENT overrides one instance
}

// parseCalendar parses an ICS payload into events. A malformed VEVENT is
// logged and skipped; only an unreadable calendar is an error.
func parseCalendar(body []byte) ([]vevent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("ics: input is empty")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse calendar: %w", err)
	}

	events := make([]vevent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Warn("skipping malformed calendar event", "err", perr)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (vevent, error) {
	var out vevent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = unescapeText(p.Value)
	}
	if p := ve.GetProperty("URL"); p != nil {
		out.URL = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty("CATEGORIES"); p != nil {
		// CATEGORIES is a list; the first entry is the session type.
		out.Categories = unescapeText(firstListValue(p.Value))
	}
	if p := ve.GetProperty("ORGANIZER"); p != nil {
		if cns, ok := p.ICalParameters["CN"]; ok && len(cns) > 0 {
			out.Organizer = strings.Trim(cns[0], `"`)
		}
	}

	// DTSTART decides the occurrence date, so an event without one is
	// unusable. The library resolves TZID references for us; date-only
	// values do not parse as timestamps and fall back to the raw value.
	start, err := ve.GetStartAt()
	if err != nil {
		p := ve.GetProperty(ical.ComponentPropertyDtStart)
		if p == nil {
			return out, fmt.Errorf("event %s: missing DTSTART", out.UID)
		}
		start, err = parseICSTime(p.Value)
		if err != nil {
			return out, fmt.Errorf("event %s: invalid DTSTART: %w", out.UID, err)
		}
	}
	out.Start = start

	// All-day events carry VALUE=DATE or a bare YYYYMMDD value.
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.AllDay = true
		}
		if !strings.Contains(p.Value, "T") {
			out.AllDay = true
		}
	}

	// Recurrence is kept raw here; expansion happens in expand.go.
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, terr := parseICSTime(part); terr == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, terr := parseICSTime(p.Value); terr == nil {
			out.RecurrenceID = &t
		}
	}

	return out, nil
}

// parseICSTime parses a basic ICS date or date-time value. EXDATE and
// RECURRENCE-ID values come through here without full parameter context;
// the booking calendar writes them in UTC.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, time.Local)
	}
	return time.ParseInLocation("20060102", v, time.Local)
}

// unescapeText undoes RFC 5545 TEXT escaping: \n becomes a newline and
// escaped commas, semicolons and backslashes become themselves.
func unescapeText(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n', 'N':
				b.WriteByte('\n')
			case ',', ';', '\\':
				b.WriteByte(s[i])
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func firstListValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		return v[:i]
	}
	return v
}

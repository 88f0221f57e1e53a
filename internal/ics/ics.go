// Package ics reads an export of the group's booking calendar as an
// alternative input. Calendar occurrences are rendered into the same row
// shape the spreadsheet reader produces, so everything downstream of
// ingestion is shared: the free-slot marker, date classification and field
// policies apply to calendar rows exactly as they do to spreadsheet rows.
//
// Booking conventions: the event summary is the event name ("Free for
// booking" marks an unbooked slot), CATEGORIES is the session type, and the
// description may carry "Speaker:", "Bio:", "Papers:" and "Authors:" lines;
// whatever remains of the description is the abstract. A LOCATION that is a
// URL is the meeting link, otherwise it names the room.
package ics

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"eventconv/internal/convert"
	appLog "eventconv/internal/log"
	"eventconv/internal/model"
)

// DefaultWindowStart is the earliest occurrence considered. The group has
// listed its talks since 2021, so nothing older can be a meeting row.
var DefaultWindowStart = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultHorizonDays bounds how far past the information cutover the
// expansion looks for upcoming slots.
const DefaultHorizonDays = 365

// Options bound recurrence expansion. Zero fields fall back to
// DefaultWindowStart and to the information cutover plus
// DefaultHorizonDays.
type Options struct {
	WindowStart time.Time
	WindowEnd   time.Time
}

func (o *Options) normalize() {
	if o.WindowStart.IsZero() {
		o.WindowStart = DefaultWindowStart
	}
	if o.WindowEnd.IsZero() {
		o.WindowEnd = convert.DefaultInfoCutover.AddDate(0, 0, DefaultHorizonDays)
	}
}

// Load reads the ICS file at path and converts its occurrences into rows.
func Load(path string, opts Options) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ics: open input: %w", err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses a calendar and renders each occurrence inside the window as
// one input row, in chronological order. Rows are numbered from 2, like
// spreadsheet data rows, so diagnostics read the same for both input kinds.
func Read(r io.Reader, opts Options) ([]model.Row, error) {
	opts.normalize()

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ics: read input: %w", err)
	}

	events, err := parseCalendar(body)
	if err != nil {
		return nil, err
	}

	occs := expandEvents(events, opts.WindowStart, opts.WindowEnd)
	sort.SliceStable(occs, func(i, j int) bool {
		return occs[i].start.Before(occs[j].start)
	})

	rows := make([]model.Row, 0, len(occs))
	for i, occ := range occs {
		rows = append(rows, occurrenceRow(occ, i+2))
	}

	appLog.Info("calendar parsed", "events", len(events), "rows", len(rows))
	return rows, nil
}

// occurrenceRow renders one occurrence as an input row. The date is the
// instance's calendar day in the event's own timezone, written year-first:
// calendar dates are not subject to the spreadsheet's day/month era switch,
// and the ISO form is the one numeric form the date parser reads without
// consulting it.
func occurrenceRow(occ occurrence, num int) model.Row {
	ev := occ.ev
	row := model.Row{
		Num:         num,
		Date:        occ.start.Format("2006-01-02"),
		Title:       ev.Summary,
		SessionType: ev.Categories,
	}

	desc := parseDescription(ev.Description)
	row.Presenter = desc.speaker
	if row.Presenter == "" {
		row.Presenter = ev.Organizer
	}
	row.Bio = desc.bio
	row.PaperLinks = desc.papers
	row.Authors = desc.authors
	row.Abstract = desc.abstract

	room, link := splitLocation(ev.Location)
	if link == "" {
		link = meetingLink(ev)
	}
	row.Room = room
	row.ZoomLink = link

	return row
}

// descriptionFields is the structured content of a booking description.
type descriptionFields struct {
	speaker  string
	bio      string
	papers   string
	authors  string
	abstract string
}

// parseDescription pulls the "Key: value" lines the organizers write out of
// a description. Lines that are not one of the known keys become the
// abstract.
func parseDescription(desc string) descriptionFields {
	var out descriptionFields
	var rest []string

	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimSpace(line)
		if key, value, ok := strings.Cut(line, ":"); ok {
			value = strings.TrimSpace(value)
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "speaker", "presenter":
				out.speaker = value
				continue
			case "bio":
				out.bio = value
				continue
			case "papers", "paper", "paper links":
				out.papers = value
				continue
			case "authors":
				out.authors = value
				continue
			}
		}
		if line != "" {
			rest = append(rest, line)
		}
	}

	out.abstract = strings.Join(rest, "\n")
	return out
}

// splitLocation decides whether a LOCATION value names a room or is itself
// the meeting link.
func splitLocation(loc string) (room, link string) {
	loc = strings.TrimSpace(loc)
	lower := strings.ToLower(loc)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return "", loc
	}
	return loc, ""
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// meetingHosts identify links that point at a meeting rather than, say, a
// paper mentioned in the description.
var meetingHosts = []string{"zoom", "meet.google", "teams.microsoft", "webex"}

// meetingLink finds the meeting URL for an event: an explicit URL property
// wins, then the first link on a known meeting platform anywhere in the
// description.
func meetingLink(ev vevent) string {
	if ev.URL != "" {
		return ev.URL
	}
	for _, u := range urlPattern.FindAllString(ev.Description, -1) {
		lower := strings.ToLower(u)
		for _, host := range meetingHosts {
			if strings.Contains(lower, host) {
				return strings.TrimRight(u, ".,;)")
			}
		}
	}
	return ""
}

package ics

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventconv/internal/convert"
	appLog "eventconv/internal/log"
	"eventconv/internal/model"
)

func TestMain(m *testing.M) {
	appLog.SetLevel(appLog.LevelError)
	os.Exit(m.Run())
}

func calendar(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func july2025Window() Options {
	return Options{
		WindowStart: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, time.July, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestReadSingleBookedEvent(t *testing.T) {
	body := calendar(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//booking//EN",
		"BEGIN:VEVENT",
		"UID:ev-1@booking.example",
		"DTSTART:20250724T140000Z",
		"SUMMARY:Building Useful Agents",
		"DESCRIPTION:Speaker: Joseph Boyle\\nBio: Researcher.\\nPapers: https://arxiv.example/abs/1\\nAuthors: Boyle et al.\\nWe discuss agent design.",
		"LOCATION:Ada Lovelace",
		"CATEGORIES:Seminar",
		"URL:https://zoom.example/j/123",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	rows, err := Read(strings.NewReader(body), july2025Window())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, model.Row{
		Num:         2,
		Date:        "2025-07-24",
		Presenter:   "Joseph Boyle",
		Title:       "Building Useful Agents",
		SessionType: "Seminar",
		ZoomLink:    "https://zoom.example/j/123",
		Room:        "Ada Lovelace",
		Abstract:    "We discuss agent design.",
		Bio:         "Researcher.",
		PaperLinks:  "https://arxiv.example/abs/1",
		Authors:     "Boyle et al.",
	}, rows[0])
}

func TestReadExpandsWeeklySlot(t *testing.T) {
	// A weekly slot booked once: COUNT=4 yields July 7, 14, 21 and 28;
	// the EXDATE removes the 21st and the override books the 14th.
	body := calendar(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//booking//EN",
		"BEGIN:VEVENT",
		"UID:slot@booking.example",
		"DTSTART:20250707T140000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"EXDATE:20250721T140000Z",
		"SUMMARY:Free for booking",
		"LOCATION:https://zoom.example/j/9",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:slot@booking.example",
		"RECURRENCE-ID:20250714T140000Z",
		"DTSTART:20250714T140000Z",
		"SUMMARY:Scaling Retrieval",
		"DESCRIPTION:Speaker: Ana Ruiz",
		"LOCATION:https://zoom.example/j/9",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	rows, err := Read(strings.NewReader(body), july2025Window())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "2025-07-07", rows[0].Date)
	assert.Equal(t, "Free for booking", rows[0].Title)
	assert.Equal(t, "https://zoom.example/j/9", rows[0].ZoomLink)

	assert.Equal(t, "2025-07-14", rows[1].Date)
	assert.Equal(t, "Scaling Retrieval", rows[1].Title)
	assert.Equal(t, "Ana Ruiz", rows[1].Presenter)

	assert.Equal(t, "2025-07-28", rows[2].Date)
	assert.Equal(t, "Free for booking", rows[2].Title)

	// Chronological numbering from 2, like spreadsheet data rows.
	assert.Equal(t, []int{2, 3, 4}, []int{rows[0].Num, rows[1].Num, rows[2].Num})
}

func TestReadSkipsBadEventsAndHonorsWindow(t *testing.T) {
	body := calendar(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//booking//EN",
		// No UID: skipped.
		"BEGIN:VEVENT",
		"DTSTART:20250710T140000Z",
		"SUMMARY:Nameless",
		"END:VEVENT",
		// Unreadable RRULE: skipped.
		"BEGIN:VEVENT",
		"UID:bad-rule@booking.example",
		"DTSTART:20250711T140000Z",
		"RRULE:FREQ=BOGUS",
		"SUMMARY:Broken Rule",
		"END:VEVENT",
		// Outside the window: no row.
		"BEGIN:VEVENT",
		"UID:late@booking.example",
		"DTSTART:20250901T140000Z",
		"SUMMARY:Too Late",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:good@booking.example",
		"DTSTART:20250715T140000Z",
		"SUMMARY:Kept",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	rows, err := Read(strings.NewReader(body), july2025Window())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kept", rows[0].Title)
}

func TestReadRejectsEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""), july2025Window())
	assert.Error(t, err)
}

func TestParseDescription(t *testing.T) {
	desc := parseDescription("Speaker: Ana Ruiz\nBio: Fellow.\nPapers: https://a.example/1, https://a.example/2\nAuthors: Ruiz et al.\nFirst abstract line.\nSecond line: with a colon.")

	assert.Equal(t, "Ana Ruiz", desc.speaker)
	assert.Equal(t, "Fellow.", desc.bio)
	assert.Equal(t, "https://a.example/1, https://a.example/2", desc.papers)
	assert.Equal(t, "Ruiz et al.", desc.authors)
	assert.Equal(t, "First abstract line.\nSecond line: with a colon.", desc.abstract)
}

func TestSplitLocation(t *testing.T) {
	room, link := splitLocation("Ada Lovelace")
	assert.Equal(t, "Ada Lovelace", room)
	assert.Empty(t, link)

	room, link = splitLocation("https://zoom.example/j/5")
	assert.Empty(t, room)
	assert.Equal(t, "https://zoom.example/j/5", link)

	room, link = splitLocation("  ")
	assert.Empty(t, room)
	assert.Empty(t, link)
}

func TestMeetingLink(t *testing.T) {
	// The URL property wins outright.
	assert.Equal(t, "https://meet.google.example/abc",
		meetingLink(vevent{URL: "https://meet.google.example/abc"}))

	// A meeting-platform link is picked out of the description even when a
	// paper link comes first, and trailing punctuation is dropped.
	ev := vevent{Description: "Papers: https://arxiv.example/abs/7\nJoin https://zoom.example/j/5."}
	assert.Equal(t, "https://zoom.example/j/5", meetingLink(ev))

	// A lone paper link is not a meeting link.
	assert.Empty(t, meetingLink(vevent{Description: "See https://arxiv.example/abs/7"}))
}

func TestUnescapeText(t *testing.T) {
	assert.Equal(t, "line one\nline two", unescapeText(`line one\nline two`))
	assert.Equal(t, "a, b; c\\d", unescapeText(`a\, b\; c\\d`))
	assert.Equal(t, "plain", unescapeText("plain"))
}

func TestEarlyCalendarDateThroughConversion(t *testing.T) {
	// Calendar dates are year-first on the row, so an occurrence from before
	// the spreadsheet's format switch keeps its day and month.
	body := calendar(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//booking//EN",
		"BEGIN:VEVENT",
		"UID:early@booking.example",
		"DTSTART:20210205T150000Z",
		"SUMMARY:First Meeting",
		"DESCRIPTION:Speaker: Priya Shah",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	rows, err := Read(strings.NewReader(body), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2021-02-05", rows[0].Date)

	res, err := convert.Run(rows, convert.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "05.02.2021", res.Records[0].Date)
}

func TestCalendarRowsThroughConversion(t *testing.T) {
	// Calendar rows go through the same pipeline as spreadsheet rows: the
	// unbooked occurrences of the weekly slot are skipped as free slots
	// and only the booked talk comes out.
	body := calendar(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//booking//EN",
		"BEGIN:VEVENT",
		"UID:slot@booking.example",
		"DTSTART:20250707T140000Z",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"SUMMARY:Free for booking",
		"LOCATION:https://zoom.example/j/9",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:slot@booking.example",
		"RECURRENCE-ID:20250714T140000Z",
		"DTSTART:20250714T140000Z",
		"SUMMARY:Scaling Retrieval",
		"DESCRIPTION:Speaker: Ana Ruiz",
		"CATEGORIES:Seminar",
		"LOCATION:https://zoom.example/j/9",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	rows, err := Read(strings.NewReader(body), july2025Window())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	opts := convert.DefaultOptions()
	opts.InfoCutover = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	res, err := convert.Run(rows, opts)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "14.07.2025", rec.Date)
	assert.Equal(t, "Ana Ruiz", rec.Presenter)
	assert.Equal(t, "Scaling Retrieval", rec.Title)
	assert.Equal(t, model.SessionSeminar, rec.Type)
	assert.Equal(t, "Online (Zoom)", rec.Location)
	assert.Equal(t, 2, res.Stats.FreeSlots)
}

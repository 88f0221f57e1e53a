package convert

import (
	"strings"

	"eventconv/internal/model"
)

// freeSlotMarker is the phrase the organizers put in the presenter or event
// name cell of an unbooked weekly slot.
const freeSlotMarker = "free for booking"

// cleanText collapses interior whitespace runs (including newlines from
// multi-line spreadsheet cells) into single spaces and trims the ends.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isFreeSlot reports whether a row is an unbooked slot: either cell carries
// the booking marker, or presenter and event name are both blank. Expects
// cleaned text.
func isFreeSlot(presenter, title string) bool {
	if presenter == "" && title == "" {
		return true
	}
	return strings.Contains(strings.ToLower(presenter), freeSlotMarker) ||
		strings.Contains(strings.ToLower(title), freeSlotMarker)
}

// splitLinks splits a comma-separated link list, trimming entries and
// dropping empty ones. Returns nil when nothing remains so the field is
// omitted from the JSON. Commas inside a URL are not escaped by the sheet
// and will split it apart; the sheet has never contained such a link.
func splitLinks(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// buildLocation renders the location line for a future event from the room
// and meeting-link cells. A named room means a hybrid meeting at the venue;
// a link alone means online only; neither means the slot is booked but the
// room is still to be announced.
func buildLocation(room, zoom, venue string) string {
	switch {
	case room != "":
		return room + " (" + venue + ") & online"
	case zoom != "":
		return "Online (Zoom)"
	default:
		return "TBA"
	}
}

// applyPolicy fills the policy-governed fields of rec from the raw row.
// Authors always pass through when provided, whatever the policy says.
func applyPolicy(rec *model.Record, row model.Row, pol fieldPolicy, opts Options) {
	if pol.Location {
		rec.Location = buildLocation(cleanText(row.Room), strings.TrimSpace(row.ZoomLink), opts.Venue)
	}
	if pol.Abstract {
		rec.Abstract = cleanText(row.Abstract)
		if rec.Abstract == "" && pol.AbstractTBA {
			rec.Abstract = "TBA"
		}
	}
	if pol.Bio {
		rec.Bio = cleanText(row.Bio)
	}
	if pol.Papers {
		rec.PaperLinks = splitLinks(row.PaperLinks)
	}
	rec.Authors = cleanText(row.Authors)
}

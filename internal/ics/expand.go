package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "eventconv/internal/log"
)

// maxOccurrencesPerEvent caps how many instances a single recurring event
// may contribute, as a guard against runaway rules.
const maxOccurrencesPerEvent = 5000

// occurrence is one concrete instance of an event inside the expansion
// window: the (possibly overridden) event plus the instance start.
type occurrence struct {
	ev    vevent
	start time.Time
}

// expandEvents expands base events and their overrides into occurrences
// within the inclusive [start, end] window. EXDATEs remove instances and
// RECURRENCE-ID overrides replace the matching instance. Events keep their
// input order so the result is deterministic.
func expandEvents(events []vevent, start, end time.Time) []occurrence {
	baseByUID := make(map[string][]vevent)
	overridesByUID := make(map[string][]vevent)
	order := make([]string, 0, len(events))

	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	var out []occurrence
	for _, uid := range order {
		for _, ev := range baseByUID[uid] {
			occs, hitCap := expandEvent(ev, overridesByUID[uid], start, end)
			if hitCap {
				appLog.Warn("recurrence expansion capped", "uid", uid, "cap", maxOccurrencesPerEvent)
			}
			out = append(out, occs...)
		}
	}
	return out
}

func expandEvent(ev vevent, overrides []vevent, start, end time.Time) ([]occurrence, bool) {
	// Single event: one instance, if it falls inside the window.
	if ev.RawRRule == "" {
		if ev.Start.Before(start) || ev.Start.After(end) {
			return nil, false
		}
		return []occurrence{overrideAt(ev, overrides, ev.Start)}, false
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Warn("skipping event with unreadable recurrence rule",
			"uid", ev.UID, "rrule", ev.RawRRule, "err", err)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	times := set.Between(start.In(ev.Start.Location()), end.In(ev.Start.Location()), true)

	hitCap := false
	if len(times) > maxOccurrencesPerEvent {
		times = times[:maxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]occurrence, 0, len(times))
	for _, t := range times {
		out = append(out, overrideAt(ev, overrides, t))
	}
	return out, hitCap
}

// overrideAt returns the occurrence at start, swapping in an override whose
// RECURRENCE-ID matches that instant. An override also carries the moved
// start time, if it moved the instance.
func overrideAt(ev vevent, overrides []vevent, start time.Time) occurrence {
	for _, ov := range overrides {
		if ov.RecurrenceID == nil {
			continue
		}
		if ov.RecurrenceID.In(start.Location()).Equal(start) {
			return occurrence{ev: ov, start: ov.Start}
		}
	}
	return occurrence{ev: ev, start: start}
}

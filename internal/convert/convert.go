package convert

import (
	"errors"
	"sort"
	"time"

	appLog "eventconv/internal/log"
	"eventconv/internal/model"
)

// Default conversion constants. The two dates are facts about the upstream
// spreadsheet and website rather than tunables: the sheet switched from
// month/day to day/month dates on the epoch day, and the site started
// publishing talk details (abstracts, bios, papers) at the cutover.
var (
	DefaultFormatEpoch = time.Date(2022, time.September, 29, 0, 0, 0, 0, time.UTC)
	DefaultInfoCutover = time.Date(2025, time.July, 28, 0, 0, 0, 0, time.UTC)
)

const (
	DefaultVenue      = "Alan Turing Institute"
	DefaultGroupLabel = "Group discussion"
)

// Options control a conversion run. Zero fields fall back to the defaults
// above, so the zero Options value is usable.
type Options struct {
	// FormatEpoch is the boundary for reading ambiguous numeric dates:
	// on or before it month/day/year, strictly after it day/month/year.
	FormatEpoch time.Time

	// InfoCutover divides past events from future ones. Events on or
	// after it carry location and detail fields; earlier events carry
	// only the core fields. Fixed rather than wall-clock so that runs
	// are reproducible.
	InfoCutover time.Time

	// Venue names the physical venue in rendered hybrid locations.
	Venue string

	// GroupLabel is the presenter shown for a journal club without one.
	GroupLabel string
}

func DefaultOptions() Options {
	return Options{
		FormatEpoch: DefaultFormatEpoch,
		InfoCutover: DefaultInfoCutover,
		Venue:       DefaultVenue,
		GroupLabel:  DefaultGroupLabel,
	}
}

func (o *Options) normalize() {
	if o.FormatEpoch.IsZero() {
		o.FormatEpoch = DefaultFormatEpoch
	}
	if o.InfoCutover.IsZero() {
		o.InfoCutover = DefaultInfoCutover
	}
	if o.Venue == "" {
		o.Venue = DefaultVenue
	}
	if o.GroupLabel == "" {
		o.GroupLabel = DefaultGroupLabel
	}
}

// Stats counts what happened to the input rows of one run.
type Stats struct {
	Rows          int // data rows seen
	Converted     int // rows that became records
	FreeSlots     int // unbooked slot rows skipped
	BadDates      int // rows skipped for a missing or unreadable date
	MissingFields int // rows skipped for a missing event name or presenter
	Duplicates    int // records sharing date+presenter+title with an earlier row
}

// Result is the outcome of a run: records sorted newest first, plus the row
// accounting.
type Result struct {
	Records []model.Record
	Stats   Stats
}

// The two empty outcomes are distinct failures: an input with no data rows
// at all, and an input whose rows were all skipped or rejected.
var (
	ErrNoRows    = errors.New("convert: input contains no data rows")
	ErrNoRecords = errors.New("convert: no rows survived conversion")
)

// Run converts raw input rows into output records. Row problems are never
// fatal: each bad row is logged with its row number, counted, and skipped,
// and the run continues. Run fails only when nothing at all could be
// converted.
func Run(rows []model.Row, opts Options) (Result, error) {
	opts.normalize()

	var res Result
	if len(rows) == 0 {
		return res, ErrNoRows
	}
	res.Stats.Rows = len(rows)

	type item struct {
		rec  model.Record
		date time.Time
	}
	items := make([]item, 0, len(rows))
	seen := make(map[string]int) // date|presenter|title -> first row number

	for _, row := range rows {
		presenter := cleanText(row.Presenter)
		title := cleanText(row.Title)

		if isFreeSlot(presenter, title) {
			res.Stats.FreeSlots++
			appLog.Info("skipping unbooked slot", "row", row.Num, "date", cleanText(row.Date))
			continue
		}

		rawDate := cleanText(row.Date)
		if rawDate == "" {
			res.Stats.BadDates++
			appLog.Warn("skipping row without a date", "row", row.Num, "title", title)
			continue
		}
		date, err := parseEventDate(rawDate, opts.FormatEpoch)
		if err != nil {
			res.Stats.BadDates++
			appLog.Warn("skipping row with unreadable date", "row", row.Num, "date", rawDate, "err", err)
			continue
		}

		if title == "" {
			res.Stats.MissingFields++
			appLog.Warn("skipping row without an event name", "row", row.Num, "date", rawDate)
			continue
		}

		st := sessionTypeOf(row.SessionType)
		if presenter == "" {
			if st != model.SessionJournalClub {
				res.Stats.MissingFields++
				appLog.Warn("skipping seminar without a presenter", "row", row.Num, "title", title)
				continue
			}
			presenter = opts.GroupLabel
		}

		rec := model.Record{
			Date:      date.Format(model.DateLayout),
			Presenter: presenter,
			Title:     title,
			Type:      st,
		}
		applyPolicy(&rec, row, policyFor(bucketOf(date, opts.InfoCutover), st), opts)

		key := rec.Date + "|" + presenter + "|" + title
		if first, dup := seen[key]; dup {
			res.Stats.Duplicates++
			appLog.Warn("duplicate event", "row", row.Num, "first_row", first, "date", rec.Date, "title", title)
		} else {
			seen[key] = row.Num
		}

		items = append(items, item{rec: rec, date: date})
		res.Stats.Converted++
	}

	if len(items) == 0 {
		return res, ErrNoRecords
	}

	// Newest first; rows sharing a date keep their input order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].date.After(items[j].date)
	})

	res.Records = make([]model.Record, len(items))
	for i, it := range items {
		res.Records[i] = it.rec
	}
	return res, nil
}

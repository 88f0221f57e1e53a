package model

// SessionType classifies a meeting. The two values are serialized verbatim
// into the output JSON, so they must match what the website's renderer
// expects.
type SessionType string

const (
	SessionSeminar     SessionType = "seminar"
	SessionJournalClub SessionType = "journal_club"
)

// DateLayout is the date format of output records, day first.
const DateLayout = "02.01.2006"

// Row is one meeting row as read from an input source, before any parsing
// or validation. All cells are raw text; absent columns read as "". The CSV
// and ICS readers both produce this shape so the conversion pipeline does
// not care where a row came from.
type Row struct {
	// Num is the spreadsheet-style row number used in diagnostics: the
	// header is row 1, the first data row is row 2. Rows synthesized from
	// an ICS calendar are numbered in occurrence order starting at 2 as
	// well, so messages stay uniform.
	Num int

	Date        string // raw date cell, any of the accepted formats
	Presenter   string
	Title       string // the "Event Name" column
	SessionType string // the "Type of Session" column
	ZoomLink    string
	Room        string
	Abstract    string
	Bio         string // the "Bio for Speaker" column
	PaperLinks  string // comma-separated URLs
	Authors     string
}

// Record is one converted meeting as it appears in the output JSON array.
// Field order here is the field order in the serialized objects. Optional
// fields carry omitempty: which of them are populated depends on the
// record's temporal bucket and session type, so an omitted field is how the
// converter expresses "not applicable", not an accident.
type Record struct {
	Date      string      `json:"date"` // always DateLayout
	Presenter string      `json:"presenter"`
	Title     string      `json:"title"`
	Type      SessionType `json:"type"`

	Location   string   `json:"location,omitempty"`
	Abstract   string   `json:"abstract,omitempty"`
	Bio        string   `json:"presenterBio,omitempty"`
	PaperLinks []string `json:"paper_links,omitempty"`
	Authors    string   `json:"authors,omitempty"`
}

package convert

import (
	"strings"
	"time"

	"eventconv/internal/model"
)

// sessionTypeOf maps the raw "Type of Session" cell onto a session type.
// Seminar, talk and presentation are all seminars; journal clubs and
// reading groups are journal clubs. Anything else, including a blank cell,
// defaults to seminar.
func sessionTypeOf(raw string) model.SessionType {
	switch strings.ToLower(cleanText(raw)) {
	case "journal club", "journal_club", "reading group":
		return model.SessionJournalClub
	default:
		return model.SessionSeminar
	}
}

// bucket is the temporal classification of a record. Events dated strictly
// before the information cutover are past; everything on or after it is
// future.
type bucket int

const (
	bucketPast bucket = iota
	bucketFuture
)

func bucketOf(date, cutover time.Time) bucket {
	if date.Before(cutover) {
		return bucketPast
	}
	return bucketFuture
}

// fieldPolicy says which optional record fields exist for one combination
// of bucket and session type. Authors are not governed here; they pass
// through whenever provided.
type fieldPolicy struct {
	Location    bool
	Abstract    bool // abstract passes through when provided
	AbstractTBA bool // an empty abstract becomes "TBA" instead of being omitted
	Bio         bool
	Papers      bool
}

// policyFor is the single place the bucket/type field table lives. Past
// events carry only the core fields. Future events carry a location and
// paper links; seminars additionally promise an abstract (down to "TBA")
// and may carry a speaker bio, while journal clubs list an abstract only
// when one was written and never a bio.
func policyFor(b bucket, st model.SessionType) fieldPolicy {
	if b == bucketPast {
		return fieldPolicy{}
	}
	if st == model.SessionJournalClub {
		return fieldPolicy{Location: true, Abstract: true, Papers: true}
	}
	return fieldPolicy{Location: true, Abstract: true, AbstractTBA: true, Bio: true, Papers: true}
}

// Package sheet reads the spreadsheet export of meeting rows. It binds
// columns by header name rather than position, so the sheet's maintainers
// can reorder or add columns without breaking the converter.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	appLog "eventconv/internal/log"
	"eventconv/internal/model"
)

// column binds a canonical header name to the Row field it fills.
type column struct {
	name string
	set  func(*model.Row, string)
}

// columns is the canonical header set. Matching is loose: headers are
// lowercased and their whitespace collapsed before comparison, so
// "Event Name", "event name" and "EVENT  NAME" all bind.
var columns = []column{
	{"date", func(r *model.Row, v string) { r.Date = v }},
	{"presenter", func(r *model.Row, v string) { r.Presenter = v }},
	{"event name", func(r *model.Row, v string) { r.Title = v }},
	{"type of session", func(r *model.Row, v string) { r.SessionType = v }},
	{"zoom link", func(r *model.Row, v string) { r.ZoomLink = v }},
	{"room", func(r *model.Row, v string) { r.Room = v }},
	{"abstract", func(r *model.Row, v string) { r.Abstract = v }},
	{"bio for speaker", func(r *model.Row, v string) { r.Bio = v }},
	{"paper links", func(r *model.Row, v string) { r.PaperLinks = v }},
	{"authors", func(r *model.Row, v string) { r.Authors = v }},
}

// required lists the columns the header must contain for the export to be
// usable at all.
var required = []string{"date", "presenter", "event name"}

// Load reads the CSV file at path into rows.
func Load(path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open input: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a CSV export into rows, in input order. Rows keep their
// spreadsheet numbering (header is row 1, first data row is 2) so that
// diagnostics point at the row the maintainer sees. Rows whose cells are
// all blank are dropped silently but still consume their number.
func Read(r io.Reader) ([]model.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("sheet: read input: %w", err)
	}

	// Sheets exported on Windows tend to carry a byte-order mark.
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("sheet: input is empty")
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1 // rows may omit trailing columns

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheet: parse: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("sheet: input is empty")
	}

	setters, err := bindHeader(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]model.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := model.Row{Num: i + 2}
		blank := true
		for j, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
			if j < len(setters) && setters[j] != nil {
				setters[j](&row, cell)
			}
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}

	appLog.Info("sheet parsed", "data_rows", len(rows))
	return rows, nil
}

// bindHeader maps each header cell to the setter for its column. Unknown
// headers are ignored; a header missing any required column aborts the run
// with all the missing names in one message.
func bindHeader(header []string) ([]func(*model.Row, string), error) {
	setters := make([]func(*model.Row, string), len(header))
	found := make(map[string]bool, len(columns))

	for i, cell := range header {
		name := normalizeHeader(cell)
		col, ok := lookupColumn(name)
		if !ok {
			if name != "" {
				appLog.Debug("ignoring unknown column", "header", cell)
			}
			continue
		}
		if found[col.name] {
			appLog.Warn("duplicate column, keeping the first", "header", cell)
			continue
		}
		found[col.name] = true
		setters[i] = col.set
	}

	var missing []string
	for _, name := range required {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("sheet: header is missing required columns: %s", strings.Join(missing, ", "))
	}
	return setters, nil
}

func lookupColumn(name string) (column, bool) {
	for _, c := range columns {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

// normalizeHeader lowercases a header cell and collapses its whitespace so
// matching ignores case and spacing.
func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// sniffDelimiter picks the candidate delimiter that splits the header row
// into the most fields. Comma wins ties, matching the upstream export.
func sniffDelimiter(data []byte) rune {
	best, bestFields := ',', 1
	for _, cand := range []rune{',', ';', '\t'} {
		cr := csv.NewReader(bytes.NewReader(data))
		cr.Comma = cand
		cr.FieldsPerRecord = -1
		header, err := cr.Read()
		if err != nil {
			continue
		}
		if len(header) > bestFields {
			best, bestFields = cand, len(header)
		}
	}
	return best
}

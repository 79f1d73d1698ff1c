package render

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/solatis/rulefold/internal/types"
)

// maxLineSize bounds one JSONL row.
const maxLineSize = 1 << 20

// Row is the document form of one catalog row.
//
//	{"values": {"detector": "WFC", "ccdgain": 2.0}, "file": "x_drk.fits",
//	 "date": "2002-03-01 00:00:00", "comment": "..."}
type Row struct {
	Values  map[string]any `json:"values"`
	File    string         `json:"file"`
	Date    string         `json:"date"`
	Comment string         `json:"comment,omitempty"`
	Source  string         `json:"source,omitempty"`
}

// Record converts the row. fallbackSource names the row in warnings when
// Source is empty.
func (r Row) Record(fallbackSource string) (types.Record, error) {
	if r.File == "" {
		return types.Record{}, fmt.Errorf("%s: file is required", fallbackSource)
	}
	date, err := ParseDate(r.Date)
	if err != nil {
		return types.Record{}, fmt.Errorf("%s: %w", fallbackSource, err)
	}
	vals := make(map[string]string, len(r.Values))
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s, err := scalar(r.Values[k])
		if err != nil {
			return types.Record{}, fmt.Errorf("%s: parameter %s: %w", fallbackSource, k, err)
		}
		vals[k] = s
	}
	source := r.Source
	if source == "" {
		source = fallbackSource
	}
	return types.Record{Values: vals, File: r.File, Comment: r.Comment, Date: date, Source: source}, nil
}

// ReadRecords decodes JSONL catalog rows. Blank lines and lines starting
// with '#' are skipped. Unknown fields are rejected.
func ReadRecords(r io.Reader) ([]types.Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []types.Record
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(text))
		dec.DisallowUnknownFields()
		var row Row
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := row.Record(fmt.Sprintf("line %d", line))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return out, nil
}

// WriteRecords encodes records as JSONL rows, the inverse of ReadRecords.
func WriteRecords(w io.Writer, records []types.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		vals := make(map[string]any, len(rec.Values))
		for k, v := range rec.Values {
			vals[k] = v
		}
		row := Row{
			Values:  vals,
			File:    rec.File,
			Date:    FormatDate(rec.Date),
			Comment: rec.Comment,
			Source:  rec.Source,
		}
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}
	return nil
}

package types

import (
	"sort"
	"strings"
	"time"
)

// AmbiguityMarker flags an entry whose useafter date collides with a
// different file under the same match tuple.
const AmbiguityMarker = "***"

// DateFormat renders useafter dates in keys and reports.
const DateFormat = "2006-01-02 15:04:05"

// FileEntry is one useafter choice: file valid from Date onward.
type FileEntry struct {
	Date    time.Time
	File    string
	Comment string
}

// EntryKey is a FileEntry stripped of its comment; comparable.
type EntryKey struct {
	Date time.Time
	File string
}

// Key returns the comment-free identity of e.
// Dates are normalized to UTC so equal instants compare equal.
func (e FileEntry) Key() EntryKey {
	return EntryKey{Date: e.Date.UTC(), File: e.File}
}

// Ambiguous reports whether the comment carries AmbiguityMarker.
func (e FileEntry) Ambiguous() bool {
	return strings.Contains(e.Comment, AmbiguityMarker)
}

// MarkAmbiguous returns e with AmbiguityMarker prefixed to the comment.
// Already-marked entries are returned unchanged.
func (e FileEntry) MarkAmbiguous() FileEntry {
	if e.Ambiguous() {
		return e
	}
	if e.Comment == "" {
		e.Comment = AmbiguityMarker
	} else {
		e.Comment = AmbiguityMarker + " " + e.Comment
	}
	return e
}

// Less orders entries by (Date, File).
func (e FileEntry) Less(other FileEntry) bool {
	if !e.Date.Equal(other.Date) {
		return e.Date.Before(other.Date)
	}
	return e.File < other.File
}

// String renders the entry key as "date file".
func (k EntryKey) String() string {
	return k.Date.Format(DateFormat) + " " + k.File
}

// SortEntries sorts entries in place by (Date, File).
// Stable so equal keys keep their comment order.
func SortEntries(entries []FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Less(entries[j])
	})
}

// Record is one raw catalog row handed in by a row source.
// Date parsing belongs to the row source; Date is already resolved.
type Record struct {
	Values  map[string]string
	File    string
	Comment string
	Date    time.Time
	Source  string // row identifier used in warnings
}

// Package activity keeps an append-only CSV journal of ledger changes
// made from the command line.
package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileName is the log file inside the data directory.
const FileName = "activity.csv"

// Header is the CSV header of the log file.
var Header = []string{"timestamp", "action", "details", "record_id"}

const (
	colTimestamp = iota
	colAction
	colDetails
	colRecordID
	numFields
)

// Entry is one logged change.
type Entry struct {
	Timestamp time.Time
	Action    string
	Details   string
	RecordID  string
}

func marshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colAction] = e.Action
	row[colDetails] = e.Details
	row[colRecordID] = e.RecordID
	return row
}

func unmarshalEntry(rec []string) (Entry, error) {
	ts, err := time.Parse(time.RFC3339, rec[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", rec[colTimestamp], err)
	}
	return Entry{
		Timestamp: ts,
		Action:    rec[colAction],
		Details:   rec[colDetails],
		RecordID:  rec[colRecordID],
	}, nil
}

// Log appends entries to <dir>/activity.csv.
type Log struct {
	dir string
	now func() time.Time
}

// New returns a Log writing under dir.
func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return filepath.Join(l.dir, FileName)
}

// Record appends one entry stamped with the current time.
func (l *Log) Record(action, details, recordID string) error {
	return l.Append(Entry{Timestamp: l.now(), Action: action, Details: details, RecordID: recordID})
}

// Append writes entries, creating the file and header when needed.
func (l *Log) Append(entries ...Entry) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := l.Path()
	_, statErr := os.Stat(path)
	needsHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(marshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry in file order. A missing file yields no entries.
func (l *Log) Read() ([]Entry, error) {
	f, err := os.Open(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := unmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Last returns at most n entries from the end of entries.
func Last(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}

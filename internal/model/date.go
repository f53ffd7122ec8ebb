package model

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the canonical layout for cash transaction dates.
const DateFormat = "2006-01-02"

var dateLayouts = []string{
	DateFormat,
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// ParseDate parses the date shapes found in bank exports and hand entry.
// The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Package expiry classifies catalog batches by how close they are to their
// expiry date.
package expiry

import (
	"strings"
	"time"
)

// DateLayout is the wire format of manufacture and expiry dates.
const DateLayout = "2006-01-02"

// SoonWindow is how far ahead a batch counts as expiring soon.
const SoonWindow = 30 * 24 * time.Hour

// Status is the expiry classification of a batch.
type Status string

const (
	StatusExpired     Status = "expired"
	StatusExpiresSoon Status = "soon"
	StatusGood        Status = "good"
	StatusUnknown     Status = "unknown"
)

// Text returns the label shown next to a batch in inventory views.
func (s Status) Text() string {
	switch s {
	case StatusExpired:
		return "Expired"
	case StatusExpiresSoon:
		return "Expires Soon"
	case StatusGood:
		return "Good"
	default:
		return "N/A"
	}
}

// Badge returns the CSS badge class used by the inventory views.
func (s Status) Badge() string {
	switch s {
	case StatusExpired:
		return "badge-danger"
	case StatusExpiresSoon:
		return "badge-warning"
	case StatusGood:
		return "badge-success"
	default:
		return "badge-secondary"
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusExpired, StatusExpiresSoon, StatusGood, StatusUnknown:
		return true
	}
	return false
}

// Now returns the current time in UTC, the zone calendar days are taken in.
func Now() time.Time {
	return time.Now().UTC()
}

// Today truncates now to a calendar date in now's location, returned as UTC
// midnight so it compares cleanly with DATE columns.
func Today(now time.Time) time.Time {
	return DateOf(now)
}

// DateOf drops the clock part of t, keeping t's calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsExpired reports whether the expiry date lies strictly before today.
// A batch expiring today is still sellable.
func IsExpired(expiry time.Time, now time.Time) bool {
	return DateOf(expiry).Before(Today(now))
}

// Classify maps an expiry date to a Status. A nil or zero date is Unknown.
func Classify(expiry *time.Time, now time.Time) Status {
	if expiry == nil || expiry.IsZero() {
		return StatusUnknown
	}
	day := DateOf(*expiry)
	today := Today(now)
	switch {
	case day.Before(today):
		return StatusExpired
	case !day.After(today.Add(SoonWindow)):
		return StatusExpiresSoon
	default:
		return StatusGood
	}
}

// ClassifyString parses a YYYY-MM-DD date and classifies it. Empty or
// unparseable input is Unknown.
func ClassifyString(s string, now time.Time) Status {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusUnknown
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return StatusUnknown
	}
	return Classify(&t, now)
}

// Info bundles a status with its display attributes.
type Info struct {
	Key   Status `json:"status_key"`
	Text  string `json:"status_text"`
	Badge string `json:"status_class"`
}

// Describe returns the display attributes for s.
func Describe(s Status) Info {
	return Info{Key: s, Text: s.Text(), Badge: s.Badge()}
}

package timeutil

import (
	"time"
)

// Local is the operating timezone of the mills; defaults to Indian Standard Time
var Local *time.Location

func init() {
	Local = load("Asia/Kolkata", 5*60*60+30*60)
}

func load(name string, fallbackOffset int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// tzdata may be missing in slim containers
		return time.FixedZone(name, fallbackOffset)
	}
	return loc
}

// SetLocation switches the operating timezone. Unknown names keep the current zone.
func SetLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	Local = loc
	return nil
}

// Now returns the current time in the operating timezone
func Now() time.Time {
	return time.Now().In(Local)
}

// Format formats t in the operating timezone
func Format(t time.Time, layout string) string {
	return t.In(Local).Format(layout)
}

// StartOfDay returns midnight of t's day in the operating timezone
func StartOfDay(t time.Time) time.Time {
	l := t.In(Local)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Local)
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)

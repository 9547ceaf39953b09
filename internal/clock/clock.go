// Package clock maps wall-clock time onto scripture coordinates.
package clock

import (
	"fmt"
	"time"
)

// Clock formats.
const (
	Format12 = "12"
	Format24 = "24"
)

// Coordinate is the (chapter, verse) pair derived from time, prior to
// validation against any book.
type Coordinate struct {
	Chapter int
	Verse   int
}

// Reading is the result of mapping a time: either the minute-00 summary
// trigger or a coordinate. Every (hour, minute) maps to exactly one of the
// two; there are no error conditions.
type Reading struct {
	Summary    bool
	Coordinate Coordinate
}

// Map converts the time to a reading under the given clock format.
//
// 12-hour mode: hour 0 -> chapter 12; hours 1-12 -> chapter = hour;
// hours 13-23 -> chapter = hour - 12. 24-hour mode: hour 0 -> chapter 24;
// otherwise chapter = hour. Verse = minute in both modes; minute 00 yields
// the summary trigger, putting the otherwise-idle verse-0 slot to use.
func Map(t time.Time, format string) Reading {
	hour, minute := t.Hour(), t.Minute()

	if minute == 0 {
		return Reading{Summary: true}
	}

	var chapter int
	if format == Format24 {
		chapter = hour
		if chapter == 0 {
			chapter = 24
		}
	} else {
		switch {
		case hour == 0:
			chapter = 12
		case hour <= 12:
			chapter = hour
		default:
			chapter = hour - 12
		}
	}

	return Reading{Coordinate: Coordinate{Chapter: chapter, Verse: minute}}
}

// Display renders the time the way the clock face shows it:
// "03:15 PM" in 12-hour mode, "15:15" in 24-hour mode. Hours are
// zero-padded to keep the rendered width stable.
func Display(t time.Time, format string) string {
	if format == Format24 {
		return t.Format("15:04")
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%02d:%02d %s", hour, t.Minute(), t.Format("PM"))
}

// MinuteSlot returns the minutes elapsed since midnight, the shared
// time bucket used by date-event cycling.
func MinuteSlot(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

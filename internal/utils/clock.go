package utils // clock helpers for Navitas-style 12-hour times

import (
    "fmt"
    "regexp"
    "strconv"
)

// clockRe matches Navitas 12-hour clocks: an hour, optional minutes and
// an A/P marker, e.g. "9A", "615P", "1130A".
var clockRe = regexp.MustCompile(`^(\d{1,2})(\d{2})?([AP])$`)

// ParseLocalClock converts a Navitas 12-hour clock into minutes after
// midnight.  "12A" is midnight (0) and "12P" is noon (720), matching
// airline convention.  The boolean is false when the input is not a
// valid clock, including out-of-range hours such as "13A".
func ParseLocalClock(s string) (int, bool) {
    m := clockRe.FindStringSubmatch(s)
    if m == nil {
        return 0, false
    }
    hour, err := strconv.Atoi(m[1])
    if err != nil || hour < 1 || hour > 12 {
        return 0, false
    }
    min := 0
    if m[2] != "" {
        min, err = strconv.Atoi(m[2])
        if err != nil || min > 59 {
            return 0, false
        }
    }
    // Normalise the 12-hour wrap: 12A -> 0h, 12P -> 12h.
    if hour == 12 {
        hour = 0
    }
    if m[3] == "P" {
        hour += 12
    }
    return hour*60 + min, true
}

// ComputeDurationMin returns the elapsed minutes between a departure
// and arrival clock given an explicit arrival day offset.  Both clocks
// are local; the caller supplies dayOffset when the flight lands on a
// later calendar day.  The boolean is false when either clock is
// invalid or the resulting duration is not positive.
func ComputeDurationMin(depart, arrive string, dayOffset int) (int, bool) {
    d, ok := ParseLocalClock(depart)
    if !ok {
        return 0, false
    }
    a, ok := ParseLocalClock(arrive)
    if !ok {
        return 0, false
    }
    dur := a + dayOffset*24*60 - d
    if dur <= 0 {
        return 0, false
    }
    return dur, true
}

// FormatDuration renders minutes as "2h00" style text.
func FormatDuration(min int) string {
    if min < 0 {
        min = 0
    }
    return fmt.Sprintf("%dh%02d", min/60, min%60)
}

package utils

import (
    "errors"
    "regexp"
    "strings"
)

// NavitasSegment holds the structured fields extracted from one line
// of Navitas flight text.  Clocks stay in their raw 12-hour form; use
// ParseLocalClock / ComputeDurationMin to work with them numerically.
type NavitasSegment struct {
    Airline      string // two-character IATA carrier code
    FlightNumber string // numeric designator, leading zeros stripped
    DateRaw      string // departure date as written, e.g. "12JUN"
    Origin       string // origin IATA code
    Dest         string // destination IATA code
    DepartClock  string // departure clock, e.g. "615P"
    ArriveClock  string // arrival clock
    DayOffset    int    // arrival day offset (0 same day, 1 next day)
}

// navitasRe extracts the fixed fields of a Navitas line.  The format
// tolerates the two common spacings: "UA 934 12JUN LHR SFO 1130A 225P"
// and the compact "UA934 12JUN LHRSFO 1130A 225P +1".
var navitasRe = regexp.MustCompile(
    `^([A-Z][A-Z0-9])\s*0*(\d{1,4})\s+(\d{1,2}[A-Z]{3})\s+([A-Z]{3})\s*([A-Z]{3})\s+(\d{1,4}[AP])\s+(\d{1,4}[AP])(?:\s+\+(\d))?$`)

// ErrNavitasFormat reports text that does not look like a Navitas
// flight line at all.
var ErrNavitasFormat = errors.New("unrecognised navitas line")

// ParseNavitasLine parses one line of Navitas flight text into a
// structured segment.  Input is trimmed and upper-cased first, so
// pasted lowercase text is accepted.  The clocks are validated as
// 12-hour times; a syntactically matching line with an impossible
// clock such as "13A" is rejected.
func ParseNavitasLine(line string) (NavitasSegment, error) {
    norm := strings.ToUpper(strings.TrimSpace(line))
    m := navitasRe.FindStringSubmatch(norm)
    if m == nil {
        return NavitasSegment{}, ErrNavitasFormat
    }
    seg := NavitasSegment{
        Airline:      m[1],
        FlightNumber: m[2],
        DateRaw:      m[3],
        Origin:       m[4],
        Dest:         m[5],
        DepartClock:  m[6],
        ArriveClock:  m[7],
    }
    if m[8] != "" {
        // Regex guarantees a single digit here.
        seg.DayOffset = int(m[8][0] - '0')
    }
    if _, ok := ParseLocalClock(seg.DepartClock); !ok {
        return NavitasSegment{}, errors.New("invalid departure time: " + seg.DepartClock)
    }
    if _, ok := ParseLocalClock(seg.ArriveClock); !ok {
        return NavitasSegment{}, errors.New("invalid arrival time: " + seg.ArriveClock)
    }
    if seg.Origin == seg.Dest {
        return NavitasSegment{}, errors.New("origin and destination are the same")
    }
    return seg, nil
}

package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestParseNavitasLine(t *testing.T) {
    seg, err := ParseNavitasLine("UA 934 12JUN LHR SFO 1130A 225P")
    require.NoError(t, err)
    assert.Equal(t, "UA", seg.Airline)
    assert.Equal(t, "934", seg.FlightNumber)
    assert.Equal(t, "12JUN", seg.DateRaw)
    assert.Equal(t, "LHR", seg.Origin)
    assert.Equal(t, "SFO", seg.Dest)
    assert.Equal(t, "1130A", seg.DepartClock)
    assert.Equal(t, "225P", seg.ArriveClock)
    assert.Equal(t, 0, seg.DayOffset)
}

func TestParseNavitasLineCompact(t *testing.T) {
    // Compact spacing, overnight arrival, lowercase input.
    seg, err := ParseNavitasLine("  ba0178 3SEP jfklhr 615p 635a +1 ")
    require.NoError(t, err)
    assert.Equal(t, "BA", seg.Airline)
    assert.Equal(t, "178", seg.FlightNumber) // leading zero stripped
    assert.Equal(t, "JFK", seg.Origin)
    assert.Equal(t, "LHR", seg.Dest)
    assert.Equal(t, 1, seg.DayOffset)

    dur, ok := ComputeDurationMin(seg.DepartClock, seg.ArriveClock, seg.DayOffset)
    require.True(t, ok)
    assert.Equal(t, "12h20", FormatDuration(dur))
}

func TestParseNavitasLineRejects(t *testing.T) {
    for _, line := range []string{
        "",
        "not a flight",
        "UA 934 12JUN LHR 1130A 225P",       // missing destination
        "UA 934 12JUN LHR SFO 1330A 225P",   // impossible clock
        "UA 934 12JUN SFO SFO 1130A 225P",   // origin == destination
        "U@ 934 12JUN LHR SFO 1130A 225P",   // bad carrier code
    } {
        _, err := ParseNavitasLine(line)
        assert.Error(t, err, "line %q", line)
    }
}

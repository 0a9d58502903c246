package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestParseLocalClock(t *testing.T) {
    cases := []struct {
        in   string
        min  int
        ok   bool
    }{
        {"12A", 0, true},     // midnight
        {"12P", 720, true},   // noon
        {"1A", 60, true},
        {"11P", 1380, true},
        {"615P", 1095, true},
        {"1130A", 690, true},
        {"13A", 0, false}, // out-of-range hour
        {"0A", 0, false},
        {"1275P", 0, false}, // minutes out of range
        {"615", 0, false},   // missing marker
        {"", 0, false},
        {"6:15P", 0, false},
    }
    for _, tc := range cases {
        got, ok := ParseLocalClock(tc.in)
        assert.Equal(t, tc.ok, ok, "input %q", tc.in)
        if tc.ok {
            assert.Equal(t, tc.min, got, "input %q", tc.in)
        }
    }
}

func TestComputeDurationMin(t *testing.T) {
    // Overnight wrap with an explicit day offset.
    d, ok := ComputeDurationMin("11P", "1A", 1)
    assert.True(t, ok)
    assert.Equal(t, 120, d)

    // Same-day flight.
    d, ok = ComputeDurationMin("615P", "835P", 0)
    assert.True(t, ok)
    assert.Equal(t, 140, d)

    // Arrival before departure without an offset is rejected.
    _, ok = ComputeDurationMin("11P", "1A", 0)
    assert.False(t, ok)

    // Invalid clocks are rejected.
    _, ok = ComputeDurationMin("13A", "1A", 1)
    assert.False(t, ok)
}

func TestFormatDuration(t *testing.T) {
    assert.Equal(t, "2h00", FormatDuration(120))
    assert.Equal(t, "0h45", FormatDuration(45))
    assert.Equal(t, "11h05", FormatDuration(665))
    assert.Equal(t, "0h00", FormatDuration(-3))
}

func TestOvernightWrapFormats(t *testing.T) {
    d, ok := ComputeDurationMin("11P", "1A", 1)
    assert.True(t, ok)
    assert.Equal(t, "2h00", FormatDuration(d))
}

package repository

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func doc(id uint64, kind string, daysAgo int) DocumentRecord {
    return DocumentRecord{
        ID:         id,
        Kind:       kind,
        Title:      kind,
        UploadedAt: time.Now().UTC().AddDate(0, 0, -daysAgo),
    }
}

func TestFilterLatestPerKind(t *testing.T) {
    // Newest-first input, as ListByProject returns it.
    docs := []DocumentRecord{
        doc(5, "itinerary", 0),
        doc(4, "visa", 1),
        doc(3, "itinerary", 2),
        doc(2, "insurance", 3),
        doc(1, "visa", 4),
    }
    out := FilterLatestPerKind(docs)

    require.Len(t, out, 3)
    assert.Equal(t, uint64(5), out[0].ID) // newest itinerary
    assert.Equal(t, uint64(4), out[1].ID) // newest visa
    assert.Equal(t, uint64(2), out[2].ID) // only insurance
}

func TestFilterLatestPerKindEmpty(t *testing.T) {
    assert.Empty(t, FilterLatestPerKind(nil))
}

func TestFilterLatestPerKindSingleKind(t *testing.T) {
    docs := []DocumentRecord{doc(3, "visa", 0), doc(2, "visa", 1), doc(1, "visa", 2)}
    out := FilterLatestPerKind(docs)
    require.Len(t, out, 1)
    assert.Equal(t, uint64(3), out[0].ID)
}

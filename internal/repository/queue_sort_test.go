package repository

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func at(min int) *time.Time {
    t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(min) * time.Minute)
    return &t
}

func ids(items []QueueItem) []uint64 {
    out := make([]uint64, len(items))
    for i, it := range items {
        out[i] = it.SelectionID
    }
    return out
}

func TestSortQueueItemsUrgencyFirst(t *testing.T) {
    items := []QueueItem{
        {SelectionID: 1, ProjectID: 1, LegID: 1, SoonestHoldExpiry: at(120)},
        {SelectionID: 2, ProjectID: 2, LegID: 2, SoonestHoldExpiry: at(30)},
        {SelectionID: 3, ProjectID: 3, LegID: 3, SoonestHoldExpiry: nil},
    }
    SortQueueItems(items)
    // Most urgent project first, the hold-less one last.
    assert.Equal(t, []uint64{2, 1, 3}, ids(items))
}

func TestSortQueueItemsClustersByProjectThenLeg(t *testing.T) {
    items := []QueueItem{
        {SelectionID: 1, ProjectID: 1, LegID: 10, SoonestHoldExpiry: at(500)},
        {SelectionID: 2, ProjectID: 2, LegID: 20, SoonestHoldExpiry: at(10)},
        {SelectionID: 3, ProjectID: 1, LegID: 11, SoonestHoldExpiry: at(5)},
        {SelectionID: 4, ProjectID: 2, LegID: 21, SoonestHoldExpiry: at(300)},
    }
    SortQueueItems(items)
    // Project 1 holds the soonest expiry overall (5m via leg 11), so its
    // items cluster first with leg 11 ahead of leg 10; then project 2
    // with leg 20 ahead of leg 21.
    assert.Equal(t, []uint64{3, 1, 2, 4}, ids(items))
}

func TestSortQueueItemsNilExpiryLastWithinLeg(t *testing.T) {
    items := []QueueItem{
        {SelectionID: 1, ProjectID: 1, LegID: 1, SoonestHoldExpiry: nil},
        {SelectionID: 2, ProjectID: 1, LegID: 1, SoonestHoldExpiry: at(60)},
        {SelectionID: 3, ProjectID: 1, LegID: 1, SoonestHoldExpiry: at(15)},
    }
    SortQueueItems(items)
    assert.Equal(t, []uint64{3, 2, 1}, ids(items))
}

func TestSortQueueItemsStableTiebreakByID(t *testing.T) {
    exp := at(45)
    items := []QueueItem{
        {SelectionID: 9, ProjectID: 1, LegID: 1, SoonestHoldExpiry: exp},
        {SelectionID: 4, ProjectID: 1, LegID: 1, SoonestHoldExpiry: exp},
    }
    SortQueueItems(items)
    assert.Equal(t, []uint64{4, 9}, ids(items))
}

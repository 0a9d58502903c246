package handler

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/tourops/flightdesk/internal/repository"
)

func TestQueuedEventDefaultsSeverity(t *testing.T) {
    msg := queuedEvent(9, repository.EventRecord{
        Type:     "selection.chosen",
        ArtistID: 3,
        Title:    "Option chosen",
    })
    assert.Equal(t, uint64(9), msg.EventID)
    assert.Equal(t, "info", msg.Severity) // matches the stored row's default
    assert.NotEmpty(t, msg.OccurredAt)
}

func TestQueuedEventKeepsExplicitSeverity(t *testing.T) {
    actor := uint64(4)
    projectID := uint64(11)
    msg := queuedEvent(1, repository.EventRecord{
        Type:        "tickets.issued",
        Severity:    "warning",
        ArtistID:    3,
        ProjectID:   &projectID,
        ActorUserID: &actor,
        Title:       "Tickets issued",
    })
    assert.Equal(t, "warning", msg.Severity)
    assert.Equal(t, uint64(11), msg.ProjectID)
    assert.Equal(t, uint64(4), msg.ActorID)
    assert.Zero(t, msg.LegID)
}

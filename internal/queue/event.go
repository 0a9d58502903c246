// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationQueuedEvent is published whenever a notification event is
// appended to the in-app log. It carries enough context for downstream
// consumers to log, fan out to external channels, or feed analytics
// without querying the primary database.
type NotificationQueuedEvent struct {
    EventID    uint64 `json:"event_id"`
    Type       string `json:"type"`
    Severity   string `json:"severity"`
    Title      string `json:"title"`
    Body       string `json:"body"`
    ArtistID   uint64 `json:"artist_id,omitempty"`
    ProjectID  uint64 `json:"project_id,omitempty"`
    LegID      uint64 `json:"leg_id,omitempty"`
    ActorID    uint64 `json:"actor_id"`
    OccurredAt string `json:"occurred_at"`
}

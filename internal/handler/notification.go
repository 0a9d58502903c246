package handler

// Notification endpoints and the shared best-effort emitter.  Events
// are append-only; per-user read state lives in a separate table so
// the log itself is never mutated.

import (
    "context"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/queue"
    "github.com/tourops/flightdesk/internal/repository"
    queue_publisher "github.com/tourops/flightdesk/internal/service"
)

// Notifier appends notification events and mirrors them onto the
// message broker.  Both writes are best-effort: a failed insert or
// publish is logged and never surfaced to the request that caused it.
type Notifier struct {
    Events *repository.NotificationRepo
}

// NewNotifier wraps a notification repository.
func NewNotifier(events *repository.NotificationRepo) *Notifier {
    return &Notifier{Events: events}
}

// Emit stores the event and publishes it to RabbitMQ.  Safe to call on
// a nil receiver so handlers under test can skip wiring a notifier.
func (n *Notifier) Emit(ctx context.Context, ev repository.EventRecord) {
    if n == nil || n.Events == nil {
        return
    }
    id, err := n.Events.Insert(ctx, ev)
    if err != nil {
        log.Printf("notifier: insert event failed: %v", err)
        return
    }
    if err := queue_publisher.PublishNotificationQueued(ctx, queuedEvent(id, ev)); err != nil {
        log.Printf("notifier: publish event %d failed: %v", id, err)
    }
}

// queuedEvent builds the broker mirror of a stored event.  Severity is
// normalized the same way the insert normalizes it, so the broker
// message and the stored row always agree.
func queuedEvent(id uint64, ev repository.EventRecord) queue.NotificationQueuedEvent {
    sev := ev.Severity
    if sev == "" {
        sev = "info"
    }
    msg := queue.NotificationQueuedEvent{
        EventID:    id,
        Type:       ev.Type,
        Severity:   sev,
        Title:      ev.Title,
        Body:       ev.Body,
        ArtistID:   ev.ArtistID,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
    if ev.ProjectID != nil {
        msg.ProjectID = *ev.ProjectID
    }
    if ev.LegID != nil {
        msg.LegID = *ev.LegID
    }
    if ev.ActorUserID != nil {
        msg.ActorID = *ev.ActorUserID
    }
    return msg
}

// NotificationHandler serves the in-app notification feed.
type NotificationHandler struct {
    Events   *repository.NotificationRepo
    Notifier *Notifier
}

func NewNotificationHandler(events *repository.NotificationRepo, n *Notifier) *NotificationHandler {
    if events == nil {
        panic("nil repository passed to NewNotificationHandler")
    }
    return &NotificationHandler{Events: events, Notifier: n}
}

type createEventReq struct {
    Type      string `json:"type"`
    Severity  string `json:"severity"`
    ArtistID  uint64 `json:"artist_id"`
    ProjectID uint64 `json:"project_id"`
    LegID     uint64 `json:"leg_id"`
    Title     string `json:"title"`
    Body      string `json:"body"`
}

// Create handles POST /v1/notifications.  Events are immutable once
// written; severity defaults to "info" in the repository.
func (h *NotificationHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createEventReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Type == "" || req.ArtistID == 0 || req.Title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "type, artist_id and title required"})
    }
    ev := repository.EventRecord{
        Type:        req.Type,
        Severity:    req.Severity,
        ArtistID:    req.ArtistID,
        Title:       req.Title,
        Body:        req.Body,
        ActorUserID: &userID,
    }
    if req.ProjectID != 0 {
        ev.ProjectID = &req.ProjectID
    }
    if req.LegID != 0 {
        ev.LegID = &req.LegID
    }
    ctx := c.Request().Context()
    id, err := h.Events.Insert(ctx, ev)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save event"})
    }
    // Mirror onto the broker without re-inserting.
    if h.Notifier != nil {
        if err := queue_publisher.PublishNotificationQueued(ctx, queuedEvent(id, ev)); err != nil {
            log.Printf("notifications: publish event %d failed: %v", id, err)
        }
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// List handles GET /v1/notifications?artist=&type=&limit= and returns
// events newest-first with the caller's read flag.
func (h *NotificationHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    opts := repository.RecentOptions{Type: c.QueryParam("type")}
    if s := c.QueryParam("artist"); s != "" {
        id, err := strconv.ParseUint(s, 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid artist id"})
        }
        opts.ArtistID = id
    }
    if s := c.QueryParam("limit"); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n < 1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
        }
        opts.Limit = n
    }
    items, err := h.Events.ListRecent(c.Request().Context(), userID, opts)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

// UnreadCount handles GET /v1/notifications/unread-count[?artist=ID].
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var artistID uint64
    if s := c.QueryParam("artist"); s != "" {
        artistID, err = strconv.ParseUint(s, 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid artist id"})
        }
    }
    n, err := h.Events.UnreadCount(c.Request().Context(), userID, artistID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count unread"})
    }
    return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

type markReadReq struct {
    EventIDs []uint64 `json:"event_ids"`
}

// MarkRead handles POST /v1/notifications/read.  Marking an already
// read event again is a no-op, as is an empty list.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req markReadReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := h.Events.MarkRead(c.Request().Context(), userID, req.EventIDs); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark read"})
    }
    return c.JSON(http.StatusOK, echo.Map{"marked": len(req.EventIDs)})
}

package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"
)

// NotificationRepo manages the append-only event log and per-user
// read markers.  Events are immutable once inserted; read state is a
// separate join table written idempotently.
type NotificationRepo struct {
    db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the
// given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// EventRecord mirrors the notification_events table.
type EventRecord struct {
    ID          uint64    `json:"id"`
    Type        string    `json:"type"`
    Severity    string    `json:"severity"`
    ArtistID    uint64    `json:"artist_id"`
    ProjectID   *uint64   `json:"project_id,omitempty"`
    LegID       *uint64   `json:"leg_id,omitempty"`
    ActorUserID *uint64   `json:"actor_user_id,omitempty"`
    Title       string    `json:"title"`
    Body        string    `json:"body"`
    IsRead      bool      `json:"is_read"`
    CreatedAt   time.Time `json:"created_at"`
}

// Insert appends an event and returns its ID.  Severity defaults to
// "info" when empty.
func (r *NotificationRepo) Insert(ctx context.Context, ev EventRecord) (uint64, error) {
    if ev.Severity == "" {
        ev.Severity = "info"
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO notification_events (type, severity, artist_id, project_id, leg_id, actor_user_id, title, body)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
        ev.Type, ev.Severity, ev.ArtistID, ev.ProjectID, ev.LegID, ev.ActorUserID, ev.Title, ev.Body)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// UnreadCount counts events with no read marker for the user,
// optionally scoped to one artist.  Pass 0 to count across all
// artists visible to the user.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID, artistID uint64) (int, error) {
    q := `SELECT COUNT(*)
          FROM notification_events e
          LEFT JOIN notification_reads nr ON nr.event_id = e.id AND nr.user_id = ?
          WHERE nr.event_id IS NULL`
    args := []interface{}{userID}
    if artistID != 0 {
        q += ` AND e.artist_id = ?`
        args = append(args, artistID)
    }
    var n int
    err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
    return n, err
}

// MarkRead records read markers for the given events idempotently.
// An empty ID list is a no-op.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID uint64, eventIDs []uint64) error {
    if len(eventIDs) == 0 {
        return nil
    }
    q := `INSERT IGNORE INTO notification_reads (user_id, event_id) VALUES `
    args := make([]interface{}, 0, len(eventIDs)*2)
    ph := make([]string, 0, len(eventIDs))
    for _, id := range eventIDs {
        ph = append(ph, "(?, ?)")
        args = append(args, userID, id)
    }
    _, err := r.db.ExecContext(ctx, q+strings.Join(ph, ","), args...)
    return err
}

// RecentOptions filters the recent-notifications listing.
type RecentOptions struct {
    ArtistID uint64 // 0 = all artists
    Type     string // "" = all types
    Limit    int    // 0 = default 50
}

// ListRecent returns events newest-first with the caller's read flag
// computed from the presence of a matching read row.
func (r *NotificationRepo) ListRecent(ctx context.Context, userID uint64, opts RecentOptions) ([]EventRecord, error) {
    q := `SELECT e.id, e.type, e.severity, e.artist_id, e.project_id, e.leg_id, e.actor_user_id,
                 e.title, e.body, nr.event_id IS NOT NULL, e.created_at
          FROM notification_events e
          LEFT JOIN notification_reads nr ON nr.event_id = e.id AND nr.user_id = ?`
    args := []interface{}{userID}
    var conds []string
    if opts.ArtistID != 0 {
        conds = append(conds, "e.artist_id = ?")
        args = append(args, opts.ArtistID)
    }
    if opts.Type != "" {
        conds = append(conds, "e.type = ?")
        args = append(args, opts.Type)
    }
    if len(conds) > 0 {
        q += " WHERE " + strings.Join(conds, " AND ")
    }
    limit := opts.Limit
    if limit <= 0 || limit > 200 {
        limit = 50
    }
    q += " ORDER BY e.created_at DESC, e.id DESC LIMIT ?"
    args = append(args, limit)

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]EventRecord, 0)
    for rows.Next() {
        var ev EventRecord
        var projectID, legID, actorID sql.NullInt64
        if err := rows.Scan(&ev.ID, &ev.Type, &ev.Severity, &ev.ArtistID, &projectID, &legID, &actorID,
            &ev.Title, &ev.Body, &ev.IsRead, &ev.CreatedAt); err != nil {
            return nil, err
        }
        if projectID.Valid {
            v := uint64(projectID.Int64)
            ev.ProjectID = &v
        }
        if legID.Valid {
            v := uint64(legID.Int64)
            ev.LegID = &v
        }
        if actorID.Valid {
            v := uint64(actorID.Int64)
            ev.ActorUserID = &v
        }
        out = append(out, ev)
    }
    return out, rows.Err()
}

package repository

import (
    "context"
    "database/sql"
    "time"
)

// ChatRepo manages per-artist chat threads and their read high-water
// marks.  Unread counts compare message timestamps against the
// caller's per-artist marker; a user with no marker has read nothing.
type ChatRepo struct {
    db *sql.DB
}

// NewChatRepo returns a new ChatRepo bound to the given database.
func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db} }

// MessageRecord mirrors the chat_messages table joined with the
// sender's name.
type MessageRecord struct {
    ID         uint64    `json:"id"`
    ArtistID   uint64    `json:"artist_id"`
    SenderID   uint64    `json:"sender_id"`
    SenderName string    `json:"sender_name"`
    Body       string    `json:"body"`
    CreatedAt  time.Time `json:"created_at"`
}

// InsertMessage appends a message to an artist's thread.
func (r *ChatRepo) InsertMessage(ctx context.Context, artistID, senderID uint64, body string) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO chat_messages (artist_id, sender_user_id, body) VALUES (?, ?, ?)`,
        artistID, senderID, body)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ListMessages returns a thread's messages oldest-first, capped at
// limit (default 100).
func (r *ChatRepo) ListMessages(ctx context.Context, artistID uint64, limit int) ([]MessageRecord, error) {
    if limit <= 0 || limit > 500 {
        limit = 100
    }
    const q = `SELECT m.id, m.artist_id, m.sender_user_id, u.full_name, m.body, m.created_at
               FROM chat_messages m
               JOIN users u ON u.id = m.sender_user_id
               WHERE m.artist_id = ?
               ORDER BY m.created_at DESC, m.id DESC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, artistID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]MessageRecord, 0)
    for rows.Next() {
        var m MessageRecord
        if err := rows.Scan(&m.ID, &m.ArtistID, &m.SenderID, &m.SenderName, &m.Body, &m.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    // Reverse so the page renders oldest-first.
    for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
        out[i], out[j] = out[j], out[i]
    }
    return out, nil
}

// GlobalUnread counts messages newer than the caller's read marker,
// excluding the caller's own messages.  With artistID 0 it spans every
// thread; otherwise one thread only.
func (r *ChatRepo) GlobalUnread(ctx context.Context, userID, artistID uint64) (int, error) {
    q := `SELECT COUNT(*)
          FROM chat_messages m
          LEFT JOIN chat_reads cr ON cr.artist_id = m.artist_id AND cr.user_id = ?
          WHERE m.sender_user_id <> ?
            AND (cr.last_read_at IS NULL OR m.created_at > cr.last_read_at)`
    args := []interface{}{userID, userID}
    if artistID != 0 {
        q += ` AND m.artist_id = ?`
        args = append(args, artistID)
    }
    var n int
    err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
    return n, err
}

// CountUnread applies the read-marker rule to an in-memory message
// list: a message is unread when it postdates the marker and was not
// sent by the reader.  A nil marker means the reader never opened the
// thread, so everything from others counts.  Pure; mirrors the SQL in
// GlobalUnread for unit testing.
func CountUnread(messages []MessageRecord, marker *time.Time, readerID uint64) int {
    n := 0
    for _, m := range messages {
        if m.SenderID == readerID {
            continue
        }
        if marker == nil || m.CreatedAt.After(*marker) {
            n++
        }
    }
    return n
}

// MarkThreadRead advances the caller's read marker for one artist
// thread to now.  Upsert keeps the call idempotent.
func (r *ChatRepo) MarkThreadRead(ctx context.Context, userID, artistID uint64) error {
    _, err := r.db.ExecContext(ctx,
        `INSERT INTO chat_reads (user_id, artist_id, last_read_at)
         VALUES (?, ?, UTC_TIMESTAMP())
         ON DUPLICATE KEY UPDATE last_read_at = UTC_TIMESTAMP()`,
        userID, artistID)
    return err
}

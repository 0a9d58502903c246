package repository

import (
    "context"
    "database/sql"
    "time"
)

// InviteRepo manages single-use account invitations.  Raw tokens are
// hashed before they reach this layer; lookups are by hash only.
type InviteRepo struct {
    db *sql.DB
}

// NewInviteRepo returns a new InviteRepo bound to the given database.
func NewInviteRepo(db *sql.DB) *InviteRepo { return &InviteRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *InviteRepo) DB() *sql.DB { return r.db }

// InviteRecord mirrors the invites table plus the artist IDs a client
// invite will be assigned on acceptance.
type InviteRecord struct {
    ID         uint64     `json:"id"`
    Email      string     `json:"email"`
    Role       string     `json:"role"`
    InvitedBy  uint64     `json:"invited_by"`
    ArtistIDs  []uint64   `json:"artist_ids,omitempty"`
    ExpiresAt  time.Time  `json:"expires_at"`
    ConsumedAt *time.Time `json:"consumed_at,omitempty"`
    CreatedAt  time.Time  `json:"created_at"`
}

// Create stores a new invite with its artist assignments and returns
// the invite ID.
func (r *InviteRepo) Create(ctx context.Context, tokenHash, email, role string, invitedBy uint64, artistIDs []uint64, expiresAt time.Time) (uint64, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    res, err := tx.ExecContext(ctx,
        `INSERT INTO invites (token_hash, email, role, invited_by, expires_at) VALUES (?, ?, ?, ?, ?)`,
        tokenHash, email, role, invitedBy, expiresAt.UTC())
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    for _, aid := range artistIDs {
        if _, err := tx.ExecContext(ctx,
            `INSERT INTO invite_artists (invite_id, artist_id) VALUES (?, ?)`, id, aid); err != nil {
            return 0, err
        }
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return uint64(id), nil
}

// GetOpenByTokenHash resolves an invite that is neither consumed nor
// expired.  Unknown, consumed and expired tokens all return
// ErrInviteInvalid so callers cannot probe invite state.
func (r *InviteRepo) GetOpenByTokenHash(ctx context.Context, tokenHash string) (InviteRecord, error) {
    var inv InviteRecord
    var consumed sql.NullTime
    err := r.db.QueryRowContext(ctx,
        `SELECT id, email, role, invited_by, expires_at, consumed_at, created_at
         FROM invites WHERE token_hash = ?`, tokenHash).
        Scan(&inv.ID, &inv.Email, &inv.Role, &inv.InvitedBy, &inv.ExpiresAt, &consumed, &inv.CreatedAt)
    if err == sql.ErrNoRows {
        return inv, ErrInviteInvalid
    }
    if err != nil {
        return inv, err
    }
    if consumed.Valid {
        return inv, ErrInviteInvalid
    }
    if time.Now().UTC().After(inv.ExpiresAt) {
        return inv, ErrInviteInvalid
    }
    rows, err := r.db.QueryContext(ctx,
        `SELECT artist_id FROM invite_artists WHERE invite_id = ?`, inv.ID)
    if err != nil {
        return inv, err
    }
    defer rows.Close()
    for rows.Next() {
        var aid uint64
        if err := rows.Scan(&aid); err != nil {
            return inv, err
        }
        inv.ArtistIDs = append(inv.ArtistIDs, aid)
    }
    return inv, rows.Err()
}

// ConsumeTx marks the invite consumed inside the acceptance
// transaction.  A second concurrent acceptance loses the race here:
// zero rows affected means someone else consumed it first.
func (r *InviteRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, inviteID uint64) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE invites SET consumed_at = UTC_TIMESTAMP() WHERE id = ? AND consumed_at IS NULL`,
        inviteID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrInviteInvalid
    }
    return nil
}

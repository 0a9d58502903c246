package repository

import (
    "context"
    "database/sql"
    "time"
)

// ArtistRepo provides access to artists and the client→artist
// assignment table.  Assignments are the scoping mechanism for client
// users: every client-facing query re-checks them before returning
// data, in addition to the role middleware.
type ArtistRepo struct {
    db *sql.DB
}

// NewArtistRepo returns a new ArtistRepo bound to the given database.
func NewArtistRepo(db *sql.DB) *ArtistRepo { return &ArtistRepo{db: db} }

// ArtistRecord mirrors the artists table.
type ArtistRecord struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    CreatedAt time.Time `json:"created_at"`
}

// Create inserts a new artist and returns its ID.
func (r *ArtistRepo) Create(ctx context.Context, name string) (uint64, error) {
    res, err := r.db.ExecContext(ctx, `INSERT INTO artists (name) VALUES (?)`, name)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID loads one artist. Returns ErrNotFound when absent.
func (r *ArtistRepo) GetByID(ctx context.Context, id uint64) (ArtistRecord, error) {
    var a ArtistRecord
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, created_at FROM artists WHERE id = ?`, id).
        Scan(&a.ID, &a.Name, &a.CreatedAt)
    if err == sql.ErrNoRows {
        return a, ErrNotFound
    }
    return a, err
}

// List returns all artists ordered by name.  Employees see the full
// roster; clients should use ListForUser instead.
func (r *ArtistRepo) List(ctx context.Context) ([]ArtistRecord, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM artists ORDER BY name`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]ArtistRecord, 0)
    for rows.Next() {
        var a ArtistRecord
        if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}

// ListForUser returns the artists a client user is assigned to.
func (r *ArtistRepo) ListForUser(ctx context.Context, userID uint64) ([]ArtistRecord, error) {
    const q = `SELECT a.id, a.name, a.created_at
               FROM artists a
               JOIN artist_assignments aa ON aa.artist_id = a.id
               WHERE aa.user_id = ?
               ORDER BY a.name`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]ArtistRecord, 0)
    for rows.Next() {
        var a ArtistRecord
        if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}

// IsAssigned reports whether a client user may access the artist.
func (r *ArtistRepo) IsAssigned(ctx context.Context, userID, artistID uint64) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx,
        `SELECT 1 FROM artist_assignments WHERE user_id = ? AND artist_id = ? LIMIT 1`,
        userID, artistID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// AssignTx links a user to an artist within an existing transaction.
// Duplicate assignments are ignored so invite acceptance stays
// idempotent when retried.
func (r *ArtistRepo) AssignTx(ctx context.Context, tx *sql.Tx, userID, artistID uint64) error {
    _, err := tx.ExecContext(ctx,
        `INSERT IGNORE INTO artist_assignments (user_id, artist_id) VALUES (?, ?)`,
        userID, artistID)
    return err
}

// ArtistForScope resolves whether the caller may act on artistID.
// Employees pass unconditionally, clients must hold an assignment.
func (r *ArtistRepo) ArtistForScope(ctx context.Context, userID uint64, role string, artistID uint64) error {
    if role == "EMPLOYEE" {
        return nil
    }
    ok, err := r.IsAssigned(ctx, userID, artistID)
    if err != nil {
        return err
    }
    if !ok {
        return ErrForbidden
    }
    return nil
}

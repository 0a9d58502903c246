package repository

import (
    "context"
    "database/sql"
    "time"
)

// PassengerRepo provides CRUD operations for touring-party members.
type PassengerRepo struct {
    db *sql.DB
}

// NewPassengerRepo returns a new PassengerRepo bound to the given database.
func NewPassengerRepo(db *sql.DB) *PassengerRepo { return &PassengerRepo{db: db} }

// PassengerRecord mirrors the passengers table.
type PassengerRecord struct {
    ID                uint64    `json:"id"`
    ArtistID          uint64    `json:"artist_id"`
    FullName          string    `json:"full_name"`
    TreatAsIndividual bool      `json:"treat_as_individual"`
    CreatedAt         time.Time `json:"created_at"`
}

// Create inserts a passenger and returns its ID.
func (r *PassengerRepo) Create(ctx context.Context, artistID uint64, fullName string, treatAsIndividual bool) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO passengers (artist_id, full_name, treat_as_individual) VALUES (?, ?, ?)`,
        artistID, fullName, treatAsIndividual)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID loads one passenger. Returns ErrNotFound when absent.
func (r *PassengerRepo) GetByID(ctx context.Context, id uint64) (PassengerRecord, error) {
    var p PassengerRecord
    err := r.db.QueryRowContext(ctx,
        `SELECT id, artist_id, full_name, treat_as_individual, created_at FROM passengers WHERE id = ?`,
        id).Scan(&p.ID, &p.ArtistID, &p.FullName, &p.TreatAsIndividual, &p.CreatedAt)
    if err == sql.ErrNoRows {
        return p, ErrNotFound
    }
    return p, err
}

// ListByArtist returns an artist's touring party ordered by name.
func (r *PassengerRepo) ListByArtist(ctx context.Context, artistID uint64) ([]PassengerRecord, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, artist_id, full_name, treat_as_individual, created_at FROM passengers WHERE artist_id = ? ORDER BY full_name, id`,
        artistID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]PassengerRecord, 0)
    for rows.Next() {
        var p PassengerRecord
        if err := rows.Scan(&p.ID, &p.ArtistID, &p.FullName, &p.TreatAsIndividual, &p.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

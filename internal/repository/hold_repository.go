package repository

import (
    "context"
    "database/sql"
    "time"
)

// HoldRepo records airline holds on flight options.  Expiry is lazy:
// nothing deletes expired rows, readers simply filter on expires_at
// against UTC now, matching how the booking queue treats urgency.
type HoldRepo struct {
    db *sql.DB
}

// NewHoldRepo returns a new HoldRepo bound to the given database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

// HoldRecord mirrors the holds table.
type HoldRecord struct {
    ID          uint64    `json:"id"`
    OptionID    uint64    `json:"option_id"`
    PassengerID uint64    `json:"passenger_id"`
    ExpiresAt   time.Time `json:"expires_at"`
    CreatedAt   time.Time `json:"created_at"`
}

// Create records a hold and returns its ID.
func (r *HoldRepo) Create(ctx context.Context, optionID, passengerID uint64, expiresAt time.Time) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO holds (option_id, passenger_id, expires_at) VALUES (?, ?, ?)`,
        optionID, passengerID, expiresAt.UTC())
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ListOpenByOption returns the option's holds that have not yet
// expired, soonest expiry first.
func (r *HoldRepo) ListOpenByOption(ctx context.Context, optionID uint64) ([]HoldRecord, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, option_id, passenger_id, expires_at, created_at
         FROM holds WHERE option_id = ? AND expires_at > UTC_TIMESTAMP()
         ORDER BY expires_at`, optionID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]HoldRecord, 0)
    for rows.Next() {
        var h HoldRecord
        if err := rows.Scan(&h.ID, &h.OptionID, &h.PassengerID, &h.ExpiresAt, &h.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, h)
    }
    return out, rows.Err()
}

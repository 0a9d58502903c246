package repository

import (
    "context"
    "database/sql"
    "time"
)

// OptionRepo provides access to flight options proposed for a leg.
type OptionRepo struct {
    db *sql.DB
}

// NewOptionRepo returns a new OptionRepo bound to the given database.
func NewOptionRepo(db *sql.DB) *OptionRepo { return &OptionRepo{db: db} }

// OptionRecord mirrors the flight_options table.
type OptionRecord struct {
    ID           uint64    `json:"id"`
    LegID        uint64    `json:"leg_id"`
    Airline      string    `json:"airline"`
    FlightNumber string    `json:"flight_number"`
    DepartClock  string    `json:"depart_clock"`
    ArriveClock  string    `json:"arrive_clock"`
    DayOffset    int       `json:"day_offset"`
    PriceCents   uint64    `json:"price_cents"`
    Currency     string    `json:"currency"`
    NavitasText  *string   `json:"navitas_text,omitempty"`
    CreatedAt    time.Time `json:"created_at"`
}

// Create inserts a flight option and returns its ID.
func (r *OptionRepo) Create(ctx context.Context, rec OptionRecord) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO flight_options (leg_id, airline, flight_number, depart_clock, arrive_clock, day_offset, price_cents, currency, navitas_text)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        rec.LegID, rec.Airline, rec.FlightNumber, rec.DepartClock, rec.ArriveClock,
        rec.DayOffset, rec.PriceCents, rec.Currency, rec.NavitasText)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID loads one option. Returns ErrNotFound when absent.  The
// selection manager reads the price and currency from here at choice
// time to snapshot them onto the selection row.
func (r *OptionRepo) GetByID(ctx context.Context, id uint64) (OptionRecord, error) {
    var o OptionRecord
    var navitas sql.NullString
    err := r.db.QueryRowContext(ctx,
        `SELECT id, leg_id, airline, flight_number, depart_clock, arrive_clock, day_offset, price_cents, currency, navitas_text, created_at
         FROM flight_options WHERE id = ?`, id).
        Scan(&o.ID, &o.LegID, &o.Airline, &o.FlightNumber, &o.DepartClock, &o.ArriveClock,
            &o.DayOffset, &o.PriceCents, &o.Currency, &navitas, &o.CreatedAt)
    if err == sql.ErrNoRows {
        return o, ErrNotFound
    }
    if err != nil {
        return o, err
    }
    if navitas.Valid {
        s := navitas.String
        o.NavitasText = &s
    }
    return o, nil
}

// ListByLeg returns all options for a leg ordered by price.
func (r *OptionRepo) ListByLeg(ctx context.Context, legID uint64) ([]OptionRecord, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, leg_id, airline, flight_number, depart_clock, arrive_clock, day_offset, price_cents, currency, navitas_text, created_at
         FROM flight_options WHERE leg_id = ? ORDER BY price_cents, id`, legID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]OptionRecord, 0)
    for rows.Next() {
        var o OptionRecord
        var navitas sql.NullString
        if err := rows.Scan(&o.ID, &o.LegID, &o.Airline, &o.FlightNumber, &o.DepartClock, &o.ArriveClock,
            &o.DayOffset, &o.PriceCents, &o.Currency, &navitas, &o.CreatedAt); err != nil {
            return nil, err
        }
        if navitas.Valid {
            s := navitas.String
            o.NavitasText = &s
        }
        out = append(out, o)
    }
    return out, rows.Err()
}

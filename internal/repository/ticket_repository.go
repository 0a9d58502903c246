package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"
)

// TicketRepo persists issued tickets.  The whole batch from a
// ticketing dialog is written inside one transaction: either every
// passenger in the batch is recorded or none is, so a failure can
// never leave a half-ticketed batch untracked.
type TicketRepo struct {
    db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// TicketRecord mirrors the tickets table.
type TicketRecord struct {
    ID             uint64    `json:"id"`
    OptionID       uint64    `json:"option_id"`
    LegID          uint64    `json:"leg_id"`
    PassengerID    uint64    `json:"passenger_id"`
    PNR            string    `json:"pnr"`
    PricePaidCents uint64    `json:"price_paid_cents"`
    Currency       string    `json:"currency"`
    TicketedBy     uint64    `json:"ticketed_by"`
    CreatedAt      time.Time `json:"created_at"`
}

// InsertBatchTx inserts every ticket row inside the supplied
// transaction.  The schema's unique keys on (leg_id, passenger_id)
// and (leg_id, pnr) surface duplicates against already-issued tickets
// as ErrConflict; batch-internal duplicates are caught by handler
// validation before any write.
func (r *TicketRepo) InsertBatchTx(ctx context.Context, tx *sql.Tx, tickets []TicketRecord) error {
    for i := range tickets {
        res, err := tx.ExecContext(ctx,
            `INSERT INTO tickets (option_id, leg_id, passenger_id, pnr, price_paid_cents, currency, ticketed_by)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
            tickets[i].OptionID, tickets[i].LegID, tickets[i].PassengerID,
            tickets[i].PNR, tickets[i].PricePaidCents, tickets[i].Currency, tickets[i].TicketedBy)
        if err != nil {
            if strings.Contains(strings.ToLower(err.Error()), "1062") {
                return ErrConflict
            }
            return err
        }
        id, err := res.LastInsertId()
        if err != nil {
            return err
        }
        tickets[i].ID = uint64(id)
    }
    return nil
}

// ListByLeg returns a leg's issued tickets, newest first.
func (r *TicketRepo) ListByLeg(ctx context.Context, legID uint64) ([]TicketRecord, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, option_id, leg_id, passenger_id, pnr, price_paid_cents, currency, ticketed_by, created_at
         FROM tickets WHERE leg_id = ? ORDER BY created_at DESC, id DESC`, legID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]TicketRecord, 0)
    for rows.Next() {
        var t TicketRecord
        if err := rows.Scan(&t.ID, &t.OptionID, &t.LegID, &t.PassengerID, &t.PNR,
            &t.PricePaidCents, &t.Currency, &t.TicketedBy, &t.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}

// HasTicket reports whether the passenger already holds a ticket for
// the leg.
func (r *TicketRepo) HasTicket(ctx context.Context, legID, passengerID uint64) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx,
        `SELECT 1 FROM tickets WHERE leg_id = ? AND passenger_id = ? LIMIT 1`,
        legID, passengerID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

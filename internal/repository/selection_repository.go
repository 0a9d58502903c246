package repository

import (
    "context"
    "database/sql"
    "time"
)

// SelectionRepo records client choices of flight options.  The
// invariant it maintains is at most one active selection per group:
// choosing again deactivates the previous row and inserts a new one
// inside the same transaction.  History rows are never deleted.
type SelectionRepo struct {
    db *sql.DB
}

// NewSelectionRepo returns a new SelectionRepo bound to the given database.
func NewSelectionRepo(db *sql.DB) *SelectionRepo { return &SelectionRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *SelectionRepo) DB() *sql.DB { return r.db }

// SelectionRecord mirrors the selections table.
type SelectionRecord struct {
    ID               uint64    `json:"id"`
    SelectionGroupID uint64    `json:"selection_group_id"`
    OptionID         uint64    `json:"option_id"`
    SelectedBy       uint64    `json:"selected_by"`
    PriceCents       uint64    `json:"price_cents"`
    Currency         string    `json:"currency"`
    IsActive         bool      `json:"is_active"`
    CreatedAt        time.Time `json:"created_at"`
}

// ActiveSelectionDetail is a selection joined with its group and
// option summary, as shown on the leg's selection page.
type ActiveSelectionDetail struct {
    ID           uint64    `json:"id"`
    GroupID      uint64    `json:"group_id"`
    GroupType    string    `json:"group_type"`
    GroupLabel   string    `json:"group_label"`
    OptionID     uint64    `json:"option_id"`
    Airline      string    `json:"airline"`
    FlightNumber string    `json:"flight_number"`
    PriceCents   uint64    `json:"price_cents"`
    Currency     string    `json:"currency"`
    SelectedAt   time.Time `json:"selected_at"`
}

// DeactivateActiveTx flips the group's current active selection (if
// any) to inactive.  Returns the number of rows affected.
func (r *SelectionRepo) DeactivateActiveTx(ctx context.Context, tx *sql.Tx, groupID uint64) (int64, error) {
    res, err := tx.ExecContext(ctx,
        `UPDATE selections SET is_active = 0 WHERE selection_group_id = ? AND is_active = 1`,
        groupID)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// InsertActiveTx inserts the group's new active selection and
// populates the generated ID on the record.
func (r *SelectionRepo) InsertActiveTx(ctx context.Context, tx *sql.Tx, rec *SelectionRecord) error {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO selections (selection_group_id, option_id, selected_by, price_cents, currency, is_active)
         VALUES (?, ?, ?, ?, ?, 1)`,
        rec.SelectionGroupID, rec.OptionID, rec.SelectedBy, rec.PriceCents, rec.Currency)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rec.ID = uint64(id)
    rec.IsActive = true
    return nil
}

// GetActiveByGroup returns the group's current active selection, or
// ErrNotFound when the group has not chosen yet.
func (r *SelectionRepo) GetActiveByGroup(ctx context.Context, groupID uint64) (SelectionRecord, error) {
    var s SelectionRecord
    err := r.db.QueryRowContext(ctx,
        `SELECT id, selection_group_id, option_id, selected_by, price_cents, currency, is_active, created_at
         FROM selections WHERE selection_group_id = ? AND is_active = 1 LIMIT 1`, groupID).
        Scan(&s.ID, &s.SelectionGroupID, &s.OptionID, &s.SelectedBy, &s.PriceCents, &s.Currency, &s.IsActive, &s.CreatedAt)
    if err == sql.ErrNoRows {
        return s, ErrNotFound
    }
    return s, err
}

// ListActiveByLeg returns every active selection on a leg joined with
// group and option context, ordered by group.
func (r *SelectionRepo) ListActiveByLeg(ctx context.Context, legID uint64) ([]ActiveSelectionDetail, error) {
    const q = `SELECT s.id, sg.id, sg.group_type, sg.label,
                      o.id, o.airline, o.flight_number,
                      s.price_cents, s.currency, s.created_at
               FROM selections s
               JOIN selection_groups sg ON sg.id = s.selection_group_id
               JOIN flight_options o ON o.id = s.option_id
               WHERE sg.leg_id = ? AND s.is_active = 1
               ORDER BY sg.id`
    rows, err := r.db.QueryContext(ctx, q, legID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]ActiveSelectionDetail, 0)
    for rows.Next() {
        var d ActiveSelectionDetail
        if err := rows.Scan(&d.ID, &d.GroupID, &d.GroupType, &d.GroupLabel,
            &d.OptionID, &d.Airline, &d.FlightNumber,
            &d.PriceCents, &d.Currency, &d.SelectedAt); err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// GroupCoverage reports, per GROUP-type selection group on the leg,
// whether an active selection exists.  Used by the idempotent confirm
// operation: confirming is just verifying coverage, so repeat calls
// have no side effects.
type GroupCoverage struct {
    GroupID   uint64 `json:"group_id"`
    Label     string `json:"label"`
    HasActive bool   `json:"has_active"`
}

// ListGroupCoverage returns coverage rows for every pooled group on
// the leg.
func (r *SelectionRepo) ListGroupCoverage(ctx context.Context, legID uint64) ([]GroupCoverage, error) {
    const q = `SELECT sg.id, sg.label,
                      EXISTS(SELECT 1 FROM selections s WHERE s.selection_group_id = sg.id AND s.is_active = 1)
               FROM selection_groups sg
               WHERE sg.leg_id = ? AND sg.group_type = 'GROUP'
               ORDER BY sg.id`
    rows, err := r.db.QueryContext(ctx, q, legID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]GroupCoverage, 0)
    for rows.Next() {
        var g GroupCoverage
        if err := rows.Scan(&g.GroupID, &g.Label, &g.HasActive); err != nil {
            return nil, err
        }
        out = append(out, g)
    }
    return out, rows.Err()
}

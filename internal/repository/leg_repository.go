package repository

import (
    "context"
    "database/sql"
    "time"
)

// LegRepo provides access to legs and passenger-leg assignments.  The
// assignment listing carries each passenger's treat_as_individual
// flag because the selection-group seeder partitions on it.
type LegRepo struct {
    db *sql.DB
}

// NewLegRepo returns a new LegRepo bound to the given database.
func NewLegRepo(db *sql.DB) *LegRepo { return &LegRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *LegRepo) DB() *sql.DB { return r.db }

// LegRecord mirrors the legs table joined with project/artist context.
type LegRecord struct {
    ID         uint64    `json:"id"`
    ProjectID  uint64    `json:"project_id"`
    ArtistID   uint64    `json:"artist_id"`
    Label      string    `json:"label"`
    OriginIATA string    `json:"origin_iata"`
    DestIATA   string    `json:"dest_iata"`
    DepartDate string    `json:"depart_date"`
    CreatedAt  time.Time `json:"created_at"`
}

// AssignmentRecord is one passenger assigned to a leg, with the
// partitioning flag the seeder needs.
type AssignmentRecord struct {
    PassengerID       uint64 `json:"passenger_id"`
    FullName          string `json:"full_name"`
    TreatAsIndividual bool   `json:"treat_as_individual"`
}

// Create inserts a leg and returns its ID.
func (r *LegRepo) Create(ctx context.Context, projectID uint64, label, origin, dest, departDate string) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO legs (project_id, label, origin_iata, dest_iata, depart_date) VALUES (?, ?, ?, ?, ?)`,
        projectID, label, origin, dest, departDate)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID loads a leg together with its project's artist so callers
// can scope-check in one read. Returns ErrNotFound when absent.
func (r *LegRepo) GetByID(ctx context.Context, id uint64) (LegRecord, error) {
    const q = `SELECT l.id, l.project_id, p.artist_id, l.label, l.origin_iata, l.dest_iata, l.depart_date, l.created_at
               FROM legs l
               JOIN projects p ON p.id = l.project_id
               WHERE l.id = ?`
    var leg LegRecord
    err := r.db.QueryRowContext(ctx, q, id).
        Scan(&leg.ID, &leg.ProjectID, &leg.ArtistID, &leg.Label, &leg.OriginIATA, &leg.DestIATA, &leg.DepartDate, &leg.CreatedAt)
    if err == sql.ErrNoRows {
        return leg, ErrNotFound
    }
    return leg, err
}

// ListByProject returns a project's legs ordered by travel date.
func (r *LegRepo) ListByProject(ctx context.Context, projectID uint64) ([]LegRecord, error) {
    const q = `SELECT l.id, l.project_id, p.artist_id, l.label, l.origin_iata, l.dest_iata, l.depart_date, l.created_at
               FROM legs l
               JOIN projects p ON p.id = l.project_id
               WHERE l.project_id = ?
               ORDER BY l.depart_date, l.id`
    rows, err := r.db.QueryContext(ctx, q, projectID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]LegRecord, 0)
    for rows.Next() {
        var leg LegRecord
        if err := rows.Scan(&leg.ID, &leg.ProjectID, &leg.ArtistID, &leg.Label, &leg.OriginIATA, &leg.DestIATA, &leg.DepartDate, &leg.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, leg)
    }
    return out, rows.Err()
}

// AssignPassenger adds a passenger to a leg. Duplicate assignments
// return ErrConflict.
func (r *LegRepo) AssignPassenger(ctx context.Context, legID, passengerID uint64) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT IGNORE INTO leg_passengers (leg_id, passenger_id) VALUES (?, ?)`,
        legID, passengerID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }
    return nil
}

// ListAssignments returns all passengers assigned to a leg with their
// partitioning flag, ordered by name for stable group membership.
func (r *LegRepo) ListAssignments(ctx context.Context, legID uint64) ([]AssignmentRecord, error) {
    const q = `SELECT pa.id, pa.full_name, pa.treat_as_individual
               FROM leg_passengers lp
               JOIN passengers pa ON pa.id = lp.passenger_id
               WHERE lp.leg_id = ?
               ORDER BY pa.full_name, pa.id`
    rows, err := r.db.QueryContext(ctx, q, legID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]AssignmentRecord, 0)
    for rows.Next() {
        var a AssignmentRecord
        if err := rows.Scan(&a.PassengerID, &a.FullName, &a.TreatAsIndividual); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}

// CountAssignments returns the number of passengers assigned to a leg.
func (r *LegRepo) CountAssignments(ctx context.Context, legID uint64) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM leg_passengers WHERE leg_id = ?`, legID).Scan(&n)
    return n, err
}

package repository

import (
    "context"
    "database/sql"
    "fmt"
    "time"
)

// SelectionGroupRepo manages the decision units a leg's passengers are
// partitioned into.  Groups are never edited in place: re-seeding a
// leg deletes every group and inserts the freshly computed set inside
// one transaction, so a leg is never left half-partitioned.
type SelectionGroupRepo struct {
    db *sql.DB
}

// NewSelectionGroupRepo returns a new SelectionGroupRepo bound to the
// given database.
func NewSelectionGroupRepo(db *sql.DB) *SelectionGroupRepo { return &SelectionGroupRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *SelectionGroupRepo) DB() *sql.DB { return r.db }

// GroupRecord mirrors the selection_groups table plus member IDs.
type GroupRecord struct {
    ID           uint64    `json:"id"`
    LegID        uint64    `json:"leg_id"`
    GroupType    string    `json:"group_type"`
    Label        string    `json:"label"`
    PassengerIDs []uint64  `json:"passenger_ids"`
    CreatedAt    time.Time `json:"created_at"`
}

// SeedGroup is one group computed by the partitioner, before it has a
// database identity.
type SeedGroup struct {
    GroupType    string
    Label        string
    PassengerIDs []uint64
}

// SeedCounts summarises a partition for the seeding response.
type SeedCounts struct {
    Individuals     int `json:"individuals"`
    Grouped         int `json:"grouped"`
    TotalPassengers int `json:"total_passengers"`
}

// PartitionAssignments splits a leg's passenger assignments into seed
// groups: every passenger flagged treat_as_individual becomes a
// one-member INDIVIDUAL group, and all remaining passengers together
// form at most one GROUP entry.  Assignment order is preserved, so
// callers that load assignments in a stable order get deterministic
// groups.  The function is pure; it performs no I/O.
func PartitionAssignments(leg LegRecord, assignments []AssignmentRecord) ([]SeedGroup, SeedCounts) {
    groups := make([]SeedGroup, 0, len(assignments))
    var pooled []uint64
    counts := SeedCounts{TotalPassengers: len(assignments)}
    for _, a := range assignments {
        if a.TreatAsIndividual {
            groups = append(groups, SeedGroup{
                GroupType:    "INDIVIDUAL",
                Label:        fmt.Sprintf("%s — %s → %s", a.FullName, leg.OriginIATA, leg.DestIATA),
                PassengerIDs: []uint64{a.PassengerID},
            })
            counts.Individuals++
            continue
        }
        pooled = append(pooled, a.PassengerID)
    }
    if len(pooled) > 0 {
        label := leg.Label
        if label == "" {
            label = fmt.Sprintf("%s → %s", leg.OriginIATA, leg.DestIATA)
        }
        groups = append(groups, SeedGroup{
            GroupType:    "GROUP",
            Label:        fmt.Sprintf("%s — %d passengers", label, len(pooled)),
            PassengerIDs: pooled,
        })
        counts.Grouped = 1
    }
    return groups, counts
}

// ReplaceForLegTx deletes every selection group for the leg and bulk
// inserts the supplied seed groups with their members.  Selections
// referencing the removed groups are cascade-deleted by the schema;
// the leg starts its decision process over.  The caller owns the
// transaction.
func (r *SelectionGroupRepo) ReplaceForLegTx(ctx context.Context, tx *sql.Tx, legID uint64, groups []SeedGroup) error {
    if _, err := tx.ExecContext(ctx, `DELETE FROM selection_groups WHERE leg_id = ?`, legID); err != nil {
        return err
    }
    for _, g := range groups {
        res, err := tx.ExecContext(ctx,
            `INSERT INTO selection_groups (leg_id, group_type, label) VALUES (?, ?, ?)`,
            legID, g.GroupType, g.Label)
        if err != nil {
            return err
        }
        gid, err := res.LastInsertId()
        if err != nil {
            return err
        }
        for pos, pid := range g.PassengerIDs {
            if _, err := tx.ExecContext(ctx,
                `INSERT INTO selection_group_passengers (group_id, passenger_id, position) VALUES (?, ?, ?)`,
                gid, pid, pos); err != nil {
                return err
            }
        }
    }
    return nil
}

// GetByID loads one group with its member passenger IDs. Returns
// ErrNotFound when absent.
func (r *SelectionGroupRepo) GetByID(ctx context.Context, id uint64) (GroupRecord, error) {
    var g GroupRecord
    err := r.db.QueryRowContext(ctx,
        `SELECT id, leg_id, group_type, label, created_at FROM selection_groups WHERE id = ?`, id).
        Scan(&g.ID, &g.LegID, &g.GroupType, &g.Label, &g.CreatedAt)
    if err == sql.ErrNoRows {
        return g, ErrNotFound
    }
    if err != nil {
        return g, err
    }
    rows, err := r.db.QueryContext(ctx,
        `SELECT passenger_id FROM selection_group_passengers WHERE group_id = ? ORDER BY position`, id)
    if err != nil {
        return g, err
    }
    defer rows.Close()
    for rows.Next() {
        var pid uint64
        if err := rows.Scan(&pid); err != nil {
            return g, err
        }
        g.PassengerIDs = append(g.PassengerIDs, pid)
    }
    return g, rows.Err()
}

// ListByLeg returns a leg's groups with members, individuals first in
// creation order.
func (r *SelectionGroupRepo) ListByLeg(ctx context.Context, legID uint64) ([]GroupRecord, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, leg_id, group_type, label, created_at FROM selection_groups WHERE leg_id = ? ORDER BY id`, legID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]GroupRecord, 0)
    index := make(map[uint64]int)
    for rows.Next() {
        var g GroupRecord
        if err := rows.Scan(&g.ID, &g.LegID, &g.GroupType, &g.Label, &g.CreatedAt); err != nil {
            return nil, err
        }
        index[g.ID] = len(out)
        out = append(out, g)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(out) == 0 {
        return out, nil
    }
    const memberQ = `SELECT sgp.group_id, sgp.passenger_id
                     FROM selection_group_passengers sgp
                     JOIN selection_groups sg ON sg.id = sgp.group_id
                     WHERE sg.leg_id = ?
                     ORDER BY sgp.group_id, sgp.position`
    mrows, err := r.db.QueryContext(ctx, memberQ, legID)
    if err != nil {
        return nil, err
    }
    defer mrows.Close()
    for mrows.Next() {
        var gid, pid uint64
        if err := mrows.Scan(&gid, &pid); err != nil {
            return nil, err
        }
        if i, ok := index[gid]; ok {
            out[i].PassengerIDs = append(out[i].PassengerIDs, pid)
        }
    }
    return out, mrows.Err()
}

package repository

import (
    "context"
    "database/sql"
    "time"
)

// ProjectRepo provides CRUD operations for projects (tours) and their
// budgets.  A budget row is created together with its project so the
// ticketing path can always assume one exists.
type ProjectRepo struct {
    db *sql.DB
}

// NewProjectRepo returns a new ProjectRepo bound to the given database.
func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span repositories.
func (r *ProjectRepo) DB() *sql.DB { return r.db }

// ProjectRecord mirrors the projects table joined with the artist name.
type ProjectRecord struct {
    ID         uint64    `json:"id"`
    ArtistID   uint64    `json:"artist_id"`
    ArtistName string    `json:"artist_name"`
    Name       string    `json:"name"`
    Status     string    `json:"status"`
    CreatedAt  time.Time `json:"created_at"`
}

// BudgetRecord mirrors the budgets table.
type BudgetRecord struct {
    ProjectID  uint64    `json:"project_id"`
    Currency   string    `json:"currency"`
    TotalCents uint64    `json:"total_cents"`
    SpentCents uint64    `json:"spent_cents"`
    UpdatedAt  time.Time `json:"updated_at"`
}

// Create inserts a project and its zeroed budget row in one
// transaction and returns the project ID.
func (r *ProjectRepo) Create(ctx context.Context, artistID uint64, name, currency string, budgetTotalCents uint64) (uint64, error) {
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
        `INSERT INTO projects (artist_id, name, status) VALUES (?, ?, 'ACTIVE')`,
        artistID, name)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    if _, err := tx.ExecContext(ctx,
        `INSERT INTO budgets (project_id, currency, total_cents, spent_cents) VALUES (?, ?, ?, 0)`,
        id, currency, budgetTotalCents); err != nil {
        return 0, err
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return uint64(id), nil
}

// GetByID loads one project with its artist name. Returns ErrNotFound
// when absent.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (ProjectRecord, error) {
    const q = `SELECT p.id, p.artist_id, a.name, p.name, p.status, p.created_at
               FROM projects p
               JOIN artists a ON a.id = p.artist_id
               WHERE p.id = ?`
    var p ProjectRecord
    err := r.db.QueryRowContext(ctx, q, id).
        Scan(&p.ID, &p.ArtistID, &p.ArtistName, &p.Name, &p.Status, &p.CreatedAt)
    if err == sql.ErrNoRows {
        return p, ErrNotFound
    }
    return p, err
}

// ListForUser returns projects visible to the caller: every project
// for employees, assigned artists' projects for clients.
func (r *ProjectRepo) ListForUser(ctx context.Context, userID uint64, role string) ([]ProjectRecord, error) {
    q := `SELECT p.id, p.artist_id, a.name, p.name, p.status, p.created_at
          FROM projects p
          JOIN artists a ON a.id = p.artist_id`
    args := []interface{}{}
    if role != "EMPLOYEE" {
        q += ` JOIN artist_assignments aa ON aa.artist_id = p.artist_id AND aa.user_id = ?`
        args = append(args, userID)
    }
    q += ` ORDER BY p.created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]ProjectRecord, 0)
    for rows.Next() {
        var p ProjectRecord
        if err := rows.Scan(&p.ID, &p.ArtistID, &p.ArtistName, &p.Name, &p.Status, &p.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

// GetBudget loads a project's budget. Returns ErrNotFound when the
// project has no budget row.
func (r *ProjectRepo) GetBudget(ctx context.Context, projectID uint64) (BudgetRecord, error) {
    var b BudgetRecord
    err := r.db.QueryRowContext(ctx,
        `SELECT project_id, currency, total_cents, spent_cents, updated_at FROM budgets WHERE project_id = ?`,
        projectID).Scan(&b.ProjectID, &b.Currency, &b.TotalCents, &b.SpentCents, &b.UpdatedAt)
    if err == sql.ErrNoRows {
        return b, ErrNotFound
    }
    return b, err
}

// AddSpendTx advances the committed spend for a project inside an
// existing transaction.  Called from the ticketing batch so spend and
// tickets move together.
func (r *ProjectRepo) AddSpendTx(ctx context.Context, tx *sql.Tx, projectID, amountCents uint64) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE budgets SET spent_cents = spent_cents + ? WHERE project_id = ?`,
        amountCents, projectID)
    return err
}

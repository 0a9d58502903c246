package repository

import (
    "context"
    "database/sql"
    "time"
)

// DocumentRepo stores versioned metadata for PDFs kept in object
// storage.  The table retains every uploaded version; the client-view
// rule (newest per kind only) is applied in application code via
// FilterLatestPerKind, not in SQL.
type DocumentRepo struct {
    db *sql.DB
}

// NewDocumentRepo returns a new DocumentRepo bound to the given database.
func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

// DocumentRecord mirrors the tour_documents table.
type DocumentRecord struct {
    ID          uint64    `json:"id"`
    ProjectID   uint64    `json:"project_id"`
    LegID       *uint64   `json:"leg_id,omitempty"`
    PassengerID *uint64   `json:"passenger_id,omitempty"`
    Kind        string    `json:"kind"`
    Title       string    `json:"title"`
    FilePath    string    `json:"file_path"`
    UploadedBy  uint64    `json:"uploaded_by"`
    UploadedAt  time.Time `json:"uploaded_at"`
}

// Insert stores metadata for a freshly uploaded object and returns the
// row ID.
func (r *DocumentRepo) Insert(ctx context.Context, rec DocumentRecord) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO tour_documents (project_id, leg_id, passenger_id, kind, title, file_path, uploaded_by)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
        rec.ProjectID, rec.LegID, rec.PassengerID, rec.Kind, rec.Title, rec.FilePath, rec.UploadedBy)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID loads one document row. Returns ErrNotFound when absent.
func (r *DocumentRepo) GetByID(ctx context.Context, id uint64) (DocumentRecord, error) {
    var d DocumentRecord
    var legID, passengerID sql.NullInt64
    err := r.db.QueryRowContext(ctx,
        `SELECT id, project_id, leg_id, passenger_id, kind, title, file_path, uploaded_by, uploaded_at
         FROM tour_documents WHERE id = ?`, id).
        Scan(&d.ID, &d.ProjectID, &legID, &passengerID, &d.Kind, &d.Title, &d.FilePath, &d.UploadedBy, &d.UploadedAt)
    if err == sql.ErrNoRows {
        return d, ErrNotFound
    }
    if err != nil {
        return d, err
    }
    if legID.Valid {
        v := uint64(legID.Int64)
        d.LegID = &v
    }
    if passengerID.Valid {
        v := uint64(passengerID.Int64)
        d.PassengerID = &v
    }
    return d, nil
}

// ListByProject returns every document version for a project, newest
// first.  Callers serving clients must pass the result through
// FilterLatestPerKind.
func (r *DocumentRepo) ListByProject(ctx context.Context, projectID uint64) ([]DocumentRecord, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, project_id, leg_id, passenger_id, kind, title, file_path, uploaded_by, uploaded_at
         FROM tour_documents WHERE project_id = ?
         ORDER BY uploaded_at DESC, id DESC`, projectID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]DocumentRecord, 0)
    for rows.Next() {
        var d DocumentRecord
        var legID, passengerID sql.NullInt64
        if err := rows.Scan(&d.ID, &d.ProjectID, &legID, &passengerID, &d.Kind, &d.Title,
            &d.FilePath, &d.UploadedBy, &d.UploadedAt); err != nil {
            return nil, err
        }
        if legID.Valid {
            v := uint64(legID.Int64)
            d.LegID = &v
        }
        if passengerID.Valid {
            v := uint64(passengerID.Int64)
            d.PassengerID = &v
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// Delete removes a document's metadata row.  The metadata row is the
// source of truth for existence; object cleanup happens afterwards and
// is best-effort.
func (r *DocumentRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM tour_documents WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// FilterLatestPerKind reduces a newest-first document listing to the
// client view: only the most recent version of each kind survives.
// Input order is preserved for the rows that are kept.  The function
// is pure; it performs no I/O.
func FilterLatestPerKind(docs []DocumentRecord) []DocumentRecord {
    seen := make(map[string]bool, len(docs))
    out := make([]DocumentRecord, 0, len(docs))
    for _, d := range docs {
        if seen[d.Kind] {
            continue
        }
        seen[d.Kind] = true
        out = append(out, d)
    }
    return out
}

package handler

// Tour document endpoints.  Files live in S3 under random object names;
// MySQL holds the metadata.  Clients only ever see the newest document
// of each kind, employees see the full history.

import (
    "errors"
    "fmt"
    "log"
    "net/http"
    "path"
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/repository"
    "github.com/tourops/flightdesk/internal/storage"
)

// maxDocumentBytes is the upload ceiling, checked before any storage I/O.
const maxDocumentBytes = 10 << 20

// presignTTL bounds how long a download link stays usable.
const presignTTL = 10 * time.Minute

// DocumentHandler wires document metadata to the object store.
type DocumentHandler struct {
    Docs        *repository.DocumentRepo
    ProjectRepo *repository.ProjectRepo
    ArtistRepo  *repository.ArtistRepo
    Store       *storage.DocumentStore
}

func NewDocumentHandler(docs *repository.DocumentRepo, projects *repository.ProjectRepo, artists *repository.ArtistRepo, store *storage.DocumentStore) *DocumentHandler {
    if docs == nil || projects == nil || artists == nil {
        panic("nil repository passed to NewDocumentHandler")
    }
    return &DocumentHandler{Docs: docs, ProjectRepo: projects, ArtistRepo: artists, Store: store}
}

// Upload handles POST /v1/projects/:id/documents.  Only PDFs up to
// 10MB are accepted; both checks run before a single byte reaches S3.
// If the metadata insert fails after the object was written, the
// object is deleted best-effort so the bucket does not accumulate
// orphans.
func (h *DocumentHandler) Upload(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    projectID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
    }
    if h.Store == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "document storage not configured"})
    }
    ctx := c.Request().Context()
    if _, err := h.ProjectRepo.GetByID(ctx, projectID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load project"})
    }

    kind := strings.TrimSpace(c.FormValue("kind"))
    title := strings.TrimSpace(c.FormValue("title"))
    if kind == "" || title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind and title required"})
    }
    fh, err := c.FormFile("file")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
    }
    if fh.Size > maxDocumentBytes {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file exceeds 10MB limit"})
    }
    ct := fh.Header.Get("Content-Type")
    if ct != "application/pdf" && !strings.EqualFold(path.Ext(fh.Filename), ".pdf") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "only PDF documents are accepted"})
    }

    rec := repository.DocumentRecord{
        ProjectID:  projectID,
        Kind:       kind,
        Title:      title,
        UploadedBy: userID,
    }
    if s := c.FormValue("leg_id"); s != "" {
        id, err := strconv.ParseUint(s, 10, 64)
        if err != nil || id == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid leg_id"})
        }
        rec.LegID = &id
    }
    if s := c.FormValue("passenger_id"); s != "" {
        id, err := strconv.ParseUint(s, 10, 64)
        if err != nil || id == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid passenger_id"})
        }
        rec.PassengerID = &id
    }

    src, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read upload"})
    }
    defer src.Close()

    // Random object name so two uploads of the same file never collide.
    key := fmt.Sprintf("project/%d/%s.pdf", projectID, uuid.NewString())
    if err := h.Store.Put(ctx, key, src, "application/pdf"); err != nil {
        log.Printf("documents: s3 put %s failed: %v", key, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store document"})
    }
    rec.FilePath = key
    id, err := h.Docs.Insert(ctx, rec)
    if err != nil {
        // Compensate: the object is unreachable without a metadata row.
        if delErr := h.Store.Delete(ctx, key); delErr != nil {
            log.Printf("documents: orphan cleanup %s failed: %v", key, delErr)
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save document metadata"})
    }
    rec.ID = id
    return c.JSON(http.StatusCreated, echo.Map{"document": rec})
}

// List handles GET /v1/projects/:id/documents.  Employees get the full
// newest-first history; clients get only the latest document per kind.
func (h *DocumentHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    projectID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
    }
    ctx := c.Request().Context()
    project, err := h.ProjectRepo.GetByID(ctx, projectID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load project"})
    }
    role := getRole(c)
    if err := h.ArtistRepo.ArtistForScope(ctx, userID, role, project.ArtistID); err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scope check failed"})
    }
    docs, err := h.Docs.ListByProject(ctx, projectID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load documents"})
    }
    if role == "CLIENT" {
        docs = repository.FilterLatestPerKind(docs)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": docs,
        "count": len(docs),
    })
}

// Download handles GET /v1/documents/:id/download and returns a
// presigned URL valid for ten minutes.
func (h *DocumentHandler) Download(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    docID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid document id"})
    }
    if h.Store == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "document storage not configured"})
    }
    ctx := c.Request().Context()
    doc, err := h.Docs.GetByID(ctx, docID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load document"})
    }
    project, err := h.ProjectRepo.GetByID(ctx, doc.ProjectID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load project"})
    }
    if err := h.ArtistRepo.ArtistForScope(ctx, userID, getRole(c), project.ArtistID); err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scope check failed"})
    }
    url, err := h.Store.PresignGet(ctx, doc.FilePath, presignTTL)
    if err != nil {
        log.Printf("documents: presign %s failed: %v", doc.FilePath, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to sign download url"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "url":        url,
        "expires_in": int(presignTTL.Seconds()),
    })
}

// Delete handles DELETE /v1/documents/:id.  The metadata row goes
// first; a failed object delete afterwards is logged but never fails
// the call, since the row is what makes the document visible.
func (h *DocumentHandler) Delete(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    docID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid document id"})
    }
    ctx := c.Request().Context()
    doc, err := h.Docs.GetByID(ctx, docID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load document"})
    }
    if err := h.Docs.Delete(ctx, docID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete document"})
    }
    if h.Store != nil {
        if err := h.Store.Delete(ctx, doc.FilePath); err != nil {
            log.Printf("documents: object delete %s failed: %v", doc.FilePath, err)
        }
    }
    return c.NoContent(http.StatusNoContent)
}

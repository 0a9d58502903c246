package handler

// Leg endpoints.  A leg is one routed flight day within a project;
// passengers are assigned per leg because lineups change between
// cities.

import (
    "errors"
    "net/http"
    "regexp"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/repository"
)

var iataRe = regexp.MustCompile(`^[A-Z]{3}$`)
var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// LegHandler manages legs and leg-passenger assignments.
type LegHandler struct {
    LegRepo       *repository.LegRepo
    ProjectRepo   *repository.ProjectRepo
    PassengerRepo *repository.PassengerRepo
    ArtistRepo    *repository.ArtistRepo
}

func NewLegHandler(legs *repository.LegRepo, projects *repository.ProjectRepo, passengers *repository.PassengerRepo, artists *repository.ArtistRepo) *LegHandler {
    if legs == nil || projects == nil || passengers == nil || artists == nil {
        panic("nil repository passed to NewLegHandler")
    }
    return &LegHandler{LegRepo: legs, ProjectRepo: projects, PassengerRepo: passengers, ArtistRepo: artists}
}

type createLegReq struct {
    ProjectID  uint64 `json:"project_id"`
    Label      string `json:"label"`
    OriginIATA string `json:"origin_iata"`
    DestIATA   string `json:"dest_iata"`
    DepartDate string `json:"depart_date"` // YYYY-MM-DD
}

// Create handles POST /v1/legs.
func (h *LegHandler) Create(c echo.Context) error {
    var req createLegReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    origin := strings.ToUpper(strings.TrimSpace(req.OriginIATA))
    dest := strings.ToUpper(strings.TrimSpace(req.DestIATA))
    if req.ProjectID == 0 || origin == "" || dest == "" || req.DepartDate == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "project_id, origin_iata, dest_iata and depart_date required"})
    }
    if !iataRe.MatchString(origin) || !iataRe.MatchString(dest) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "airport codes must be 3 letters"})
    }
    if origin == dest {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination must differ"})
    }
    if !dateRe.MatchString(req.DepartDate) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "depart_date must be YYYY-MM-DD"})
    }
    ctx := c.Request().Context()
    if _, err := h.ProjectRepo.GetByID(ctx, req.ProjectID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load project"})
    }
    id, err := h.LegRepo.Create(ctx, req.ProjectID, strings.TrimSpace(req.Label), origin, dest, req.DepartDate)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create leg"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Get handles GET /v1/legs/:id.
func (h *LegHandler) Get(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    legID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid leg id"})
    }
    ctx := c.Request().Context()
    leg, err := h.LegRepo.GetByID(ctx, legID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "leg not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load leg"})
    }
    if err := h.ArtistRepo.ArtistForScope(ctx, userID, getRole(c), leg.ArtistID); err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scope check failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": leg})
}

// ListByProject handles GET /v1/projects/:id/legs.
func (h *LegHandler) ListByProject(c echo.Context) error {
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
    if err := h.ArtistRepo.ArtistForScope(ctx, userID, getRole(c), project.ArtistID); err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scope check failed"})
    }
    items, err := h.LegRepo.ListByProject(ctx, projectID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load legs"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

type assignPassengerReq struct {
    PassengerID uint64 `json:"passenger_id"`
}

// AssignPassenger handles POST /v1/legs/:id/passengers.  The
// passenger must belong to the leg's artist; assigning twice is 409.
func (h *LegHandler) AssignPassenger(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    legID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid leg id"})
    }
    var req assignPassengerReq
    if err := c.Bind(&req); err != nil || req.PassengerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger_id required"})
    }
    ctx := c.Request().Context()
    leg, err := h.LegRepo.GetByID(ctx, legID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "leg not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load leg"})
    }
    passenger, err := h.PassengerRepo.GetByID(ctx, req.PassengerID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "passenger not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load passenger"})
    }
    if passenger.ArtistID != leg.ArtistID {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger belongs to another artist"})
    }
    if err := h.LegRepo.AssignPassenger(ctx, legID, req.PassengerID); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "passenger already assigned to leg"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign passenger"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"assigned": true})
}

// ListAssignments handles GET /v1/legs/:id/passengers.
func (h *LegHandler) ListAssignments(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    legID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid leg id"})
    }
    ctx := c.Request().Context()
    leg, err := h.LegRepo.GetByID(ctx, legID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "leg not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load leg"})
    }
    if err := h.ArtistRepo.ArtistForScope(ctx, userID, getRole(c), leg.ArtistID); err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scope check failed"})
    }
    items, err := h.LegRepo.ListAssignments(ctx, legID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load assignments"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

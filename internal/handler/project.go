package handler

// Project endpoints.  A project is one tour for one artist and owns a
// budget row from creation; ticketing is the only writer of spend.

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/repository"
)

// ProjectHandler manages projects and their budgets.
type ProjectHandler struct {
    ProjectRepo *repository.ProjectRepo
    ArtistRepo  *repository.ArtistRepo
}

func NewProjectHandler(projects *repository.ProjectRepo, artists *repository.ArtistRepo) *ProjectHandler {
    if projects == nil || artists == nil {
        panic("nil repository passed to NewProjectHandler")
    }
    return &ProjectHandler{ProjectRepo: projects, ArtistRepo: artists}
}

type createProjectReq struct {
    ArtistID         uint64 `json:"artist_id"`
    Name             string `json:"name"`
    Currency         string `json:"currency"`
    BudgetTotalCents uint64 `json:"budget_total_cents"`
}

// Create handles POST /v1/projects.  The budget row is created in the
// same transaction as the project.
func (h *ProjectHandler) Create(c echo.Context) error {
    var req createProjectReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    name := strings.TrimSpace(req.Name)
    if req.ArtistID == 0 || name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "artist_id and name required"})
    }
    currency := strings.ToUpper(strings.TrimSpace(req.Currency))
    if currency == "" {
        currency = "USD"
    }
    if len(currency) != 3 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "currency must be a 3-letter code"})
    }
    ctx := c.Request().Context()
    if _, err := h.ArtistRepo.GetByID(ctx, req.ArtistID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "artist not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load artist"})
    }
    id, err := h.ProjectRepo.Create(ctx, req.ArtistID, name, currency, req.BudgetTotalCents)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create project"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// List handles GET /v1/projects, scoped by role in the repository.
func (h *ProjectHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.ProjectRepo.ListForUser(c.Request().Context(), userID, getRole(c))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load projects"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

// Get handles GET /v1/projects/:id.
func (h *ProjectHandler) Get(c echo.Context) error {
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
    return c.JSON(http.StatusOK, echo.Map{"item": project})
}

// GetBudget handles GET /v1/projects/:id/budget.
func (h *ProjectHandler) GetBudget(c echo.Context) error {
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
    budget, err := h.ProjectRepo.GetBudget(ctx, projectID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "budget not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load budget"})
    }
    remaining := int64(budget.TotalCents) - int64(budget.SpentCents)
    return c.JSON(http.StatusOK, echo.Map{
        "budget":          budget,
        "remaining_cents": remaining,
    })
}

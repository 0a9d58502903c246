package handler

// Selection-group seeding.  Reseeding replaces the whole group set for
// a leg: the partition is computed in memory first, then the delete
// and inserts run in one transaction so a failed reseed never leaves
// the leg half-grouped.

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/repository"
)

// SeederHandler rebuilds and lists selection groups for a leg.
type SeederHandler struct {
    GroupRepo  *repository.SelectionGroupRepo
    LegRepo    *repository.LegRepo
    ArtistRepo *repository.ArtistRepo
}

func NewSeederHandler(grp *repository.SelectionGroupRepo, leg *repository.LegRepo, art *repository.ArtistRepo) *SeederHandler {
    if grp == nil || leg == nil || art == nil {
        panic("nil repository passed to NewSeederHandler")
    }
    return &SeederHandler{GroupRepo: grp, LegRepo: leg, ArtistRepo: art}
}

// Seed handles POST /v1/legs/:id/selection-groups/seed.  Every
// passenger flagged treat_as_individual gets a one-member group; the
// rest pool into a single combined group.  Existing groups for the leg
// are replaced wholesale.
func (h *SeederHandler) Seed(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
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
    assignments, err := h.LegRepo.ListAssignments(ctx, legID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load assignments"})
    }
    if len(assignments) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no passengers assigned"})
    }

    seeds, counts := repository.PartitionAssignments(leg, assignments)

    tx, err := h.GroupRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := h.GroupRepo.ReplaceForLegTx(ctx, tx, legID, seeds); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reseed groups"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.JSON(http.StatusCreated, echo.Map{
        "created": len(seeds),
        "details": counts,
    })
}

// ListGroups handles GET /v1/legs/:id/selection-groups for both roles.
func (h *SeederHandler) ListGroups(c echo.Context) error {
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
    groups, err := h.GroupRepo.ListByLeg(ctx, legID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load groups"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": groups,
        "count": len(groups),
    })
}

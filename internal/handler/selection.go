package handler

// This file defines the selection endpoints.  Clients choose one flight
// option per selection group; choosing again replaces the previous
// choice.  The replacement is done transactionally so the one-active-
// selection-per-group invariant holds even under concurrent picks, and
// the price is snapshotted from the option at choose time so later
// option edits never change what was agreed.

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/repository"
)

// SelectionHandler groups the repositories needed to record and list
// client selections.  The SelectionRepo's DB handle is used for
// starting transactions.
type SelectionHandler struct {
    SelectionRepo *repository.SelectionRepo
    GroupRepo     *repository.SelectionGroupRepo
    OptionRepo    *repository.OptionRepo
    LegRepo       *repository.LegRepo
    ArtistRepo    *repository.ArtistRepo
    Notifier      *Notifier
}

// NewSelectionHandler constructs a SelectionHandler.  All repositories
// must be non-nil; the notifier may be nil in tests.
func NewSelectionHandler(sel *repository.SelectionRepo, grp *repository.SelectionGroupRepo, opt *repository.OptionRepo, leg *repository.LegRepo, art *repository.ArtistRepo, n *Notifier) *SelectionHandler {
    if sel == nil || grp == nil || opt == nil || leg == nil || art == nil {
        panic("nil repository passed to NewSelectionHandler")
    }
    return &SelectionHandler{
        SelectionRepo: sel,
        GroupRepo:     grp,
        OptionRepo:    opt,
        LegRepo:       leg,
        ArtistRepo:    art,
        Notifier:      n,
    }
}

type selectReq struct {
    OptionID uint64 `json:"option_id"`
}

// Choose handles POST /v1/selection-groups/:id/select.  It snapshots
// the option's current price onto the new selection row and, in a
// single transaction, deactivates any previous active selection for
// the group before inserting the new one.
func (h *SelectionHandler) Choose(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    groupID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
    }
    var req selectReq
    if err := c.Bind(&req); err != nil || req.OptionID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "option_id required"})
    }

    ctx := c.Request().Context()
    group, err := h.GroupRepo.GetByID(ctx, groupID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "selection group not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load group"})
    }
    option, err := h.OptionRepo.GetByID(ctx, req.OptionID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "option not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load option"})
    }
    if option.LegID != group.LegID {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "option belongs to another leg"})
    }
    leg, err := h.LegRepo.GetByID(ctx, group.LegID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load leg"})
    }
    if err := h.ArtistRepo.ArtistForScope(ctx, userID, getRole(c), leg.ArtistID); err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scope check failed"})
    }

    tx, err := h.SelectionRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    replaced, err := h.SelectionRepo.DeactivateActiveTx(ctx, tx, groupID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to replace selection"})
    }
    rec := repository.SelectionRecord{
        SelectionGroupID: groupID,
        OptionID:         option.ID,
        SelectedBy:       userID,
        PriceCents:       option.PriceCents, // snapshot, immune to later option edits
        Currency:         option.Currency,
    }
    if err := h.SelectionRepo.InsertActiveTx(ctx, tx, &rec); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save selection"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    h.Notifier.Emit(ctx, repository.EventRecord{
        Type:        "selection.chosen",
        ArtistID:    leg.ArtistID,
        ProjectID:   &leg.ProjectID,
        LegID:       &leg.ID,
        ActorUserID: &userID,
        Title:       fmt.Sprintf("Flight chosen for %s", group.Label),
        Body:        fmt.Sprintf("%s %s selected at %d %s", option.Airline, option.FlightNumber, option.PriceCents, option.Currency),
    })

    return c.JSON(http.StatusCreated, echo.Map{
        "selection": rec,
        "replaced":  replaced > 0,
    })
}

// ListByLeg handles GET /v1/legs/:id/selections and returns the active
// selection for every group on the leg.
func (h *SelectionHandler) ListByLeg(c echo.Context) error {
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
    items, err := h.SelectionRepo.ListActiveByLeg(ctx, legID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load selections"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

// Confirm handles POST /v1/legs/:id/selections/confirm.  It reports
// whether every pooled group on the leg has an active selection.  The
// call performs no writes, so repeating it has no side effects.
func (h *SelectionHandler) Confirm(c echo.Context) error {
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
    coverage, err := h.SelectionRepo.ListGroupCoverage(ctx, legID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load coverage"})
    }
    complete := true
    missing := make([]repository.GroupCoverage, 0)
    for _, g := range coverage {
        if !g.HasActive {
            complete = false
            missing = append(missing, g)
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "complete": complete,
        "groups":   coverage,
        "missing":  missing,
    })
}

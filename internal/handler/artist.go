package handler

// Artist endpoints.  Artists anchor the visibility model: clients only
// see data belonging to artists they are assigned to.

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/repository"
)

// ArtistHandler manages artists, their passengers and client
// assignments.
type ArtistHandler struct {
    ArtistRepo    *repository.ArtistRepo
    PassengerRepo *repository.PassengerRepo
}

func NewArtistHandler(artists *repository.ArtistRepo, passengers *repository.PassengerRepo) *ArtistHandler {
    if artists == nil || passengers == nil {
        panic("nil repository passed to NewArtistHandler")
    }
    return &ArtistHandler{ArtistRepo: artists, PassengerRepo: passengers}
}

type createArtistReq struct {
    Name string `json:"name"`
}

// Create handles POST /v1/artists.
func (h *ArtistHandler) Create(c echo.Context) error {
    var req createArtistReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    id, err := h.ArtistRepo.Create(c.Request().Context(), strings.TrimSpace(req.Name))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create artist"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// List handles GET /v1/artists.  Employees see everything; clients see
// only their assigned artists.
func (h *ArtistHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    var items []repository.ArtistRecord
    if getRole(c) == "EMPLOYEE" {
        items, err = h.ArtistRepo.List(ctx)
    } else {
        items, err = h.ArtistRepo.ListForUser(ctx, userID)
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load artists"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

type createPassengerReq struct {
    ArtistID          uint64 `json:"artist_id"`
    FullName          string `json:"full_name"`
    TreatAsIndividual bool   `json:"treat_as_individual"`
}

// CreatePassenger handles POST /v1/passengers.  The
// treat_as_individual flag decides how the seeder groups this person.
func (h *ArtistHandler) CreatePassenger(c echo.Context) error {
    var req createPassengerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    name := strings.TrimSpace(req.FullName)
    if req.ArtistID == 0 || name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "artist_id and full_name required"})
    }
    ctx := c.Request().Context()
    if _, err := h.ArtistRepo.GetByID(ctx, req.ArtistID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "artist not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load artist"})
    }
    id, err := h.PassengerRepo.Create(ctx, req.ArtistID, name, req.TreatAsIndividual)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create passenger"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListPassengers handles GET /v1/artists/:id/passengers.
func (h *ArtistHandler) ListPassengers(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    artistID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid artist id"})
    }
    ctx := c.Request().Context()
    if err := h.ArtistRepo.ArtistForScope(ctx, userID, getRole(c), artistID); err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scope check failed"})
    }
    items, err := h.PassengerRepo.ListByArtist(ctx, artistID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load passengers"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

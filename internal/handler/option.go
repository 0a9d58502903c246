package handler

// Flight option and hold endpoints.  Options can be entered field by
// field or pasted as a raw Navitas line; either way the stored shape
// is the same.  Holds are time-boxed and expire lazily: nothing sweeps
// them, reads just filter on the deadline.

import (
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/repository"
    "github.com/tourops/flightdesk/internal/utils"
)

// maxHoldMinutes caps how far out a ticketing hold may reach.
const maxHoldMinutes = 72 * 60

// OptionHandler manages flight options and holds on them.
type OptionHandler struct {
    OptionRepo *repository.OptionRepo
    HoldRepo   *repository.HoldRepo
    LegRepo    *repository.LegRepo
    ArtistRepo *repository.ArtistRepo
}

func NewOptionHandler(options *repository.OptionRepo, holds *repository.HoldRepo, legs *repository.LegRepo, artists *repository.ArtistRepo) *OptionHandler {
    if options == nil || holds == nil || legs == nil || artists == nil {
        panic("nil repository passed to NewOptionHandler")
    }
    return &OptionHandler{OptionRepo: options, HoldRepo: holds, LegRepo: legs, ArtistRepo: artists}
}

type createOptionReq struct {
    Airline      string `json:"airline"`
    FlightNumber string `json:"flight_number"`
    DepartClock  string `json:"depart_clock"`
    ArriveClock  string `json:"arrive_clock"`
    DayOffset    int    `json:"day_offset"`
    PriceCents   uint64 `json:"price_cents"`
    Currency     string `json:"currency"`
    NavitasText  string `json:"navitas_text"`
}

// Create handles POST /v1/legs/:id/options.  When navitas_text is
// present it wins over the individual fields; the raw line is kept on
// the option for display.
func (h *OptionHandler) Create(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    legID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid leg id"})
    }
    var req createOptionReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx := c.Request().Context()
    leg, err := h.LegRepo.GetByID(ctx, legID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "leg not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load leg"})
    }

    rec := repository.OptionRecord{LegID: legID}
    if text := strings.TrimSpace(req.NavitasText); text != "" {
        seg, err := utils.ParseNavitasLine(text)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        if seg.Origin != leg.OriginIATA || seg.Dest != leg.DestIATA {
            return c.JSON(http.StatusBadRequest, echo.Map{
                "error": fmt.Sprintf("navitas route %s → %s does not match leg %s → %s",
                    seg.Origin, seg.Dest, leg.OriginIATA, leg.DestIATA),
            })
        }
        norm := strings.ToUpper(text)
        rec.Airline = seg.Airline
        rec.FlightNumber = seg.FlightNumber
        rec.DepartClock = seg.DepartClock
        rec.ArriveClock = seg.ArriveClock
        rec.DayOffset = seg.DayOffset
        rec.NavitasText = &norm
    } else {
        rec.Airline = strings.ToUpper(strings.TrimSpace(req.Airline))
        rec.FlightNumber = strings.TrimSpace(req.FlightNumber)
        rec.DepartClock = strings.ToUpper(strings.TrimSpace(req.DepartClock))
        rec.ArriveClock = strings.ToUpper(strings.TrimSpace(req.ArriveClock))
        rec.DayOffset = req.DayOffset
        if rec.Airline == "" || rec.FlightNumber == "" || rec.DepartClock == "" || rec.ArriveClock == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "airline, flight_number, depart_clock and arrive_clock required"})
        }
        if _, ok := utils.ParseLocalClock(rec.DepartClock); !ok {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid depart_clock"})
        }
        if _, ok := utils.ParseLocalClock(rec.ArriveClock); !ok {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid arrive_clock"})
        }
        if rec.DayOffset < 0 || rec.DayOffset > 3 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "day_offset out of range"})
        }
    }
    if req.PriceCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must be positive"})
    }
    rec.PriceCents = req.PriceCents
    rec.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
    if rec.Currency == "" {
        rec.Currency = "USD"
    }

    id, err := h.OptionRepo.Create(ctx, rec)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create option"})
    }
    rec.ID = id
    return c.JSON(http.StatusCreated, echo.Map{"option": rec})
}

// optionView decorates an option with its computed duration for list
// responses.
type optionView struct {
    repository.OptionRecord
    Duration string `json:"duration,omitempty"`
}

// ListByLeg handles GET /v1/legs/:id/options for both roles.
func (h *OptionHandler) ListByLeg(c echo.Context) error {
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
    options, err := h.OptionRepo.ListByLeg(ctx, legID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load options"})
    }
    items := make([]optionView, 0, len(options))
    for _, o := range options {
        v := optionView{OptionRecord: o}
        if min, ok := utils.ComputeDurationMin(o.DepartClock, o.ArriveClock, o.DayOffset); ok {
            v.Duration = utils.FormatDuration(min)
        }
        items = append(items, v)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

type createHoldReq struct {
    PassengerID uint64 `json:"passenger_id"`
    Minutes     int    `json:"minutes"`
}

// CreateHold handles POST /v1/options/:id/hold.  The expiry drives
// queue urgency; expired holds simply stop counting.
func (h *OptionHandler) CreateHold(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    optionID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid option id"})
    }
    var req createHoldReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.PassengerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger_id required"})
    }
    if req.Minutes < 1 || req.Minutes > maxHoldMinutes {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "minutes must be between 1 and 4320"})
    }
    ctx := c.Request().Context()
    if _, err := h.OptionRepo.GetByID(ctx, optionID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "option not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load option"})
    }
    expiresAt := time.Now().UTC().Add(time.Duration(req.Minutes) * time.Minute)
    id, err := h.HoldRepo.Create(ctx, optionID, req.PassengerID, expiresAt)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create hold"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":         id,
        "expires_at": expiresAt,
    })
}

// ListHolds handles GET /v1/options/:id/holds and returns only the
// holds that have not expired yet.
func (h *OptionHandler) ListHolds(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    optionID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid option id"})
    }
    items, err := h.HoldRepo.ListOpenByOption(c.Request().Context(), optionID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load holds"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

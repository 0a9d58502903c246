package handler

// Booking queue endpoints for the ticketing desk.  The queue itself is
// never persisted: it is recomputed per request from active selections,
// open holds and ticketing progress.  Ticket issuance is batch-only and
// all-or-nothing; validation runs on the whole set before a single row
// is written.

import (
    "errors"
    "fmt"
    "log"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/repository"
)

// QueueHandler serves the booking queue and the batch ticketing
// operation.  The TicketRepo's DB handle is used for transactions.
type QueueHandler struct {
    QueueRepo  *repository.QueueRepo
    TicketRepo *repository.TicketRepo
    OptionRepo *repository.OptionRepo
    LegRepo    *repository.LegRepo
    ProjectRepo *repository.ProjectRepo
    Notifier   *Notifier
}

func NewQueueHandler(q *repository.QueueRepo, t *repository.TicketRepo, o *repository.OptionRepo, l *repository.LegRepo, p *repository.ProjectRepo, n *Notifier) *QueueHandler {
    if q == nil || t == nil || o == nil || l == nil || p == nil {
        panic("nil repository passed to NewQueueHandler")
    }
    return &QueueHandler{QueueRepo: q, TicketRepo: t, OptionRepo: o, LegRepo: l, ProjectRepo: p, Notifier: n}
}

// List handles GET /v1/booking-queue.  A failed aggregation query is
// logged and answered with an empty queue; the page is a dashboard and
// must keep rendering when one read goes bad.
func (h *QueueHandler) List(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.QueueRepo.ListQueue(c.Request().Context())
    if err != nil {
        log.Printf("booking-queue: list failed: %v", err)
        return c.JSON(http.StatusOK, echo.Map{
            "selections":  []repository.QueueItem{},
            "total_count": 0,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "selections":  items,
        "total_count": len(items),
    })
}

type ticketLine struct {
    PassengerID uint64 `json:"passenger_id"`
    PNR         string `json:"pnr"`
    PriceCents  uint64 `json:"price_cents"`
    Currency    string `json:"currency"`
}

type ticketBatchReq struct {
    OptionID uint64       `json:"option_id"`
    LegID    uint64       `json:"leg_id"`
    Tickets  []ticketLine `json:"tickets"`
}

// validateTicketBatch applies set-level rules to a batch before any
// write: at least one line, PNRs exactly six characters and unique
// within the batch, prices positive, passengers distinct.  Returns a
// client-facing message on the first violation.
func validateTicketBatch(lines []ticketLine) string {
    if len(lines) == 0 {
        return "tickets required"
    }
    pnrs := make(map[string]bool, len(lines))
    passengers := make(map[uint64]bool, len(lines))
    for _, ln := range lines {
        if ln.PassengerID == 0 {
            return "passenger_id required on every ticket"
        }
        pnr := strings.ToUpper(strings.TrimSpace(ln.PNR))
        if len(pnr) != 6 {
            return fmt.Sprintf("pnr %q must be exactly 6 characters", ln.PNR)
        }
        if pnrs[pnr] {
            return fmt.Sprintf("duplicate pnr %q in batch", pnr)
        }
        pnrs[pnr] = true
        if passengers[ln.PassengerID] {
            return fmt.Sprintf("passenger %d listed twice", ln.PassengerID)
        }
        passengers[ln.PassengerID] = true
        if ln.PriceCents == 0 {
            return fmt.Sprintf("price for passenger %d must be positive", ln.PassengerID)
        }
    }
    return ""
}

// TicketBatch handles POST /v1/booking-queue/ticket.  The whole batch
// is inserted in one transaction together with the project budget
// update, so a duplicate PNR in the middle of the batch leaves
// nothing behind.
func (h *QueueHandler) TicketBatch(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req ticketBatchReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.OptionID == 0 || req.LegID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "option_id and leg_id required"})
    }
    if msg := validateTicketBatch(req.Tickets); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx := c.Request().Context()
    option, err := h.OptionRepo.GetByID(ctx, req.OptionID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "option not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load option"})
    }
    if option.LegID != req.LegID {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "option belongs to another leg"})
    }
    leg, err := h.LegRepo.GetByID(ctx, req.LegID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "leg not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load leg"})
    }

    records := make([]repository.TicketRecord, 0, len(req.Tickets))
    var totalCents uint64
    for _, ln := range req.Tickets {
        cur := strings.ToUpper(strings.TrimSpace(ln.Currency))
        if cur == "" {
            cur = option.Currency
        }
        records = append(records, repository.TicketRecord{
            OptionID:       option.ID,
            LegID:          leg.ID,
            PassengerID:    ln.PassengerID,
            PNR:            strings.ToUpper(strings.TrimSpace(ln.PNR)),
            PricePaidCents: ln.PriceCents,
            Currency:       cur,
            TicketedBy:     userID,
        })
        totalCents += ln.PriceCents
    }

    tx, err := h.TicketRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := h.TicketRepo.InsertBatchTx(ctx, tx, records); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "pnr or passenger already ticketed for this leg"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue tickets"})
    }
    if err := h.ProjectRepo.AddSpendTx(ctx, tx, leg.ProjectID, totalCents); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update budget"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    h.Notifier.Emit(ctx, repository.EventRecord{
        Type:        "tickets.issued",
        ArtistID:    leg.ArtistID,
        ProjectID:   &leg.ProjectID,
        LegID:       &leg.ID,
        ActorUserID: &userID,
        Title:       fmt.Sprintf("%d ticket(s) issued on %s %s", len(records), option.Airline, option.FlightNumber),
        Body:        fmt.Sprintf("Total %d %s charged to project budget", totalCents, option.Currency),
    })

    return c.JSON(http.StatusCreated, echo.Map{
        "issued":      len(records),
        "total_cents": totalCents,
    })
}

// ListTickets handles GET /v1/legs/:id/tickets.
func (h *QueueHandler) ListTickets(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    legID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid leg id"})
    }
    items, err := h.TicketRepo.ListByLeg(c.Request().Context(), legID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

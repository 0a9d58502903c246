package handler

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestValidateTicketBatchAccepts(t *testing.T) {
    msg := validateTicketBatch([]ticketLine{
        {PassengerID: 1, PNR: "ABC123", PriceCents: 45000},
        {PassengerID: 2, PNR: "xyz789", PriceCents: 52000}, // case-folded later
    })
    assert.Empty(t, msg)
}

func TestValidateTicketBatchEmpty(t *testing.T) {
    assert.Equal(t, "tickets required", validateTicketBatch(nil))
}

func TestValidateTicketBatchShortPNR(t *testing.T) {
    msg := validateTicketBatch([]ticketLine{
        {PassengerID: 1, PNR: "ABC12", PriceCents: 100},
    })
    assert.Contains(t, msg, "exactly 6 characters")
}

func TestValidateTicketBatchDuplicatePNR(t *testing.T) {
    msg := validateTicketBatch([]ticketLine{
        {PassengerID: 1, PNR: "ABC123", PriceCents: 100},
        {PassengerID: 2, PNR: "abc123", PriceCents: 100}, // same PNR, different case
    })
    assert.Contains(t, msg, "duplicate pnr")
}

func TestValidateTicketBatchDuplicatePassenger(t *testing.T) {
    msg := validateTicketBatch([]ticketLine{
        {PassengerID: 1, PNR: "ABC123", PriceCents: 100},
        {PassengerID: 1, PNR: "DEF456", PriceCents: 100},
    })
    assert.Contains(t, msg, "listed twice")
}

func TestValidateTicketBatchZeroPrice(t *testing.T) {
    msg := validateTicketBatch([]ticketLine{
        {PassengerID: 1, PNR: "ABC123", PriceCents: 0},
    })
    assert.Contains(t, msg, "must be positive")
}

func TestValidateTicketBatchMissingPassenger(t *testing.T) {
    msg := validateTicketBatch([]ticketLine{
        {PNR: "ABC123", PriceCents: 100},
    })
    assert.Contains(t, msg, "passenger_id required")
}

func TestValidateTicketBatchStopsBeforeAnyWrite(t *testing.T) {
    // The second line is invalid; validation must reject the whole set
    // even though the first line is fine.
    msg := validateTicketBatch([]ticketLine{
        {PassengerID: 1, PNR: "ABC123", PriceCents: 100},
        {PassengerID: 2, PNR: "NOPE", PriceCents: 100},
    })
    assert.NotEmpty(t, msg)
}

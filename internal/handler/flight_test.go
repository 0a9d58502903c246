package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/tourops/flightdesk/internal/config"
)

func flightCtx(t *testing.T, cfg config.Config, target string) (*FlightHandler, echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    h := NewFlightHandler(cfg)
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, target, nil)
    rec := httptest.NewRecorder()
    return h, e.NewContext(req, rec), rec
}

func TestFlightLookupUnconfigured(t *testing.T) {
    h, c, rec := flightCtx(t, config.Config{}, "/api/flight?flight_iata=UA934")
    require.NoError(t, h.Lookup(c))
    assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFlightLookupMissingParams(t *testing.T) {
    cfg := config.Config{FlightAPIBaseURL: "http://upstream.test", FlightAPIKey: "k"}
    h, c, rec := flightCtx(t, cfg, "/api/flight?airline_iata=UA")
    require.NoError(t, h.Lookup(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlightLookupUpstreamNoMatch(t *testing.T) {
    upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(upstreamResp{})
    }))
    defer upstream.Close()

    cfg := config.Config{FlightAPIBaseURL: upstream.URL, FlightAPIKey: "k"}
    h, c, rec := flightCtx(t, cfg, "/api/flight?flight_iata=UA934")
    require.NoError(t, h.Lookup(c))
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlightLookupUpstreamFailure(t *testing.T) {
    upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusInternalServerError)
    }))
    defer upstream.Close()

    cfg := config.Config{FlightAPIBaseURL: upstream.URL, FlightAPIKey: "k"}
    h, c, rec := flightCtx(t, cfg, "/api/flight?flight_iata=UA934")
    require.NoError(t, h.Lookup(c))
    assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestFlightLookupEnriches(t *testing.T) {
    upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "UA934", r.URL.Query().Get("flight_iata"))
        _ = json.NewEncoder(w).Encode(upstreamResp{Data: []upstreamFlight{{
            AirlineIATA:  "UA",
            FlightNumber: "934",
            DepIATA:      "LHR",
            ArrIATA:      "SFO",
            DepClock:     "1130A",
            ArrClock:     "225P",
        }}})
    }))
    defer upstream.Close()

    cfg := config.Config{FlightAPIBaseURL: upstream.URL, FlightAPIKey: "k"}
    h, c, rec := flightCtx(t, cfg, "/api/flight?flight_iata=UA934")
    require.NoError(t, h.Lookup(c))
    require.Equal(t, http.StatusOK, rec.Code)

    var body struct {
        Flights []enrichedFlight `json:"flights"`
        Count   int              `json:"count"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    require.Equal(t, 1, body.Count)
    f := body.Flights[0]
    require.NotNil(t, f.DepMinutes)
    assert.Equal(t, 690, *f.DepMinutes) // 11:30 AM
    require.NotNil(t, f.DurationMin)
    assert.Equal(t, 175, *f.DurationMin)
    assert.Equal(t, "2h55", f.Duration)
}

func TestEnrichFlightBadClocksLeftEmpty(t *testing.T) {
    e := enrichFlight(upstreamFlight{DepClock: "13A", ArrClock: "225P"})
    assert.Nil(t, e.DepMinutes)
    assert.Nil(t, e.DurationMin)
    assert.Empty(t, e.Duration)
}

func TestEnrichFlightOvernight(t *testing.T) {
    e := enrichFlight(upstreamFlight{DepClock: "11P", ArrClock: "1A", DayOffset: 1})
    require.NotNil(t, e.DurationMin)
    assert.Equal(t, 120, *e.DurationMin)
    assert.Equal(t, "2h00", e.Duration)
}

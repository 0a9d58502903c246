package handler

// Flight lookup proxy.  The upstream schedule API is queried per
// request; successful responses are cached for five minutes by the
// Redis response-cache middleware registered on this route, so the
// handler itself stays stateless.

import (
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/config"
    "github.com/tourops/flightdesk/internal/utils"
)

// FlightHandler proxies flight schedule lookups to the configured
// upstream and enriches matches with parsed local times and duration.
type FlightHandler struct {
    Cfg    config.Config
    Client *http.Client
}

func NewFlightHandler(cfg config.Config) *FlightHandler {
    return &FlightHandler{
        Cfg:    cfg,
        Client: &http.Client{Timeout: 10 * time.Second},
    }
}

// upstreamFlight is the subset of the provider payload we pass through.
// Local times come in schedule clock notation ("615P"), matching what
// the rest of the system stores on flight options.
type upstreamFlight struct {
    AirlineIATA  string `json:"airline_iata"`
    FlightNumber string `json:"flight_number"`
    DepIATA      string `json:"dep_iata"`
    ArrIATA      string `json:"arr_iata"`
    DepClock     string `json:"dep_time_local"`
    ArrClock     string `json:"arr_time_local"`
    DayOffset    int    `json:"arrival_day_offset"`
}

type upstreamResp struct {
    Data []upstreamFlight `json:"data"`
}

// enrichedFlight adds minute offsets and a formatted duration to the
// upstream fields when the clocks parse.
type enrichedFlight struct {
    upstreamFlight
    DepMinutes  *int   `json:"dep_minutes,omitempty"`
    ArrMinutes  *int   `json:"arr_minutes,omitempty"`
    Duration    string `json:"duration,omitempty"`
    DurationMin *int   `json:"duration_min,omitempty"`
}

// Lookup handles GET /api/flight.  Accepted query shapes: flight_iata
// alone, or airline_iata with flight_number plus optional dep_iata and
// arr_iata.  503 when no upstream is configured, 502 when it fails,
// 404 when it has no match.
func (h *FlightHandler) Lookup(c echo.Context) error {
    if h.Cfg.FlightAPIBaseURL == "" {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "flight lookup not configured"})
    }
    flightIATA := c.QueryParam("flight_iata")
    airline := c.QueryParam("airline_iata")
    number := c.QueryParam("flight_number")
    if flightIATA == "" && (airline == "" || number == "") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_iata or airline_iata+flight_number required"})
    }

    q := url.Values{}
    q.Set("access_key", h.Cfg.FlightAPIKey)
    if flightIATA != "" {
        q.Set("flight_iata", flightIATA)
    } else {
        q.Set("airline_iata", airline)
        q.Set("flight_number", number)
    }
    if v := c.QueryParam("dep_iata"); v != "" {
        q.Set("dep_iata", v)
    }
    if v := c.QueryParam("arr_iata"); v != "" {
        q.Set("arr_iata", v)
    }

    req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet,
        fmt.Sprintf("%s/flights?%s", h.Cfg.FlightAPIBaseURL, q.Encode()), nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build upstream request failed"})
    }
    resp, err := h.Client.Do(req)
    if err != nil {
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "flight lookup upstream unavailable"})
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        _, _ = io.Copy(io.Discard, resp.Body)
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "flight lookup upstream error"})
    }
    var payload upstreamResp
    if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "flight lookup upstream returned bad payload"})
    }
    if len(payload.Data) == 0 {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no matching flight"})
    }

    out := make([]enrichedFlight, 0, len(payload.Data))
    for _, f := range payload.Data {
        out = append(out, enrichFlight(f))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "flights": out,
        "count":   len(out),
    })
}

// enrichFlight parses the schedule clocks and attaches duration info.
// Unparseable clocks leave the enrichment fields empty rather than
// failing the lookup.
func enrichFlight(f upstreamFlight) enrichedFlight {
    e := enrichedFlight{upstreamFlight: f}
    dep, depOK := utils.ParseLocalClock(f.DepClock)
    arr, arrOK := utils.ParseLocalClock(f.ArrClock)
    if depOK {
        e.DepMinutes = &dep
    }
    if arrOK {
        e.ArrMinutes = &arr
    }
    if depOK && arrOK {
        if min, ok := utils.ComputeDurationMin(f.DepClock, f.ArrClock, f.DayOffset); ok {
            e.DurationMin = &min
            e.Duration = utils.FormatDuration(min)
        }
    }
    return e
}

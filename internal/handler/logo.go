package handler

// Airline logo proxy.  The upstream logo service meters by account,
// not by caller, so a single shared limiter guards it: ten fetches a
// minute across every user of this deployment.

import (
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "golang.org/x/time/rate"

    "github.com/tourops/flightdesk/internal/config"
)

// LogoHandler fetches airline logo images through the configured
// upstream and streams them back to the browser.
type LogoHandler struct {
    Cfg     config.Config
    Client  *http.Client
    Limiter *rate.Limiter
}

func NewLogoHandler(cfg config.Config) *LogoHandler {
    return &LogoHandler{
        Cfg:    cfg,
        Client: &http.Client{Timeout: 10 * time.Second},
        // One shared bucket for the whole process: 10 per minute.
        Limiter: rate.NewLimiter(rate.Every(6*time.Second), 10),
    }
}

// Airline handles GET /api/logo/airline?iata=|icao=|domain=|name=&size=.
// Missing upstream config or a missing logo both answer 204 so the
// web client can fall back to a placeholder without error handling.
func (h *LogoHandler) Airline(c echo.Context) error {
    if h.Cfg.LogoAPIBaseURL == "" {
        return c.NoContent(http.StatusNoContent)
    }
    iata := c.QueryParam("iata")
    icao := c.QueryParam("icao")
    domain := c.QueryParam("domain")
    name := c.QueryParam("name")
    if iata == "" && icao == "" && domain == "" && name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "iata, icao, domain or name required"})
    }
    size := 64
    if s := c.QueryParam("size"); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n < 32 || n > 128 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "size must be between 32 and 128"})
        }
        size = n
    }
    if !h.Limiter.Allow() {
        return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "logo quota exhausted, try again shortly"})
    }

    q := url.Values{}
    q.Set("size", strconv.Itoa(size))
    switch {
    case iata != "":
        q.Set("iata", iata)
    case icao != "":
        q.Set("icao", icao)
    case domain != "":
        q.Set("domain", domain)
    default:
        q.Set("name", name)
    }
    if h.Cfg.LogoAPIKey != "" {
        q.Set("token", h.Cfg.LogoAPIKey)
    }

    req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet,
        fmt.Sprintf("%s/airline?%s", h.Cfg.LogoAPIBaseURL, q.Encode()), nil)
    if err != nil {
        return c.NoContent(http.StatusNoContent)
    }
    resp, err := h.Client.Do(req)
    if err != nil {
        return c.NoContent(http.StatusNoContent)
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        _, _ = io.Copy(io.Discard, resp.Body)
        return c.NoContent(http.StatusNoContent)
    }
    ct := resp.Header.Get("Content-Type")
    if ct == "" {
        ct = "image/png"
    }
    return c.Stream(http.StatusOK, ct, resp.Body)
}

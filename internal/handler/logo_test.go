package handler

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/time/rate"

    "github.com/tourops/flightdesk/internal/config"
)

func logoCtx(t *testing.T, h *LogoHandler, target string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, target, nil)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func TestLogoUnconfiguredNoContent(t *testing.T) {
    h := NewLogoHandler(config.Config{})
    c, rec := logoCtx(t, h, "/api/logo/airline?iata=UA")
    require.NoError(t, h.Airline(c))
    assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLogoMissingParams(t *testing.T) {
    h := NewLogoHandler(config.Config{LogoAPIBaseURL: "http://upstream.test"})
    c, rec := logoCtx(t, h, "/api/logo/airline")
    require.NoError(t, h.Airline(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoSizeOutOfRange(t *testing.T) {
    h := NewLogoHandler(config.Config{LogoAPIBaseURL: "http://upstream.test"})
    c, rec := logoCtx(t, h, "/api/logo/airline?iata=UA&size=256")
    require.NoError(t, h.Airline(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoProxiesImage(t *testing.T) {
    upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "UA", r.URL.Query().Get("iata"))
        assert.Equal(t, "64", r.URL.Query().Get("size"))
        w.Header().Set("Content-Type", "image/png")
        _, _ = w.Write([]byte("png-bytes"))
    }))
    defer upstream.Close()

    h := NewLogoHandler(config.Config{LogoAPIBaseURL: upstream.URL})
    c, rec := logoCtx(t, h, "/api/logo/airline?iata=UA")
    require.NoError(t, h.Airline(c))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
    assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestLogoMissingLogoNoContent(t *testing.T) {
    upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusNotFound)
    }))
    defer upstream.Close()

    h := NewLogoHandler(config.Config{LogoAPIBaseURL: upstream.URL})
    c, rec := logoCtx(t, h, "/api/logo/airline?iata=ZZ")
    require.NoError(t, h.Airline(c))
    assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLogoSharedBucketExhaustion(t *testing.T) {
    h := NewLogoHandler(config.Config{LogoAPIBaseURL: "http://upstream.test"})
    // Empty bucket: same limiter shape as production, zero burst left.
    h.Limiter = rate.NewLimiter(rate.Every(6*time.Second), 0)
    c, rec := logoCtx(t, h, "/api/logo/airline?iata=UA")
    require.NoError(t, h.Airline(c))
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

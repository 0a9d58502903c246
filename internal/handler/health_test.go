package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestHealthPlain(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
    rec := httptest.NewRecorder()

    err := Health(e.NewContext(req, rec))
    require.NoError(t, err)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "ok", rec.Body.String())
}

func TestHealthJSON(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
    rec := httptest.NewRecorder()

    err := HealthJSON(e.NewContext(req, rec))
    require.NoError(t, err)
    assert.Equal(t, http.StatusOK, rec.Code)

    var body map[string]interface{}
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, true, body["ok"])
    assert.Equal(t, "healthy", body["status"])
    assert.NotEmpty(t, body["timestamp"])
}

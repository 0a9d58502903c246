package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func roleCtx(t *testing.T, role interface{}) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if role != nil {
        c.Set("role", role)
    }
    return c, rec
}

func TestRequireRoleAllows(t *testing.T) {
    next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
    mw := RequireRole("EMPLOYEE")

    c, rec := roleCtx(t, "EMPLOYEE")
    require.NoError(t, mw(next)(c))
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidsOtherRole(t *testing.T) {
    next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
    mw := RequireRole("EMPLOYEE")

    c, rec := roleCtx(t, "CLIENT")
    require.NoError(t, mw(next)(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleForbidsMissingRole(t *testing.T) {
    next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
    mw := RequireRole("EMPLOYEE", "CLIENT")

    c, rec := roleCtx(t, nil)
    require.NoError(t, mw(next)(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleMultiRole(t *testing.T) {
    next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
    mw := RequireRole("EMPLOYEE", "CLIENT")

    c, rec := roleCtx(t, "CLIENT")
    require.NoError(t, mw(next)(c))
    assert.Equal(t, http.StatusOK, rec.Code)
}

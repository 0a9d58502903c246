package handler

import (
    "database/sql"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    sqlmock "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/tourops/flightdesk/internal/repository"
)

// mockDB returns a database handle whose first query reports no rows,
// so repository lookups surface ErrNotFound to the handler under test.
func mockDB(t *testing.T) *sql.DB {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)
    return db
}

func authedCtx(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    var req *http.Request
    if body != "" {
        req = httptest.NewRequest(method, target, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    } else {
        req = httptest.NewRequest(method, target, nil)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", uint64(1))
    c.Set("role", "EMPLOYEE")
    return c, rec
}

func TestSeedMissingLegAnswersNotFound(t *testing.T) {
    db := mockDB(t)
    h := NewSeederHandler(
        repository.NewSelectionGroupRepo(db), repository.NewLegRepo(db), repository.NewArtistRepo(db),
    )

    c, rec := authedCtx(t, http.MethodPost, "/v1/legs/99/selection-groups/seed", "")
    c.SetParamNames("id")
    c.SetParamValues("99")

    require.NoError(t, h.Seed(c))
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Contains(t, rec.Body.String(), "leg not found")
}

func TestChooseMissingGroupAnswersNotFound(t *testing.T) {
    db := mockDB(t)
    h := NewSelectionHandler(
        repository.NewSelectionRepo(db), repository.NewSelectionGroupRepo(db),
        repository.NewOptionRepo(db), repository.NewLegRepo(db), repository.NewArtistRepo(db), nil,
    )

    c, rec := authedCtx(t, http.MethodPost, "/v1/selection-groups/42/select", `{"option_id":7}`)
    c.SetParamNames("id")
    c.SetParamValues("42")

    require.NoError(t, h.Choose(c))
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Contains(t, rec.Body.String(), "selection group not found")
}

func TestTicketBatchMissingOptionAnswersNotFound(t *testing.T) {
    db := mockDB(t)
    h := NewQueueHandler(
        repository.NewQueueRepo(db), repository.NewTicketRepo(db),
        repository.NewOptionRepo(db), repository.NewLegRepo(db), repository.NewProjectRepo(db), nil,
    )

    body := `{"option_id":7,"leg_id":3,"tickets":[{"passenger_id":1,"pnr":"ABCDEF","price_cents":100}]}`
    c, rec := authedCtx(t, http.MethodPost, "/v1/booking-queue/ticket", body)

    require.NoError(t, h.TicketBatch(c))
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Contains(t, rec.Body.String(), "option not found")
}

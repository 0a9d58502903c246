package handler

// Chat endpoints.  Threads are per artist; read state is a per-user
// high-water mark rather than per-message rows, which keeps the
// global unread badge a single query.

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/repository"
)

// ChatHandler serves artist threads and unread counters.
type ChatHandler struct {
    ChatRepo   *repository.ChatRepo
    ArtistRepo *repository.ArtistRepo
}

func NewChatHandler(chat *repository.ChatRepo, artists *repository.ArtistRepo) *ChatHandler {
    if chat == nil || artists == nil {
        panic("nil repository passed to NewChatHandler")
    }
    return &ChatHandler{ChatRepo: chat, ArtistRepo: artists}
}

type postMessageReq struct {
    Body string `json:"body"`
}

// PostMessage handles POST /v1/chat/:artistId/messages.
func (h *ChatHandler) PostMessage(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    artistID, ok := pathID(c, "artistId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid artist id"})
    }
    var req postMessageReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Body) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "body required"})
    }
    ctx := c.Request().Context()
    if err := h.scope(c, artistID); err != nil {
        return err
    }
    id, err := h.ChatRepo.InsertMessage(ctx, artistID, userID, strings.TrimSpace(req.Body))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save message"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListMessages handles GET /v1/chat/:artistId/messages?limit=.
func (h *ChatHandler) ListMessages(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    artistID, ok := pathID(c, "artistId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid artist id"})
    }
    if err := h.scope(c, artistID); err != nil {
        return err
    }
    limit := 0
    if s := c.QueryParam("limit"); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n < 1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
        }
        limit = n
    }
    items, err := h.ChatRepo.ListMessages(c.Request().Context(), artistID, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load messages"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "count": len(items),
    })
}

// MarkRead handles POST /v1/chat/:artistId/read.  Repeat calls just
// move the marker forward again.
func (h *ChatHandler) MarkRead(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    artistID, ok := pathID(c, "artistId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid artist id"})
    }
    if err := h.scope(c, artistID); err != nil {
        return err
    }
    if err := h.ChatRepo.MarkThreadRead(c.Request().Context(), userID, artistID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark read"})
    }
    return c.NoContent(http.StatusNoContent)
}

// GlobalUnread handles GET /api/chat/global-unread[?artist=ID].  The
// route is registered employee-only; clients get 403 from the role
// middleware before reaching here.
func (h *ChatHandler) GlobalUnread(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var artistID uint64
    if s := c.QueryParam("artist"); s != "" {
        artistID, err = strconv.ParseUint(s, 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid artist id"})
        }
    }
    n, err := h.ChatRepo.GlobalUnread(c.Request().Context(), userID, artistID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count unread"})
    }
    return c.JSON(http.StatusOK, echo.Map{"total": n})
}

// scope enforces artist visibility for the caller; employees pass,
// clients need an assignment.  Writes the error response itself.
func (h *ChatHandler) scope(c echo.Context, artistID uint64) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    err = h.ArtistRepo.ArtistForScope(c.Request().Context(), userID, getRole(c), artistID)
    if err == nil {
        return nil
    }
    if errors.Is(err, repository.ErrForbidden) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "artist not found"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scope check failed"})
}

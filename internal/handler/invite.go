package handler

// Invite endpoints.  Accounts are created only through invites: an
// employee issues a single-use token, the recipient redeems it with a
// password.  The raw token leaves the server exactly once, in the
// create response; only its hash is stored.

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/tourops/flightdesk/internal/config"
    "github.com/tourops/flightdesk/internal/repository"
    "github.com/tourops/flightdesk/internal/utils"
)

// InviteHandler creates, validates and redeems invites.
type InviteHandler struct {
    Cfg     config.Config
    Invites *repository.InviteRepo
    Users   *repository.UserRepo
    Artists *repository.ArtistRepo
    Tokens  *repository.TokenRepo
}

func NewInviteHandler(cfg config.Config, inv *repository.InviteRepo, users *repository.UserRepo, artists *repository.ArtistRepo, tokens *repository.TokenRepo) *InviteHandler {
    if inv == nil || users == nil || artists == nil || tokens == nil {
        panic("nil repository passed to NewInviteHandler")
    }
    return &InviteHandler{Cfg: cfg, Invites: inv, Users: users, Artists: artists, Tokens: tokens}
}

type createInviteReq struct {
    Email     string   `json:"email"`
    Role      string   `json:"role"` // EMPLOYEE | CLIENT
    ArtistIDs []uint64 `json:"artist_ids"`
}

// Create handles POST /v1/invites.  Client invites carry the artist
// assignments the new account will receive on acceptance.
func (h *InviteHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createInviteReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))
    if email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }
    role := strings.ToUpper(strings.TrimSpace(req.Role))
    if role != "EMPLOYEE" && role != "CLIENT" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be EMPLOYEE or CLIENT"})
    }
    if role == "CLIENT" && len(req.ArtistIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "client invites need at least one artist"})
    }

    raw := uuid.NewString()
    expiresAt := time.Now().UTC().Add(time.Duration(h.Cfg.InviteTTLHours) * time.Hour)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    id, err := h.Invites.Create(ctx, utils.HashTokenRaw(raw), email, role, userID, req.ArtistIDs, expiresAt)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create invite"})
    }

    // The raw token appears here and nowhere else.
    return c.JSON(http.StatusCreated, echo.Map{
        "id":         id,
        "token":      raw,
        "email":      email,
        "role":       role,
        "expires_at": expiresAt,
    })
}

// Validate handles GET /api/invites/validate?token=.  Unknown, expired
// and consumed tokens are indistinguishable in the response.
func (h *InviteHandler) Validate(c echo.Context) error {
    raw := strings.TrimSpace(c.QueryParam("token"))
    if raw == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    inv, err := h.Invites.GetOpenByTokenHash(ctx, utils.HashTokenRaw(raw))
    if err != nil {
        if errors.Is(err, repository.ErrInviteInvalid) {
            return c.JSON(http.StatusBadRequest, echo.Map{"is_valid": false, "error": "invite is invalid or expired"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check invite"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "is_valid":   true,
        "email":      inv.Email,
        "role":       inv.Role,
        "expires_at": inv.ExpiresAt,
    })
}

type acceptInviteReq struct {
    Token    string `json:"token"`
    Password string `json:"password"`
    FullName string `json:"full_name"`
}

// Accept handles POST /api/invites/accept.  User creation, artist
// assignments and invite consumption happen in one transaction, so a
// lost race on the same token creates nothing.
func (h *InviteHandler) Accept(c echo.Context) error {
    var req acceptInviteReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    raw := strings.TrimSpace(req.Token)
    fullName := strings.TrimSpace(req.FullName)
    if raw == "" || req.Password == "" || fullName == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token, password and full_name required"})
    }
    if len(req.Password) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    inv, err := h.Invites.GetOpenByTokenHash(ctx, utils.HashTokenRaw(raw))
    if err != nil {
        if errors.Is(err, repository.ErrInviteInvalid) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invite is invalid or expired"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check invite"})
    }

    tx, err := h.Invites.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    uid, err := h.Users.CreateTx(ctx, tx, inv.Email, req.Password, fullName, inv.Role, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }
    if inv.Role == "CLIENT" {
        for _, aid := range inv.ArtistIDs {
            if err := h.Artists.AssignTx(ctx, tx, uid, aid); err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign artist failed"})
            }
        }
    }
    if err := h.Invites.ConsumeTx(ctx, tx, inv.ID); err != nil {
        if errors.Is(err, repository.ErrInviteInvalid) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "invite already used"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "consume invite failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    // Log the new account straight in.
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, inv.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashTokenRaw(refresh.Raw), refresh.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }

    return c.JSON(http.StatusCreated, authResp{
        User:    userPart{ID: uid, Email: inv.Email, FullName: fullName, Role: inv.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    })
}

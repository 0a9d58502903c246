package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/tourops/flightdesk/internal/config"
	"github.com/tourops/flightdesk/internal/handler"    // import the handlers that implement business logic
	"github.com/tourops/flightdesk/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// Handlers carries every constructed handler so registration stays in
// one place.  Nil optional handlers (flight, logo) simply skip their
// routes.
type Handlers struct {
	Auth         *handler.AuthHandler
	Invite       *handler.InviteHandler
	Artist       *handler.ArtistHandler
	Project      *handler.ProjectHandler
	Leg          *handler.LegHandler
	Option       *handler.OptionHandler
	Seeder       *handler.SeederHandler
	Selection    *handler.SelectionHandler
	Queue        *handler.QueueHandler
	Document     *handler.DocumentHandler
	Notification *handler.NotificationHandler
	Chat         *handler.ChatHandler
	Flight       *handler.FlightHandler
	Logo         *handler.LogoHandler
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: health checks and invite redemption.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	// Plain health probe for load balancers plus the JSON variant the
	// web client polls.
	e.GET("/healthz", handler.Health)
	e.GET("/api/health", handler.HealthJSON)

	// Invite redemption happens before the user has any credentials.
	e.GET("/api/invites/validate", h.Invite.Validate)
	e.POST("/api/invites/accept", h.Invite.Accept)
}

// RegisterAuth registers all authentication‑related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access reuses it.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a bearer token or a refresh token body, so
	// it is registered without JWT middleware.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("EMPLOYEE", "CLIENT"))
	auth.GET("/me", a.Me)
}

// RegisterEmployee registers EMPLOYEE-scoped endpoints under /v1.
// Everything that creates or mutates tour data lives here; role
// enforcement is centralized in the group middleware rather than
// re-checked handler by handler.
func RegisterEmployee(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("EMPLOYEE"),
	)

	// ---- Artists and passengers ----
	g.POST("/artists", h.Artist.Create)
	g.POST("/passengers", h.Artist.CreatePassenger)

	// ---- Projects and legs ----
	g.POST("/projects", h.Project.Create)
	g.POST("/legs", h.Leg.Create)
	g.POST("/legs/:id/passengers", h.Leg.AssignPassenger)

	// ---- Options and holds ----
	g.POST("/legs/:id/options", h.Option.Create)
	g.POST("/options/:id/hold", h.Option.CreateHold)
	g.GET("/options/:id/holds", h.Option.ListHolds)

	// ---- Selection-group seeding ----
	g.POST("/legs/:id/selection-groups/seed", h.Seeder.Seed)

	// ---- Booking queue and ticketing ----
	g.GET("/booking-queue", h.Queue.List)
	g.POST("/booking-queue/ticket", h.Queue.TicketBatch)
	g.GET("/legs/:id/tickets", h.Queue.ListTickets)

	// ---- Documents (mutations) ----
	g.POST("/projects/:id/documents", h.Document.Upload)
	g.DELETE("/documents/:id", h.Document.Delete)

	// ---- Notifications (event emission) ----
	g.POST("/notifications", h.Notification.Create)

	// ---- Invites ----
	g.POST("/invites", h.Invite.Create)
}

// RegisterShared registers endpoints available to both roles under
// /v1.  Client visibility is narrowed inside the repositories via
// artist assignments.
func RegisterShared(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("EMPLOYEE", "CLIENT"),
	)

	g.GET("/artists", h.Artist.List)
	g.GET("/artists/:id/passengers", h.Artist.ListPassengers)

	g.GET("/projects", h.Project.List)
	g.GET("/projects/:id", h.Project.Get)
	g.GET("/projects/:id/budget", h.Project.GetBudget)
	g.GET("/projects/:id/legs", h.Leg.ListByProject)

	g.GET("/legs/:id", h.Leg.Get)
	g.GET("/legs/:id/passengers", h.Leg.ListAssignments)
	g.GET("/legs/:id/options", h.Option.ListByLeg)
	g.GET("/legs/:id/selection-groups", h.Seeder.ListGroups)

	// Selections: clients choose, both roles read and confirm.
	g.POST("/selection-groups/:id/select", h.Selection.Choose)
	g.GET("/legs/:id/selections", h.Selection.ListByLeg)
	g.POST("/legs/:id/selections/confirm", h.Selection.Confirm)

	// Documents: listing filters to latest-per-kind for clients.
	g.GET("/projects/:id/documents", h.Document.List)
	g.GET("/documents/:id/download", h.Document.Download)

	// Notifications.
	g.GET("/notifications", h.Notification.List)
	g.GET("/notifications/unread-count", h.Notification.UnreadCount)
	g.POST("/notifications/read", h.Notification.MarkRead)

	// Chat threads.
	g.GET("/chat/:artistId/messages", h.Chat.ListMessages)
	g.POST("/chat/:artistId/messages", h.Chat.PostMessage)
	g.POST("/chat/:artistId/read", h.Chat.MarkRead)
}

// RegisterAPI registers the /api surface: upstream proxies and the
// employee dashboard badge.  Flight lookups are cached in Redis for
// five minutes; the logo proxy rate-limits itself internally.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	// Global unread is an employee dashboard widget; clients get 403.
	e.GET("/api/chat/global-unread", h.Chat.GlobalUnread,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("EMPLOYEE"))

	if h.Flight != nil {
		cacheCfg := config.LoadCacheConfig()
		cacheCfg.TTL = 300 * time.Second
		e.GET("/api/flight", h.Flight.Lookup,
			middleware.JWTAuth(jwtSecret),
			middleware.RequireRole("EMPLOYEE", "CLIENT"),
			middleware.NewRedisCache(cacheCfg, rdb))
	}
	if h.Logo != nil {
		e.GET("/api/logo/airline", h.Logo.Airline,
			middleware.JWTAuth(jwtSecret),
			middleware.RequireRole("EMPLOYEE", "CLIENT"))
	}
}

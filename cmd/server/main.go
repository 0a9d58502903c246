package main // Entry point package

import (
	"context" // Startup context for the object store
	"log"     // Logging library
	"time"    // Timeout for external connections

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/tourops/flightdesk/internal/config"     // Internal config loader
	"github.com/tourops/flightdesk/internal/database"   // MySQL pool
	"github.com/tourops/flightdesk/internal/handler"    // HTTP handlers
	"github.com/tourops/flightdesk/internal/middleware" // Rate limiting
	"github.com/tourops/flightdesk/internal/queue"      // AMQP consumer
	"github.com/tourops/flightdesk/internal/repository" // Data access layer
	"github.com/tourops/flightdesk/internal/router"     // Route registration
	"github.com/tourops/flightdesk/internal/storage"    // S3 document store
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the flight lookup cache.  A nil
	// client degrades both to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	// The object store is optional: document routes answer 503 when it
	// is absent rather than blocking startup.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	docStore, err := storage.OpenFromEnv(ctx)
	cancel()
	if err != nil {
		log.Printf("document storage disabled: %v", err)
		docStore = nil
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	artists := repository.NewArtistRepo(db)
	projects := repository.NewProjectRepo(db)
	legs := repository.NewLegRepo(db)
	passengers := repository.NewPassengerRepo(db)
	options := repository.NewOptionRepo(db)
	groups := repository.NewSelectionGroupRepo(db)
	selections := repository.NewSelectionRepo(db)
	holds := repository.NewHoldRepo(db)
	tickets := repository.NewTicketRepo(db)
	bookingQueue := repository.NewQueueRepo(db)
	documents := repository.NewDocumentRepo(db)
	notifications := repository.NewNotificationRepo(db)
	chat := repository.NewChatRepo(db)
	invites := repository.NewInviteRepo(db)

	notifier := handler.NewNotifier(notifications)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Invite:       handler.NewInviteHandler(cfg, invites, users, artists, tokens),
		Artist:       handler.NewArtistHandler(artists, passengers),
		Project:      handler.NewProjectHandler(projects, artists),
		Leg:          handler.NewLegHandler(legs, projects, passengers, artists),
		Option:       handler.NewOptionHandler(options, holds, legs, artists),
		Seeder:       handler.NewSeederHandler(groups, legs, artists),
		Selection:    handler.NewSelectionHandler(selections, groups, options, legs, artists, notifier),
		Queue:        handler.NewQueueHandler(bookingQueue, tickets, options, legs, projects, notifier),
		Document:     handler.NewDocumentHandler(documents, projects, artists, docStore),
		Notification: handler.NewNotificationHandler(notifications, notifier),
		Chat:         handler.NewChatHandler(chat, artists),
		Flight:       handler.NewFlightHandler(cfg),
		Logo:         handler.NewLogoHandler(cfg),
	}

	e := echo.New() // Create Echo instance
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, h)
	router.RegisterAuth(e, h.Auth, cfg.JWTSecret)
	router.RegisterEmployee(e, h, cfg.JWTSecret)
	router.RegisterShared(e, h, cfg.JWTSecret)
	router.RegisterAPI(e, h, cfg.JWTSecret, rdb)

	// Mirror notification events into logs/notifications.log.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

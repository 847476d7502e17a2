package main // Entry point package

import (
	"context" // Schema bootstrap context
	"log"     // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/meeting-room-booking/internal/booking"    // Admission-control core
	"github.com/iliyamo/meeting-room-booking/internal/config"     // Internal config loader
	"github.com/iliyamo/meeting-room-booking/internal/database"   // MySQL pool constructor
	"github.com/iliyamo/meeting-room-booking/internal/handler"    // HTTP handlers
	"github.com/iliyamo/meeting-room-booking/internal/middleware" // Rate limiting and caching middleware
	"github.com/iliyamo/meeting-room-booking/internal/queue"      // Background event consumer
	"github.com/iliyamo/meeting-room-booking/internal/router"     // Internal router setup
	"github.com/iliyamo/meeting-room-booking/internal/store/memory"
	"github.com/iliyamo/meeting-room-booking/internal/store/mysql"
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env vars win
	cfg := config.Load()

	// Select the persistence backend.  MySQL is the default; the memory
	// store exists for dev and test runs without a database.  The health
	// endpoint pings the database handle when one is in use.
	var store booking.Store
	health := handler.NewHealthHandler(nil)
	switch cfg.StoreDriver {
	case "memory":
		store = memory.New()
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		if err := database.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("schema: %v", err)
		}
		ms := mysql.New(db)
		store = ms
		health = handler.NewHealthHandler(ms.DB())
	}

	// The registry and the admission service share one lock set so
	// deactivation and admission serialize per room.
	clock := booking.RealClock{}
	locks := booking.NewRoomLocks()
	registry := booking.NewRegistry(store, clock, locks)
	service := booking.NewService(store, clock, locks, cfg.GraceWindow)

	e := echo.New()

	// Redis-backed rate limiting and response caching degrade to no-ops
	// when no Redis server is reachable.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e, health)
	router.RegisterRooms(e, handler.NewRoomHandler(registry, service), cfg.JWTSecret)
	router.RegisterBookings(e, handler.NewBookingHandler(service), cfg.JWTSecret)

	// Consume booking events in the background; the loop reconnects on
	// broker failures and never takes the server down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

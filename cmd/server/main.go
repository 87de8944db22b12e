package main // Entry point package

import (
	"context" // Cancellation for the background workers
	"log"     // Logging library
	"time"    // Interval for the token pruner

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/instrumentaliza/instrumentaliza-server/internal/config"
	"github.com/instrumentaliza/instrumentaliza-server/internal/database"
	"github.com/instrumentaliza/instrumentaliza-server/internal/handler"
	"github.com/instrumentaliza/instrumentaliza-server/internal/middleware"
	"github.com/instrumentaliza/instrumentaliza-server/internal/queue"
	"github.com/instrumentaliza/instrumentaliza-server/internal/rental"
	"github.com/instrumentaliza/instrumentaliza-server/internal/repository"
	"github.com/instrumentaliza/instrumentaliza-server/internal/router"
	"github.com/instrumentaliza/instrumentaliza-server/internal/worker"
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

	// Redis backs the rate limiter and the public browse cache.  A nil
	// client disables both; the API stays fully functional without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	instruments := repository.NewInstrumentRepo(db)
	bookings := repository.NewBookingRepo(db)
	ratings := repository.NewRatingRepo(db)
	store := repository.NewRentalStore(db)

	// Rental core: availability index, request lifecycle, converter.
	index := rental.NewAvailabilityIndex(store)
	lifecycle := rental.NewLifecycle(store, index)
	converter := rental.NewConverter(store, index)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	ownerH := handler.NewOwnerHandler(instruments, index)
	publicH := handler.NewPublicHandler(instruments, ratings, index)
	requestH := handler.NewRequestHandler(lifecycle, instruments, store)
	decisionH := handler.NewDecisionHandler(lifecycle, converter, store, instruments)
	bookingH := handler.NewBookingHandler(bookings, ratings)

	e := echo.New() // Create Echo instance
	e.HideBanner = true

	// The token bucket wraps the whole API surface.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, config.LoadCacheConfig(), rdb)
	router.RegisterMarketplace(e, cfg.JWTSecret, ownerH, requestH, decisionH, bookingH)

	// Background workers: the booking.created consumer writes the booking
	// log; the sweeper expires overdue pending requests.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()
	go worker.StartExpirySweeper(ctx, lifecycle, cfg.ExpirySweepIntv)
	go worker.StartTokenPruner(ctx, tokens, time.Hour)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/consultant-booking/internal/config"
	"github.com/iliyamo/consultant-booking/internal/database"
	"github.com/iliyamo/consultant-booking/internal/handler"
	"github.com/iliyamo/consultant-booking/internal/middleware"
	"github.com/iliyamo/consultant-booking/internal/queue"
	"github.com/iliyamo/consultant-booking/internal/repository"
	"github.com/iliyamo/consultant-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: both the response cache and the rate limiter
	// degrade to no-ops when the client is nil.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	slots := repository.NewTimeSlotRepo(db)
	bookings := repository.NewBookingRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	conH := handler.NewConsultantHandler(users, slots)
	slotH := handler.NewSlotHandler(slots)
	bookingH := handler.NewBookingHandler(bookings, slots)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterConsultant(e, cfg.JWTSecret, conH, slotH, bookingH, cache)

	// Background consumer appends booking events to logs/booking.log.
	// It maintains its own reconnect loop, so a dead broker never takes
	// the API down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

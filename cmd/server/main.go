package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/tickethub/helpdesk-api/internal/apierr"
	"github.com/tickethub/helpdesk-api/internal/config"
	"github.com/tickethub/helpdesk-api/internal/database"
	"github.com/tickethub/helpdesk-api/internal/handler"
	"github.com/tickethub/helpdesk-api/internal/middleware"
	"github.com/tickethub/helpdesk-api/internal/queue"
	"github.com/tickethub/helpdesk-api/internal/repository"
	"github.com/tickethub/helpdesk-api/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema setup failed: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	categories := repository.NewCategoryRepo(db)
	tickets := repository.NewTicketRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apierr.HTTPErrorHandler
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	// Identity resolution runs on every request, before dispatch.
	e.Use(middleware.WithIdentity(cfg.AccessSecret, users))

	// Redis is optional: with no client both middlewares become no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.Register(e,
		handler.NewAuthHandler(cfg, users, tokens),
		handler.NewCategoryHandler(categories),
		handler.NewTicketHandler(tickets, categories),
		limiter, cache)

	// Background consumer; reconnects on its own if the broker is down.
	go queue.StartTicketConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

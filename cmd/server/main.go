package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ahmdrza1383/db-project/internal/cache"
	"github.com/ahmdrza1383/db-project/internal/clock"
	"github.com/ahmdrza1383/db-project/internal/config"
	"github.com/ahmdrza1383/db-project/internal/database"
	"github.com/ahmdrza1383/db-project/internal/handler"
	"github.com/ahmdrza1383/db-project/internal/queue"
	"github.com/ahmdrza1383/db-project/internal/repository"
	"github.com/ahmdrza1383/db-project/internal/router"
	"github.com/ahmdrza1383/db-project/internal/search"
	"github.com/ahmdrza1383/db-project/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed; the hold cache requires redis")
	}

	svc := service.NewReservationService(service.Deps{
		Tx:       repository.NewTxRunner(db),
		Tickets:  repository.NewTicketRepo(db),
		Seats:    repository.NewReservationRepo(db),
		Wallets:  repository.NewUserRepo(db),
		Payments: repository.NewPaymentRepo(db),
		History:  repository.NewHistoryRepo(db),
		Requests: repository.NewRequestRepo(db),
		Holds:    cache.NewHoldCache(rdb),
		Details:  cache.NewTicketCache(rdb, cfg.TicketCacheTTL()),
		Expiry:   queue.NewScheduler(),
		Indexer:  search.NewIndexer(cfg.SearchBaseURL),
		Clock:    clock.NewSystem(),
		Grace:    cfg.HoldGrace(),
	})

	go queue.StartExpiryWorker(svc)

	e := echo.New()
	e.HideBanner = true
	res := handler.NewReservationHandler(svc)
	adm := handler.NewAdminHandler(svc)
	router.Register(e, res, adm, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

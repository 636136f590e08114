package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/reserbit/venue-lifecycle/internal/config"   // Internal config loader
	"github.com/reserbit/venue-lifecycle/internal/database" // MySQL connection pool
	"github.com/reserbit/venue-lifecycle/internal/handler"
	"github.com/reserbit/venue-lifecycle/internal/invoice"
	"github.com/reserbit/venue-lifecycle/internal/queue"
	"github.com/reserbit/venue-lifecycle/internal/repository"
	"github.com/reserbit/venue-lifecycle/internal/router" // Internal router setup
	"github.com/reserbit/venue-lifecycle/internal/service"
)

func main() {
	// Load .env when present; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the response cache.  A nil client
	// disables both and the API keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	venues := repository.NewVenueRepo(db)
	reservations := repository.NewReservationRepo(db)
	units := repository.NewUnitRepo(db)
	refunds := repository.NewRefundRepo(db)
	ledger := repository.NewLedgerRepo(db)
	counters := repository.NewCountersRepo(db)

	// Services
	txr := database.Runner{DB: db}
	notify := service.NotifyFunc(queue.Publish)
	reservationSvc := service.NewReservationService(reservations, counters, txr, notify)
	redemptionSvc := service.NewRedemptionService(units, txr, notify)
	refundSvc := service.NewRefundService(units, refunds, ledger, invoice.NewClient(cfg.InvoiceAPIURL), txr, notify)
	reliabilitySvc := service.NewReliabilityService(counters)

	// Background consumer draining notify.events into logs/notify.log.
	go func() {
		if err := queue.StartNotifyConsumer(); err != nil {
			log.Printf("notify consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(venues), rdb)
	router.RegisterCustomer(e, handler.NewCustomerHandler(reservationSvc, refundSvc, reliabilitySvc, units), cfg.JWTSecret, rdb)
	router.RegisterStaff(e, handler.NewStaffHandler(reservationSvc, redemptionSvc, refundSvc, venues, units, reservations, refunds), cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

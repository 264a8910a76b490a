package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tiendaonline/backend/internal/auth"
	"github.com/tiendaonline/backend/internal/catalog"
	"github.com/tiendaonline/backend/internal/config"
	"github.com/tiendaonline/backend/internal/events"
	"github.com/tiendaonline/backend/internal/httpx"
	kafkax "github.com/tiendaonline/backend/internal/kafka"
	"github.com/tiendaonline/backend/internal/orders"
	"github.com/tiendaonline/backend/internal/postgres"
	"github.com/tiendaonline/backend/internal/redisx"
	"github.com/tiendaonline/backend/internal/seed"
	"github.com/tiendaonline/backend/internal/setup"
	"github.com/tiendaonline/backend/internal/telemetry"
	"github.com/tiendaonline/backend/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	telemetry.InitLogger(cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores
	var (
		userStore    users.Store
		productStore catalog.Store
		orderStore   orders.Store
		setupState   setup.StateStore
	)
	switch cfg.StoreDriver {
	case "memory":
		userStore = users.NewMemoryStore()
		productStore = catalog.NewMemoryStore()
		orderStore = orders.NewMemoryStore()
		setupState = &setup.MemoryState{}
	default:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		userStore = &users.Repo{DB: db}
		productStore = &catalog.Repo{DB: db}
		orderStore = &orders.Repo{DB: db}
		setupState = &setup.PGState{DB: db}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	var publisher events.Publisher
	var producer *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		producer.Start(ctx)
		publisher = producer
	}

	// Services
	authSvc := auth.NewService(userStore, auth.NewRedisSessions(rdb), cfg.JWTSecret, cfg.JWTTTL)
	catalogSvc := catalog.NewService(productStore)
	ledger := orders.NewLedger(productStore)
	orderSvc := orders.NewService(orderStore, ledger, publisher, cfg.ServiceName)
	orderSvc.MaxItemsPerOrder = cfg.MaxItemsPerOrder
	orderSvc.MaxQtyPerItem = cfg.MaxQtyPerItem
	setupSvc := setup.NewService(userStore, setupState, cfg.SetupKey)

	if cfg.SeedData {
		seeder := &seed.Seeder{Users: userStore, Products: productStore}
		if err := seeder.Run(ctx); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	// Router & handlers
	router := httpx.NewRouter(authSvc)
	(&httpx.AuthHandler{Auth: authSvc, Setup: setupSvc}).Register(router)
	(&httpx.ProductsHandler{Catalog: catalogSvc}).Register(router)
	(&httpx.OrdersHandler{Orders: orderSvc, Redis: rdb}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
	cancel()
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safar/topup-store/internal/config"
	"github.com/safar/topup-store/internal/database"
	"github.com/safar/topup-store/internal/events"
	"github.com/safar/topup-store/internal/gateway"
	"github.com/safar/topup-store/internal/httpx"
	"github.com/safar/topup-store/internal/redisx"
	"github.com/safar/topup-store/internal/settlement"
	"github.com/safar/topup-store/internal/supplier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	rdb := redisx.New(cfg.Redis.Addr)
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	producer := events.NewProducer(cfg.Kafka.Brokers, events.TopicOrderSettled, cfg.Kafka.ServiceName, 1024)
	producer.Start(ctx)

	svc := settlement.New(
		db,
		gateway.New(cfg.Gateway),
		supplier.New(cfg.Supplier),
		producer,
		cfg.App,
	)

	router := httpx.NewRouter()
	(&httpx.PaymentsHandler{Settlement: svc}).Register(router)
	(&httpx.OrdersHandler{DB: db, Redis: rdb}).Register(router)
	(&httpx.StorefrontHandler{DB: db}).Register(router)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	producer.Close()
	producer.WaitClosed()
}

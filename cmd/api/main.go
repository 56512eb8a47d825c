package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/marketplace/internal/api"
	"github.com/example/marketplace/internal/auth"
	"github.com/example/marketplace/internal/config"
	"github.com/example/marketplace/internal/events"
	"github.com/example/marketplace/internal/metrics"
	"github.com/example/marketplace/internal/order"
	"github.com/example/marketplace/internal/product"
	"github.com/example/marketplace/internal/promo"
	"github.com/example/marketplace/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Configuration error: %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Marketplace API")
	log.Println("[API] ========================================")

	st, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer st.Close()
	log.Println("[API] Connected to PostgreSQL")

	// Event publishing is optional; without brokers the engine runs without
	// emitting events.
	var publisher order.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		p := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		publisher = p
		log.Printf("[API] Kafka: %v topic=%s", cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		log.Println("[API] Kafka disabled (no KAFKA_BROKERS)")
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := auth.NewService(st, jwtService)
	productService := product.NewService(st)
	promoService := promo.NewService(st)
	orderEngine := order.NewEngine(st, order.Config{RateLimitWindow: cfg.RateLimitWindow}, publisher)

	serverMetrics := metrics.NewServerMetrics()
	handlers := api.NewHandlers(authService, productService, promoService, orderEngine)
	router := api.NewRouter(handlers, jwtService, serverMetrics)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}

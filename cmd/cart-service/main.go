package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dadopl/poc-nocart/internal/cart-service/catalog"
	"github.com/dadopl/poc-nocart/internal/cart-service/httpx"
	"github.com/dadopl/poc-nocart/internal/cart-service/publisher"
	"github.com/dadopl/poc-nocart/internal/cart-service/repository"
	"github.com/dadopl/poc-nocart/internal/cart-service/service"
	"github.com/dadopl/poc-nocart/internal/pkg/messaging"
	"github.com/dadopl/poc-nocart/internal/pkg/metrics"
	"github.com/dadopl/poc-nocart/internal/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	telemetry.InitLogger("cart-service")

	port := getEnv("CART_SERVICE_PORT", "8081")
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	kafkaBrokers := getEnv("KAFKA_BROKERS", "localhost:9092")

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	kafkaClient := messaging.NewClient(kafkaBrokers)
	pub := publisher.NewKafkaPublisher(kafkaClient)
	defer pub.Close()

	repo := repository.NewRedisRepository(redisClient)
	svc := service.NewCartService(repo, pub, catalog.NewStaticCatalog())
	handler := httpx.NewCartHandler(svc, 5*time.Second)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok","service":"cart"}`)
	})
	r.Handle("/metrics", metrics.Handler())
	r.Route("/api", handler.Routes)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: otelhttp.NewHandler(r, "cart-service"),
	}

	go func() {
		log.Printf("Cart service listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down cart service...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Println("Cart service stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

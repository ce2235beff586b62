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

	"github.com/dadopl/poc-nocart/internal/checkout-service/consumer"
	"github.com/dadopl/poc-nocart/internal/checkout-service/httpx"
	"github.com/dadopl/poc-nocart/internal/checkout-service/repository"
	"github.com/dadopl/poc-nocart/internal/pkg/messaging"
	"github.com/dadopl/poc-nocart/internal/pkg/metrics"
	"github.com/dadopl/poc-nocart/internal/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	telemetry.InitLogger("checkout-service")

	port := getEnv("CHECKOUT_SERVICE_PORT", "8082")
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	kafkaBrokers := getEnv("KAFKA_BROKERS", "localhost:9092")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	repo := repository.NewRedisRepository(redisClient)

	kafkaClient := messaging.NewClient(kafkaBrokers)
	readers := consumer.NewKafkaReaders(kafkaClient.Brokers, messaging.ConsumerTopics())
	cons := consumer.New(repo, metrics.NewConsumerMetrics("checkout"), readers...)
	defer cons.Close()

	go cons.Run(ctx)
	log.Printf("Checkout consumer running, topics: %v", messaging.ConsumerTopics())

	handler := httpx.NewCheckoutHandler(repo, 5*time.Second)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok","service":"checkout"}`)
	})
	r.Handle("/metrics", metrics.Handler())
	r.Route("/api", handler.Routes)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: otelhttp.NewHandler(r, "checkout-service"),
	}

	go func() {
		log.Printf("Checkout service listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down checkout service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Println("Checkout service stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

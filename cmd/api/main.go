package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/azizikri/storefront-rules/internal/config"
	httphandler "github.com/azizikri/storefront-rules/internal/delivery/http"
	"github.com/azizikri/storefront-rules/internal/delivery/kafka"
	"github.com/azizikri/storefront-rules/internal/repository"
	"github.com/azizikri/storefront-rules/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/twmb/franz-go/pkg/kgo"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := initDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	store := repository.New(db)
	service := usecase.NewProductService(store)
	if err := service.LoadHistory(ctx); err != nil {
		log.Fatalf("Failed to load product history: %v", err)
	}

	var gateway usecase.ProductGateway
	var clients []*kgo.Client

	if cfg.EventDriven() {
		brokers := strings.Split(cfg.KafkaBrokers, ",")

		// The owner of the command partition holds the undo history, so it is
		// rebuilt from the table whenever partitions move.
		consumerClient, err := newConsumerClient(brokers, cfg.KafkaClientID, cfg.KafkaGroupID, kafka.RequestTopics(),
			kgo.Balancers(kgo.RangeBalancer()),
			kgo.OnPartitionsAssigned(func(ctx context.Context, _ *kgo.Client, _ map[string][]int32) {
				if err := service.LoadHistory(ctx); err != nil {
					log.Printf("Failed to reload product history: %v", err)
				}
			}),
		)
		if err != nil {
			log.Fatalf("Failed to create kafka client: %v", err)
		}
		clients = append(clients, consumerClient)

		if err := kafka.EnsureTopics(ctx, consumerClient, cfg); err != nil {
			log.Printf("Warning: failed to ensure topics: %v", err)
		}

		kgateway := kafka.NewGateway(cfg, consumerClient)
		gateway = kgateway

		consumer := kafka.NewConsumer(consumerClient, service)
		go consumer.Start(ctx)

		retryClient, err := newConsumerClient(brokers, cfg.KafkaClientID+"-retry", cfg.KafkaRetryGroupID, kafka.RetryTopics())
		if err != nil {
			log.Fatalf("Failed to create retry kafka client: %v", err)
		}
		clients = append(clients, retryClient)
		go kafka.NewConsumer(retryClient, service).StartRetry(ctx)

		replyClient, err := newReplyClient(brokers, cfg.KafkaClientID+"-reply", kafka.ReplyTopic(cfg.KafkaInstanceID))
		if err != nil {
			log.Fatalf("Failed to create reply kafka client: %v", err)
		}
		clients = append(clients, replyClient)
		startReplyPoller(ctx, replyClient, kgateway)

		log.Printf("Product commands routed through kafka (%s)", cfg.KafkaBrokers)
	} else {
		gateway = kafka.NewDirectGateway(service)
		log.Println("Product commands handled in-process")
	}

	handler := httphandler.NewHandler(gateway)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler.Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Starting server on port %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	for _, client := range clients {
		client.Close()
	}

	wg.Wait()
	log.Println("Shutdown complete")
}

func initDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

func newConsumerClient(brokers []string, clientID, groupID string, topics []string, extra ...kgo.Opt) (*kgo.Client, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	}
	return kgo.NewClient(append(opts, extra...)...)
}

func newReplyClient(brokers []string, clientID, topic string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
	)
}

func startReplyPoller(ctx context.Context, client *kgo.Client, gateway *kafka.Gateway) {
	go func() {
		for {
			fetches := client.PollFetches(ctx)
			if fetches.IsClientClosed() || ctx.Err() != nil {
				return
			}
			iter := fetches.RecordIter()
			for !iter.Done() {
				gateway.HandleResponse(iter.Next().Value)
			}
		}
	}()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/config"
	"github.com/matiahasmasan/GreenUp/internal/database"
	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/messaging"
	"github.com/matiahasmasan/GreenUp/internal/services/notification"
	"github.com/matiahasmasan/GreenUp/internal/services/order"
	"github.com/matiahasmasan/GreenUp/internal/staff"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (order-service, staff-terminal, notification-subscriber)")
		port       = flag.Int("port", 0, "HTTP port (order-service; overrides config)")
		apiURL     = flag.String("api-url", "", "Order service base URL (staff-terminal; overrides config)")
		configPath = flag.String("config", "config.yaml", "Path to config file")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
	})

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "order-service":
		httpPort := cfg.HTTP.Port
		if *port != 0 {
			httpPort = *port
		}
		if err := runOrderService(ctx, cfg, log, httpPort); err != nil {
			log.Error("service_failed", "Order service failed", requestID, err, nil)
			os.Exit(1)
		}
	case "staff-terminal":
		baseURL := cfg.Poller.APIURL
		if *apiURL != "" {
			baseURL = *apiURL
		}
		if err := runStaffTerminal(ctx, cfg, log, baseURL); err != nil {
			log.Error("service_failed", "Staff terminal failed", requestID, err, nil)
			os.Exit(1)
		}
	case "notification-subscriber":
		if err := runNotificationSubscriber(ctx, cfg, log); err != nil {
			log.Error("service_failed", "Notification subscriber failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runOrderService runs the order HTTP API
func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger, port int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)

	store := order.NewPostgresStore(db)
	service := order.NewService(store, publisher, log)
	handler := order.NewHandler(service, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler.SetupRoutes(),
	}

	go func() {
		log.Info("service_started", fmt.Sprintf("Order Service started on port %d", port), requestID, map[string]interface{}{
			"port": port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

// runStaffTerminal runs the polling staff order table
func runStaffTerminal(ctx context.Context, cfg *config.Config, log *logger.Logger, apiURL string) error {
	terminal := staff.NewTerminal(apiURL, cfg.Poller.Interval(), cfg.Poller.NewOrderDisplay(), log)

	if err := terminal.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// runNotificationSubscriber runs the lifecycle event subscriber
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.QueueNotifications, "notification-subscriber", 1)
	subscriber := notification.NewSubscriber(consumer, log)

	return subscriber.Start(ctx)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"procurement/domain"
	"procurement/internal/docs"
	"procurement/internal/repositories"
	"procurement/internal/server"
	"procurement/pkg/cache"
	natsLocal "procurement/pkg/nats"
)

// OrderRepository is the slice of the repository the NATS intake needs.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.PurchaseOrder) (int64, error)
}

// RequestRepository is the slice the custom item request intake needs.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.CustomItemRequest) error
}

func main() {
	if err := Main(); err != nil {
		log.Fatal(err)
	}
}

// Main wraps the entrypoint so every exit path runs the deferred
// cleanups.
func Main() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	o := optsFromEnv()

	db, err := sqlx.Open("postgres", o.ConnectionString())
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	db.SetMaxOpenConns(12)

	orders, err := repositories.NewOrderRepository(ctx, db)
	if err != nil {
		return err
	}
	products, err := repositories.NewProductRepository(ctx, db)
	if err != nil {
		return err
	}
	suppliers, err := repositories.NewSupplierRepository(ctx, db)
	if err != nil {
		return err
	}
	requests, err := repositories.NewRequestRepository(ctx, db)
	if err != nil {
		return err
	}
	bank, err := repositories.NewBankRepository(ctx, db)
	if err != nil {
		return err
	}

	natsClient, err := natsLocal.New(o.natsURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = natsClient.Close()
	}()

	redisClient, err := cache.NewRedis(o.redisAddr)
	if err != nil {
		return err
	}
	defer func() {
		_ = redisClient.Close()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	// New purchase orders arrive over the bus and land in the
	// verification queue.
	go func() {
		err := natsClient.Subscribe("po.submitted", func(msg *nats.Msg) {
			if err := handleSubmitted(ctx, orders, msg.Data); err != nil {
				logger.Error("failed to intake submitted order", zap.Error(err))
			}
		})
		if err != nil {
			logger.Error("failed to subscribe to po.submitted", zap.Error(err))
			// The console cannot do its job without the intake stream.
			sig <- syscall.SIGINT
		}
	}()

	// Buyers' custom item requests arrive the same way and land in the
	// triage queue.
	go func() {
		err := natsClient.Subscribe("request.submitted", func(msg *nats.Msg) {
			if err := handleRequestSubmitted(ctx, requests, msg.Data); err != nil {
				logger.Error("failed to intake custom item request", zap.Error(err))
			}
		})
		if err != nil {
			logger.Error("failed to subscribe to request.submitted", zap.Error(err))
		}
	}()

	// Prometheus scrapes a dedicated listener so the console port stays
	// operator-only.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(o.metricsAddr, mux); err != nil {
			logger.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	ln, err := net.Listen(fiber.NetworkTCP4, o.httpAddress)
	if err != nil {
		return fmt.Errorf("failed to get http listener: %w", err)
	}

	go func() {
		loader := docs.NewLoader(orders, o.docTimeout, logger)
		handler := server.NewHandler(
			orders, products, suppliers, requests, bank,
			loader, cache.NewInMemory(), redisClient, natsClient, logger,
		)

		app := fiber.New(fiber.Config{
			Views:        html.New("./templates", ".html"),
			ServerHeader: "Procurement Console",
		})
		app.Use(server.NewTelemetryMiddleware())
		app.Static("/assets", "./assets")

		auth := server.NewAuthMiddleware(o.jwtSecret, logger)
		handler.MountRoutes(app, auth)

		logger.Info("console listening", zap.String("addr", o.httpAddress))
		if err := app.Listener(ln); err != nil {
			logger.Error("failed to start http server", zap.Error(err))
			sig <- syscall.SIGINT
		}
	}()

	<-sig

	return nil
}

func handleSubmitted(ctx context.Context, repo OrderRepository, data []byte) error {
	order := &domain.PurchaseOrder{}
	if err := json.Unmarshal(data, order); err != nil {
		return fmt.Errorf("failed to unmarshal submitted order: %w", err)
	}

	// Whatever the submitter claims, new orders start in the queue.
	order.Status = domain.StatusPending

	if _, err := repo.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to save submitted order: %w", err)
	}
	return nil
}

func handleRequestSubmitted(ctx context.Context, repo RequestRepository, data []byte) error {
	request := &domain.CustomItemRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		return fmt.Errorf("failed to unmarshal submitted request: %w", err)
	}

	// Submitters cannot pre-triage their own requests.
	request.Status = domain.RequestOpen

	if err := repo.Create(ctx, request); err != nil {
		return fmt.Errorf("failed to save submitted request: %w", err)
	}
	return nil
}

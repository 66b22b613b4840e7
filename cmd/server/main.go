package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/taller/backend/internal/application/catalog"
	inventoryapp "github.com/taller/backend/internal/application/inventory"
	notificationapp "github.com/taller/backend/internal/application/notification"
	partnerapp "github.com/taller/backend/internal/application/partner"
	salesapp "github.com/taller/backend/internal/application/sales"
	workshopapp "github.com/taller/backend/internal/application/workshop"
	"github.com/taller/backend/internal/domain/inventory"
	"github.com/taller/backend/internal/domain/numbering"
	"github.com/taller/backend/internal/infrastructure/auth"
	"github.com/taller/backend/internal/infrastructure/config"
	"github.com/taller/backend/internal/infrastructure/event"
	"github.com/taller/backend/internal/infrastructure/logger"
	infranotification "github.com/taller/backend/internal/infrastructure/notification"
	"github.com/taller/backend/internal/infrastructure/persistence"
	"github.com/taller/backend/internal/infrastructure/queue"
	"github.com/taller/backend/internal/interfaces/http/handler"
	"github.com/taller/backend/internal/interfaces/http/middleware"
	"github.com/taller/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting taller backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormRepairOrderRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)

	saleScope := persistence.NewGormSaleTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)

	// Domain services
	ledger := inventory.NewStockLedger(inventory.OversellPolicy(cfg.Stock.OversellPolicy))
	numbers := numbering.NewService(sequenceRepo)

	// Notification queue and dispatch worker
	var notificationQueue *queue.RedisQueue
	if cfg.Notification.Enabled {
		notificationQueue, err = queue.NewRedisQueue(cfg.Redis, cfg.Notification.QueueKey)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = notificationQueue.Close()
		}()
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	capabilities := auth.NewRoleCapabilityChecker()

	productService := catalogapp.NewProductService(inventoryScope, productRepo, ledger, log)
	stockService := inventoryapp.NewStockService(inventoryScope, movementRepo, ledger, log)
	saleService := salesapp.NewSaleService(saleScope, saleRepo, customerRepo, numbers, ledger, capabilities, log)
	customerService := partnerapp.NewCustomerService(customerRepo)
	orderService := workshopapp.NewRepairOrderService(orderRepo, numbers, log)
	quoteService := workshopapp.NewQuoteService(quoteRepo, customerRepo, numbers, log)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Domain event bus: reorder alerts fire whenever a sale or adjustment
	// drops a product below its minimum stock
	eventBus := event.NewInMemoryBus(log)
	eventBus.Subscribe(inventoryapp.NewLowStockHandler(log).
		WithNotifier(inventoryapp.NewLogStockAlertNotifier(log)))
	if err := eventBus.Start(workerCtx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}
	productService.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)
	saleService.SetEventPublisher(eventBus)

	if notificationQueue != nil {
		saleService.SetNotificationQueue(notificationQueue)
		quoteService.SetNotificationQueue(notificationQueue)

		dispatcher := notificationapp.NewDispatchService(notificationQueue, log,
			infranotification.NewLogEmailSender(log),
			infranotification.NewLogWhatsappSender(log),
		)
		go dispatcher.Run(workerCtx)
	}

	// Flip lapsed quotes to expired once an hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				expired, err := quoteService.ExpireLapsed(workerCtx)
				if err != nil {
					log.Warn("quote expiry sweep failed", zap.Error(err))
					continue
				}
				if expired > 0 {
					log.Info("expired lapsed quotes", zap.Int("count", expired))
				}
			}
		}
	}()

	// HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	middleware.SetupValidator()

	router.Setup(engine, router.Handlers{
		Health:      handler.NewHealthHandler(db),
		Product:     handler.NewProductHandler(productService),
		Stock:       handler.NewStockHandler(stockService),
		Sale:        handler.NewSaleHandler(saleService),
		Customer:    handler.NewCustomerHandler(customerService),
		RepairOrder: handler.NewRepairOrderHandler(orderService),
		Quote:       handler.NewQuoteHandler(quoteService),
	}, jwtService, log)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("event bus shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

package main

import (
	"context"
	"net/http"

	"github.com/facturio/facturio/internal/api"
	v1 "github.com/facturio/facturio/internal/api/v1"
	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/domain/cashregister"
	"github.com/facturio/facturio/internal/domain/contact"
	"github.com/facturio/facturio/internal/domain/document"
	"github.com/facturio/facturio/internal/domain/payment"
	"github.com/facturio/facturio/internal/domain/product"
	"github.com/facturio/facturio/internal/domain/stock"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/tax"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/repository"
	"github.com/facturio/facturio/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			postgres.NewDB,
			func(db *postgres.DB) postgres.IClient { return db },
			repository.NewDocumentRepository,
			repository.NewStockRepository,
			repository.NewPaymentRepository,
			repository.NewCashRegisterRepository,
			repository.NewDirectory,
			repository.NewCatalog,
			repository.NewTaxCalculator,
			newServiceParams,
			service.NewDocumentService,
			service.NewStockService,
			service.NewPaymentService,
			service.NewCashRegisterService,
			service.NewPOSService,
			newHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func newServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	client postgres.IClient,
	documentRepo document.Repository,
	stockRepo stock.Repository,
	paymentRepo payment.Repository,
	cashRegisterRepo cashregister.Repository,
	catalog product.Catalog,
	directory contact.Directory,
	taxCalculator tax.Calculator,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:           log,
		Config:           cfg,
		DB:               client,
		DocumentRepo:     documentRepo,
		StockRepo:        stockRepo,
		PaymentRepo:      paymentRepo,
		CashRegisterRepo: cashRegisterRepo,
		Catalog:          catalog,
		Directory:        directory,
		TaxCalculator:    taxCalculator,
	}
}

func newHandlers(
	documentService service.DocumentService,
	stockService service.StockService,
	paymentService service.PaymentService,
	cashRegisterService service.CashRegisterService,
	posService service.POSService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(),
		Document:     v1.NewDocumentHandler(documentService),
		Stock:        v1.NewStockHandler(stockService),
		Payment:      v1.NewPaymentHandler(paymentService),
		CashRegister: v1.NewCashRegisterHandler(cashRegisterService),
		POS:          v1.NewPOSHandler(posService),
	}
}

func startServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorw("server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			return server.Shutdown(ctx)
		},
	})
}

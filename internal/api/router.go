package api

import (
	v1 "github.com/facturio/facturio/internal/api/v1"
	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/rest/middleware"
	"github.com/facturio/facturio/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Document     *v1.DocumentHandler
	Stock        *v1.StockHandler
	Payment      *v1.PaymentHandler
	CashRegister *v1.CashRegisterHandler
	POS          *v1.POSHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", handlers.Health.Health)

	private := router.Group("/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		documents := private.Group("/documents")
		{
			documents.POST("", handlers.Document.CreateDocument)
			documents.GET("", handlers.Document.ListDocuments)
			documents.GET("/:id", handlers.Document.GetDocument)
			documents.PUT("/:id", handlers.Document.UpdateDocument)
			documents.POST("/:id/confirm", handlers.Document.ConfirmDocument)
			documents.POST("/:id/void", handlers.Document.VoidDocument)
			documents.GET("/:id/payments", handlers.Payment.ListDocumentPayments)
		}

		stock := private.Group("/stock")
		{
			stock.POST("/adjust", handlers.Stock.AdjustStock)
			stock.POST("/transfer", handlers.Stock.TransferStock)
			stock.PUT("/min-quantity", handlers.Stock.SetMinQuantity)
			stock.GET("/levels/:location_id/:product_id", handlers.Stock.GetLevel)
			stock.GET("/products/:product_id/levels", handlers.Stock.ListLevelsByProduct)
			stock.GET("/movements", handlers.Stock.ListMovements)
			stock.GET("/kardex/:location_id/:product_id", handlers.Stock.GetKardex)
		}

		payments := private.Group("/payments")
		{
			payments.POST("", handlers.Payment.AddPayment)
			payments.GET("", handlers.Payment.ListPayments)
			payments.GET("/:id", handlers.Payment.GetPayment)
		}

		registers := private.Group("/cash-registers")
		{
			registers.POST("", handlers.CashRegister.OpenRegister)
			registers.GET("", handlers.CashRegister.ListRegisters)
			registers.GET("/:id", handlers.CashRegister.GetRegister)
			registers.GET("/:id/snapshot", handlers.CashRegister.GetSnapshot)
			registers.POST("/:id/movements", handlers.CashRegister.RecordMovement)
			registers.POST("/:id/close", handlers.CashRegister.CloseRegister)
		}

		private.GET("/locations/:location_id/cash-register", handlers.CashRegister.GetCurrentRegister)
		private.POST("/pos/sales", handlers.POS.ProcessSale)
	}

	return router
}

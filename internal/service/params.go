package service

import (
	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/domain/cashregister"
	"github.com/facturio/facturio/internal/domain/contact"
	"github.com/facturio/facturio/internal/domain/document"
	"github.com/facturio/facturio/internal/domain/payment"
	"github.com/facturio/facturio/internal/domain/product"
	"github.com/facturio/facturio/internal/domain/stock"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/tax"
)

// ServiceParams bundles common dependencies for services. Services receive the
// whole bundle so adding a dependency does not ripple through constructors.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	DocumentRepo     document.Repository
	StockRepo        stock.Repository
	PaymentRepo      payment.Repository
	CashRegisterRepo cashregister.Repository

	// Boundaries
	Catalog       product.Catalog
	Directory     contact.Directory
	TaxCalculator tax.Calculator
}

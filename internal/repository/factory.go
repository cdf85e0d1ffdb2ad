package repository

import (
	"github.com/facturio/facturio/internal/domain/cashregister"
	"github.com/facturio/facturio/internal/domain/contact"
	"github.com/facturio/facturio/internal/domain/document"
	"github.com/facturio/facturio/internal/domain/payment"
	"github.com/facturio/facturio/internal/domain/product"
	"github.com/facturio/facturio/internal/domain/stock"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	pgRepo "github.com/facturio/facturio/internal/repository/postgres"
	"github.com/facturio/facturio/internal/tax"
)

func NewDocumentRepository(db *postgres.DB, logger *logger.Logger) document.Repository {
	return pgRepo.NewDocumentRepository(db, logger)
}

func NewStockRepository(db *postgres.DB, logger *logger.Logger) stock.Repository {
	return pgRepo.NewStockRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return pgRepo.NewPaymentRepository(db, logger)
}

func NewCashRegisterRepository(db *postgres.DB, logger *logger.Logger) cashregister.Repository {
	return pgRepo.NewCashRegisterRepository(db, logger)
}

func NewDirectory(db *postgres.DB, logger *logger.Logger) contact.Directory {
	return pgRepo.NewDirectory(db, logger)
}

func NewCatalog(db *postgres.DB, logger *logger.Logger) product.Catalog {
	return pgRepo.NewCatalog(db, logger)
}

func NewTaxCalculator(db *postgres.DB, logger *logger.Logger) tax.Calculator {
	return pgRepo.NewTaxCalculator(db, logger)
}

package service

import (
	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/domain/contact"
	"github.com/facturio/facturio/internal/domain/product"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/tax"
	"github.com/facturio/facturio/internal/testutil"
	"github.com/shopspring/decimal"
)

type testStores struct {
	documents     *testutil.InMemoryDocumentStore
	stock         *testutil.InMemoryStockStore
	payments      *testutil.InMemoryPaymentStore
	cashRegisters *testutil.InMemoryCashRegisterStore
}

// newTestParams builds a ServiceParams over in-memory stores with a small
// catalog: prod_1 at 100.00 with 13% tax, prod_2 at 47000.00 untaxed.
func newTestParams() (ServiceParams, *testStores) {
	cfg := config.GetDefaultConfig()
	log, _ := logger.NewLogger(cfg)

	stores := &testStores{
		documents:     testutil.NewInMemoryDocumentStore(),
		stock:         testutil.NewInMemoryStockStore(),
		payments:      testutil.NewInMemoryPaymentStore(),
		cashRegisters: testutil.NewInMemoryCashRegisterStore(),
	}

	catalog := testutil.NewFakeCatalog(
		&product.Product{
			ID:           "prod_1",
			Name:         "Standard Widget",
			SKU:          "WID-001",
			DefaultPrice: decimal.NewFromFloat(100.00),
		},
		&product.Product{
			ID:           "prod_2",
			Name:         "Premium Widget",
			SKU:          "WID-002",
			DefaultPrice: decimal.NewFromInt(47000),
		},
	)
	directory := testutil.NewFakeDirectory(
		&contact.Contact{ID: "client_1", Name: "Acme Retail", Type: contact.ContactTypeClient},
		&contact.Contact{ID: "provider_1", Name: "Widget Supply Co", Type: contact.ContactTypeProvider},
	)
	calculator := tax.NewRateTableCalculator(map[string][]tax.Rate{
		"prod_1": {{ID: "tax_vat", Name: "VAT", Percent: decimal.NewFromInt(13)}},
	})

	params := ServiceParams{
		Logger:           log,
		Config:           cfg,
		DB:               testutil.NewMockTxClient(),
		DocumentRepo:     stores.documents,
		StockRepo:        stores.stock,
		PaymentRepo:      stores.payments,
		CashRegisterRepo: stores.cashRegisters,
		Catalog:          catalog,
		Directory:        directory,
		TaxCalculator:    calculator,
	}
	return params, stores
}

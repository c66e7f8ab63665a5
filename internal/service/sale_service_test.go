package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartItem(p *model.Product, qty int, price float64) dto.SaleItemRequest {
	return dto.SaleItemRequest{
		ProductID: p.ID.String(),
		Quantity:  qty,
		UnitPrice: decimal.NewFromFloat(price),
	}
}

func TestCreateSale_EmptyCart(t *testing.T) {
	f := newSaleFixture(true)

	_, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
	})
	assert.True(t, IsValidation(err))
	assert.Empty(t, f.sales.sales)
}

func TestCreateSale_MissingLastName(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 5)

	_, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 1, 10)},
		Customer:      dto.CustomerSnapshot{Name: "Ana"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(10),
	})
	assert.True(t, IsValidation(err))
}

func TestCreateSale_CashWithChange(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 5)

	resp, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 2, 10)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(50),
	})
	require.NoError(t, err)

	assert.Equal(t, "POS-000001", resp.Number)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(20)))
	require.NotNil(t, resp.Change)
	assert.True(t, resp.Change.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, model.SaleStatusCompleted, resp.Status)
	assert.False(t, resp.LedgerSyncPending)

	// Stock dropped 5 → 3 and the movement trail records the sale.
	assert.Equal(t, 3, f.stock.quantity(p.ID, testLocation))
	movements, _ := f.stock.ListMovements(context.Background(), p.ID, 10)
	require.Len(t, movements, 1)
	assert.Equal(t, "sale", movements[0].Type)
	assert.Equal(t, -2, movements[0].Quantity)
	assert.Equal(t, 5, movements[0].QuantityBefore)
	assert.Equal(t, 3, movements[0].QuantityAfter)

	// Accounting entry posted in the same transaction.
	require.Len(t, f.accounting.entries, 1)
	assert.Equal(t, "POS-000001", f.accounting.entries[0].SaleNumber)
	assert.True(t, f.accounting.entries[0].Amount.Equal(decimal.NewFromInt(20)))

	// Register accumulated the net cash (received − change = total).
	session, err := f.registers.FindOpen(context.Background())
	require.NoError(t, err)
	assert.True(t, session.TotalSales.Equal(decimal.NewFromInt(20)))
	assert.True(t, session.TotalCash.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1, session.SalesCount)
	assert.True(t, session.ExpectedCash.Equal(decimal.NewFromInt(120)))
}

func TestCreateSale_CashInsufficient(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 5)

	_, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 2, 10)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(15),
	})
	assert.True(t, IsValidation(err))
	assert.Equal(t, 5, f.stock.quantity(p.ID, testLocation))
}

func TestCreateSale_MixedTenderMismatch(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Wine 750ml", "SKU-002", 100)
	seedStock(f.stock, p, 10)

	// total 200; tendered 150 — off by far more than the tolerance
	_, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 2, 100)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentMixed,
		CashReceived:  decp(100),
		CardAmount:    decp(50),
	})
	assert.True(t, IsValidation(err))
	assert.Empty(t, f.sales.sales)
	assert.Equal(t, 10, f.stock.quantity(p.ID, testLocation))
}

func TestCreateSale_MixedTenderWithinTolerance(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Wine 750ml", "SKU-002", 100)
	seedStock(f.stock, p, 10)

	// total 200; tendered 199.995 — inside the 0.01 rounding slack
	resp, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:          []dto.SaleItemRequest{cartItem(p, 2, 100)},
		Customer:       dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod:  model.PaymentMixed,
		CashReceived:   decp(100),
		CardAmount:     decp(50),
		TransferAmount: decp(49.995),
	})
	require.NoError(t, err)

	// Mixed sale splits per tender bucket on the register.
	session, err := f.registers.FindOpen(context.Background())
	require.NoError(t, err)
	assert.True(t, session.TotalCash.Equal(decimal.NewFromInt(100)))
	assert.True(t, session.TotalCard.Equal(decimal.NewFromInt(50)))
	assert.True(t, session.TotalTransfer.Equal(decimal.NewFromFloat(49.995)))
	assert.Equal(t, model.PaymentMixed, resp.PaymentMethod)
}

func TestCreateSale_InsufficientStock(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Beer 355ml", "SKU-003", 5)
	seedStock(f.stock, p, 2)

	_, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 3, 5)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(20),
	})
	require.Error(t, err)
	assert.True(t, IsInsufficientStock(err))
	assert.ErrorContains(t, err, "Beer 355ml")

	// Rejection leaves zero writes behind.
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.accounting.entries)
	assert.Equal(t, 2, f.stock.quantity(p.ID, testLocation))
}

func TestCreateSale_InactiveProduct(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Discontinued", "SKU-004", 10)
	p.Active = false
	seedStock(f.stock, p, 5)

	_, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 1, 10)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(10),
	})
	assert.True(t, IsValidation(err))
}

func TestCreateSale_NoOpenRegister(t *testing.T) {
	f := newSaleFixture(false)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 5)

	// The sale must complete even with no drawer session to accumulate into.
	resp, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 1, 10)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(10),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusCompleted, resp.Status)
	assert.False(t, resp.LedgerSyncPending)
	assert.Equal(t, 4, f.stock.quantity(p.ID, testLocation))
}

func TestCreateSale_SequenceIncrements(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 10)

	req := dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 1, 10)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(10),
	}
	first, err := f.svc.CreateSale(context.Background(), "cashier1", req)
	require.NoError(t, err)
	second, err := f.svc.CreateSale(context.Background(), "cashier1", req)
	require.NoError(t, err)

	assert.Equal(t, "POS-000001", first.Number)
	assert.Equal(t, "POS-000002", second.Number)
}

func TestCreateSale_NewCustomerFromPhone(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 5)

	_, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{cartItem(p, 2, 10)},
		Customer: dto.CustomerSnapshot{
			Name:     "Ana",
			LastName: "Lopez",
			Phone:    strp("5551234567"),
		},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(20),
	})
	require.NoError(t, err)

	c, err := f.customers.FindByPhone(context.Background(), "5551234567")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", c.Name)
	assert.True(t, c.TotalPurchases.Equal(decimal.NewFromInt(20)))
	assert.NotNil(t, c.LastPurchaseDate)
}

func TestCreateSale_ExistingCustomerAccumulates(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 10)

	req := dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{cartItem(p, 1, 10)},
		Customer: dto.CustomerSnapshot{
			Name:     "Ana",
			LastName: "Lopez",
			Phone:    strp("5551234567"),
		},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(10),
	}
	_, err := f.svc.CreateSale(context.Background(), "cashier1", req)
	require.NoError(t, err)
	_, err = f.svc.CreateSale(context.Background(), "cashier1", req)
	require.NoError(t, err)

	c, err := f.customers.FindByPhone(context.Background(), "5551234567")
	require.NoError(t, err)
	assert.True(t, c.TotalPurchases.Equal(decimal.NewFromInt(20)))
	assert.Len(t, f.customers.customers, 1)
}

func TestCreateSale_DiscountReducesTotal(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Wine 750ml", "SKU-002", 100)
	seedStock(f.stock, p, 5)

	item := cartItem(p, 2, 100)
	item.Discount = decimal.NewFromInt(20)
	resp, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{item},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCard,
		CardAmount:    decp(180),
	})
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(180)))
	assert.True(t, resp.DiscountTotal.Equal(decimal.NewFromInt(20)))
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(180)))
	assert.True(t, resp.Tax.IsZero())
	// Tender fields not relevant to a card sale stay nil.
	assert.Nil(t, resp.CashReceived)
	assert.Nil(t, resp.Change)
	assert.Nil(t, resp.TransferAmount)
}

func TestCancelSale_RestoresStock(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 5)

	resp, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 2, 10)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(20),
		Notes:         strp("walk-in"),
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.stock.quantity(p.ID, testLocation))

	saleID := uuid.MustParse(resp.ID)
	require.NoError(t, f.svc.CancelSale(context.Background(), saleID, "customer returned items"))

	assert.Equal(t, 5, f.stock.quantity(p.ID, testLocation))
	cancelled, err := f.sales.FindByID(context.Background(), saleID)
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.Notes)
	assert.Equal(t, "walk-in\nCancelled: customer returned items", *cancelled.Notes)

	// Restock is audited as its own movement, the original is untouched.
	movements, _ := f.stock.ListMovements(context.Background(), p.ID, 10)
	require.Len(t, movements, 2)
	assert.Equal(t, "cancel_restore", movements[1].Type)
	assert.Equal(t, 2, movements[1].Quantity)

	// Accounting entry survives the cancellation.
	assert.Len(t, f.accounting.entries, 1)
}

func TestCancelSale_AlreadyCancelled(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 5)

	resp, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 2, 10)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(20),
	})
	require.NoError(t, err)

	saleID := uuid.MustParse(resp.ID)
	require.NoError(t, f.svc.CancelSale(context.Background(), saleID, "customer returned items"))

	err = f.svc.CancelSale(context.Background(), saleID, "cancelled twice by mistake")
	assert.True(t, IsStateConflict(err))
	// The second attempt must not restock again.
	assert.Equal(t, 5, f.stock.quantity(p.ID, testLocation))
}

func TestCreateSale_LastUnitContention(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Limited item", "SKU-009", 30)
	seedStock(f.stock, p, 1)

	req := dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 1, 30)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(30),
	}

	// Two sales contend for the last unit: the conditional decrement lets
	// exactly one through, the other is rejected with the product named.
	_, err := f.svc.CreateSale(context.Background(), "cashier1", req)
	require.NoError(t, err)

	_, err = f.svc.CreateSale(context.Background(), "cashier2", req)
	require.Error(t, err)
	assert.True(t, IsInsufficientStock(err))
	assert.Equal(t, 0, f.stock.quantity(p.ID, testLocation))
	assert.Len(t, f.sales.sales, 1)
}

func TestCreateSale_LastUnitContention_Concurrent(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Limited item", "SKU-009", 30)
	seedStock(f.stock, p, 1)

	req := dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 1, 30)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(30),
	}

	// Two cashiers race for the last unit at the same time. The conditional
	// decrement admits exactly one regardless of interleaving; the stubs run
	// without transactions, so only the decrement outcome is asserted here.
	const racers = 2
	results := make(chan error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		cashier := fmt.Sprintf("cashier%d", i+1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateSale(context.Background(), cashier, req)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, IsInsufficientStock(err))
		rejected++
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, f.stock.quantity(p.ID, testLocation))
}

func TestCreateSale_PersistFailureLeavesStockUntouched(t *testing.T) {
	f := newSaleFixture(true)
	p := seedProduct(f.products, "Soda 500ml", "SKU-001", 10)
	seedStock(f.stock, p, 5)
	f.sales.failCreate = errors.New("connection reset")

	_, err := f.svc.CreateSale(context.Background(), "cashier1", dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{cartItem(p, 2, 10)},
		Customer:      dto.CustomerSnapshot{Name: "Ana", LastName: "Lopez"},
		PaymentMethod: model.PaymentCash,
		CashReceived:  decp(20),
	})
	require.Error(t, err)
	assert.Equal(t, 5, f.stock.quantity(p.ID, testLocation))
	assert.Empty(t, f.accounting.entries)
}

func TestCancelSale_NotFound(t *testing.T) {
	f := newSaleFixture(true)
	err := f.svc.CancelSale(context.Background(), uuid.New(), "no such sale")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSale_NotFound(t *testing.T) {
	f := newSaleFixture(true)
	_, err := f.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelSale_LookupFailurePropagates(t *testing.T) {
	f := newSaleFixture(true)
	f.sales.failFind = errors.New("connection reset by peer")

	err := f.svc.CancelSale(context.Background(), uuid.New(), "irrelevant")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, f.sales.failFind)
}

func TestGetSale_LookupFailurePropagates(t *testing.T) {
	f := newSaleFixture(true)
	f.sales.failFind = errors.New("connection reset by peer")

	_, err := f.svc.Get(context.Background(), uuid.New())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, f.sales.failFind)
}

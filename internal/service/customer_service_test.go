package service

import (
	"context"
	"testing"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerSvc() (CustomerService, *stubCustomerRepo) {
	repo := newStubCustomerRepo()
	return NewCustomerService(repo), repo
}

func TestCreateCustomer_SeededWithFirstPurchase(t *testing.T) {
	svc, _ := newCustomerSvc()

	c, err := svc.Create(context.Background(), dto.CreateCustomerRequest{
		Phone: "5551234567",
		Name:  "Ana Lopez",
		Email: strp("ana@example.com"),
	}, decimal.NewFromInt(150))
	require.NoError(t, err)

	assert.True(t, c.TotalPurchases.Equal(decimal.NewFromInt(150)))
	assert.NotNil(t, c.LastPurchaseDate)
	assert.True(t, c.Active)
}

func TestCreateCustomer_ZeroPurchaseLeavesDateUnset(t *testing.T) {
	svc, _ := newCustomerSvc()

	c, err := svc.Create(context.Background(), dto.CreateCustomerRequest{
		Phone: "5551234567",
		Name:  "Ana Lopez",
	}, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, c.TotalPurchases.IsZero())
	assert.Nil(t, c.LastPurchaseDate)
}

func TestRecordPurchase_Accumulates(t *testing.T) {
	svc, _ := newCustomerSvc()
	c, err := svc.Create(context.Background(), dto.CreateCustomerRequest{
		Phone: "5551234567",
		Name:  "Ana Lopez",
	}, decimal.NewFromInt(100))
	require.NoError(t, err)

	require.NoError(t, svc.RecordPurchase(context.Background(), c.ID, decimal.NewFromInt(50)))
	require.NoError(t, svc.RecordPurchase(context.Background(), c.ID, decimal.NewFromInt(25)))

	updated, err := svc.FindByPhone(context.Background(), "5551234567")
	require.NoError(t, err)
	assert.True(t, updated.TotalPurchases.Equal(decimal.NewFromInt(175)))
}

func TestRecordPurchase_NotFound(t *testing.T) {
	svc, _ := newCustomerSvc()
	err := svc.RecordPurchase(context.Background(), uuid.New(), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByPhone_NotFound(t *testing.T) {
	svc, _ := newCustomerSvc()
	_, err := svc.FindByPhone(context.Background(), "0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

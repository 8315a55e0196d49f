package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/store"
)

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) CustomerExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerStore) CreateTransaction(ctx context.Context, t *models.Transaction, items []models.Item) error {
	args := m.Called(ctx, t, items)
	return args.Error(0)
}

func (m *MockLedgerStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerStore) ListTransactions(ctx context.Context, f store.TransactionFilter) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Transaction), args.Get(1).(int64), args.Error(2)
}

// ApplyPayment hands the configured transaction to fn and applies the
// resulting patch, as the real store does inside its SQL transaction.
func (m *MockLedgerStore) ApplyPayment(ctx context.Context, id int64, fn store.PaymentFunc) (*models.Transaction, *models.Payment, error) {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, nil, err
	}

	cur := *args.Get(0).(*models.Transaction)
	p, patch, err := fn(&cur)
	if err != nil {
		return nil, nil, err
	}
	applyPatch(&cur, patch)
	p.TransactionID = cur.ID
	return &cur, p, nil
}

func applyPatch(t *models.Transaction, patch models.TransactionPatch) {
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.InterestAmount != nil {
		t.InterestAmount = *patch.InterestAmount
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	if patch.CompletedAt != nil {
		completed := *patch.CompletedAt
		t.CompletedAt = &completed
	}
	if patch.Notes != nil {
		t.Notes = patch.Notes
	}
}

type MockCustomerStore struct {
	mock.Mock
}

func (m *MockCustomerStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerStore) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerStore) UpdateCustomer(ctx context.Context, id int64, patch models.CustomerPatch) (*models.Customer, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerStore) ListCustomers(ctx context.Context, f store.CustomerFilter) ([]models.Customer, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Customer), args.Get(1).(int64), args.Error(2)
}

type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) ActiveLoanSummary(ctx context.Context) (int64, decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(decimal.Decimal), args.Get(2).(decimal.Decimal), args.Error(3)
}

func (m *MockReportStore) CountTransactionsByStatus(ctx context.Context, status models.TransactionStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportStore) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportStore) RecentCustomers(ctx context.Context, limit int) ([]models.Customer, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockReportStore) RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockReportStore) ListInventory(ctx context.Context, p store.Page) ([]models.InventoryItem, int64, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.InventoryItem), args.Get(1).(int64), args.Error(2)
}

package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/services"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, search string, page int) (models.Page[models.Customer], error) {
	args := m.Called(ctx, search, page)
	return args.Get(0).(models.Page[models.Customer]), args.Error(1)
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, in services.CreateCustomerInput) (*models.Customer, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, id int64, in services.UpdateCustomerInput) (*models.Customer, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateTransaction(ctx context.Context, actorID int64, in services.CreateTransactionInput) (*models.Transaction, error) {
	args := m.Called(ctx, actorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLoanService) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLoanService) ListTransactions(ctx context.Context, status string, page int) (models.Page[models.Transaction], error) {
	args := m.Called(ctx, status, page)
	return args.Get(0).(models.Page[models.Transaction]), args.Error(1)
}

func (m *MockLoanService) Extend(ctx context.Context, actorID, id int64, in services.ExtendInput) (*services.ExtendResult, error) {
	args := m.Called(ctx, actorID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExtendResult), args.Error(1)
}

func (m *MockLoanService) Repay(ctx context.Context, actorID, id int64, in services.RepayInput) (*services.RepayResult, error) {
	args := m.Called(ctx, actorID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RepayResult), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *MockReportService) ListInventory(ctx context.Context, page int) (models.Page[models.InventoryItem], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(models.Page[models.InventoryItem]), args.Error(1)
}

type MockPhotoStore struct {
	mock.Mock
}

func (m *MockPhotoStore) SaveItemPhoto(filename string, r io.Reader) (string, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(filename, data)
	return args.String(0), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

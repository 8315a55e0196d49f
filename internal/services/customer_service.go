package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/store"
)

type CustomerStore interface {
	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, patch models.CustomerPatch) (*models.Customer, error)
	ListCustomers(ctx context.Context, f store.CustomerFilter) ([]models.Customer, int64, error)
}

type CustomerService struct {
	store     CustomerStore
	validator *ValidationHelper
	logger    *zap.Logger
	onChange  func(ctx context.Context)
}

// OnLedgerChange registers fn to run after a customer is registered.
func (s *CustomerService) OnLedgerChange(fn func(ctx context.Context)) {
	s.onChange = fn
}

func NewCustomerService(st CustomerStore, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{store: st, validator: NewValidationHelper(), logger: logger.Named("customer")}
}

type CreateCustomerInput struct {
	NIK          string           `json:"nik" validate:"required,max=32"`
	Name         string           `json:"name" validate:"required,max=255"`
	Phone        string           `json:"phone" validate:"required,max=32"`
	Address      string           `json:"address" validate:"required"`
	PhotoKTPPath *string          `json:"photo_ktp_path" validate:"omitempty,max=512"`
	TrustScore   *decimal.Decimal `json:"trust_score" validate:"omitempty,gte=0,lte=100,money"`
}

// UpdateCustomerInput only touches the fields that are present.
type UpdateCustomerInput struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Phone        *string          `json:"phone" validate:"omitempty,min=1,max=32"`
	Address      *string          `json:"address" validate:"omitempty,min=1"`
	PhotoKTPPath *string          `json:"photo_ktp_path" validate:"omitempty,max=512"`
	TrustScore   *decimal.Decimal `json:"trust_score" validate:"omitempty,gte=0,lte=100,money"`
}

func (s *CustomerService) ListCustomers(ctx context.Context, search string, page int) (models.Page[models.Customer], error) {
	p := store.Page{Number: page, PerPage: store.DefaultPerPage}.Normalize(store.DefaultPerPage)
	customers, total, err := s.store.ListCustomers(ctx, store.CustomerFilter{Search: search, Page: p})
	if err != nil {
		return models.Page[models.Customer]{}, err
	}
	return models.NewPage(customers, p.Number, p.PerPage, total), nil
}

// CreateCustomer registers a borrower. A nik that is already registered
// fails with DUPLICATE_KEY.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	if err := s.validator.ValidateStruct(&in); err != nil {
		return nil, err
	}

	c := &models.Customer{
		NIK:          in.NIK,
		Name:         in.Name,
		Phone:        in.Phone,
		Address:      in.Address,
		PhotoKTPPath: in.PhotoKTPPath,
		TrustScore:   in.TrustScore,
	}
	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	if s.onChange != nil {
		s.onChange(ctx)
	}
	s.logger.Info("customer registered", zap.Int64("customer_id", c.ID))
	return c, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, in UpdateCustomerInput) (*models.Customer, error) {
	if err := s.validator.ValidateStruct(&in); err != nil {
		return nil, err
	}

	patch := models.CustomerPatch{
		Name:         in.Name,
		Phone:        in.Phone,
		Address:      in.Address,
		PhotoKTPPath: in.PhotoKTPPath,
		TrustScore:   in.TrustScore,
	}
	if !patch.Empty() {
		if _, err := s.store.UpdateCustomer(ctx, id, patch); err != nil {
			return nil, err
		}
	}
	// Reload so callers always get the customer with their transactions.
	return s.store.GetCustomer(ctx, id)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/apperrors"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/audit"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/interest"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/metrics"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/store"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/valuation"
)

const DefaultNumberRetryLimit = 5

// LedgerStore is the persistence the loan lifecycle needs.
type LedgerStore interface {
	CustomerExists(ctx context.Context, id int64) (bool, error)
	CreateTransaction(ctx context.Context, t *models.Transaction, items []models.Item) error
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	ListTransactions(ctx context.Context, f store.TransactionFilter) ([]models.Transaction, int64, error)
	ApplyPayment(ctx context.Context, id int64, fn store.PaymentFunc) (*models.Transaction, *models.Payment, error)
}

type LoanService struct {
	store      LedgerStore
	policy     *interest.Policy
	valuation  valuation.Engine
	validator  *ValidationHelper
	logger     *zap.Logger
	audit      *audit.Logger
	metrics    *metrics.Metrics
	newCode    CodeGenerator
	retryLimit int
	onChange   func(ctx context.Context)
}

func NewLoanService(st LedgerStore, policy *interest.Policy, engine valuation.Engine, retryLimit int, logger *zap.Logger, m *metrics.Metrics) *LoanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retryLimit <= 0 {
		retryLimit = DefaultNumberRetryLimit
	}
	return &LoanService{
		store:      st,
		policy:     policy,
		valuation:  engine,
		validator:  NewValidationHelper(),
		logger:     logger.Named("loan"),
		audit:      audit.NewLogger(logger),
		metrics:    m,
		newCode:    generateSecureCode,
		retryLimit: retryLimit,
	}
}

type ItemInput struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Category     string  `json:"category" validate:"required,max=255"`
	Brand        string  `json:"brand" validate:"omitempty,max=255"`
	SerialNumber *string `json:"serial_number" validate:"omitempty,max=255"`
	Description  string  `json:"description"`
	// EstimatedValue wins over MarketPrice; one of them must be present.
	EstimatedValue *decimal.Decimal `json:"estimated_value" validate:"omitempty,gte=0,money"`
	MarketPrice    *decimal.Decimal `json:"market_price" validate:"omitempty,gte=0,money"`
	Grade          *string          `json:"grade" validate:"omitempty,grade"`
	PhotoPath      *string          `json:"photo_path" validate:"omitempty,max=512"`
}

type CreateTransactionInput struct {
	CustomerID   int64            `json:"customer_id" validate:"required,gt=0"`
	LoanAmount   *decimal.Decimal `json:"loan_amount" validate:"required,gte=0,money"`
	DurationDays int              `json:"duration_days" validate:"gte=1,lte=3650"`
	Notes        *string          `json:"notes" validate:"omitempty,max=2000"`
	Items        []ItemInput      `json:"items" validate:"required,min=1,dive"`
}

type ExtendInput struct {
	Amount *decimal.Decimal `json:"amount" validate:"required,gte=0,money"`
	Days   int              `json:"days" validate:"gte=1,lte=3650"`
}

type RepayInput struct {
	Amount *decimal.Decimal   `json:"amount" validate:"required,gte=0,money"`
	Type   models.PaymentType `json:"type" validate:"omitempty,oneof=interest_only full_redemption"`
}

type ExtendResult struct {
	NewDueDate  time.Time           `json:"new_due_date"`
	Payment     *models.Payment     `json:"payment"`
	Transaction *models.Transaction `json:"transaction"`
}

type RepayResult struct {
	Payment     *models.Payment     `json:"payment"`
	Transaction *models.Transaction `json:"transaction"`
}

func errUnauthenticated() error {
	return apperrors.New(apperrors.CodeUnauthenticated, "an authenticated actor is required")
}

func validatePaymentAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.Validation(map[string]string{"amount": "must be greater than or equal to 0"})
	}
	if !ValidMoney(amount) {
		return apperrors.Validation(map[string]string{"amount": "must be less than 10000000000000 with at most 2 decimal places"})
	}
	return nil
}

func invalidState(t *models.Transaction, action string) error {
	return apperrors.New(apperrors.CodeInvalidStateTransition,
		fmt.Sprintf("cannot %s transaction %s with status %s", action, t.TransactionNumber, t.Status))
}

func (s *LoanService) fail(operation string, id, actorID int64, err error) error {
	code := apperrors.CodeOf(err)
	s.metrics.RecordLoanError(operation, code)
	if code == apperrors.CodeInternal {
		s.logger.Error("loan operation failed", zap.String("operation", operation), zap.Int64("transaction_id", id), zap.Error(err))
	}
	if id > 0 {
		s.audit.LogError(operation, id, actorID, err)
	}
	return err
}

// buildItems resolves each item's estimated value, deriving it from the
// market price and grade when it is not given.
func (s *LoanService) buildItems(in []ItemInput) ([]models.Item, error) {
	items := make([]models.Item, 0, len(in))
	fields := map[string]string{}

	for i, it := range in {
		var value decimal.Decimal
		grade := ""
		if it.Grade != nil {
			grade = *it.Grade
		}

		switch {
		case it.EstimatedValue != nil:
			value = *it.EstimatedValue
		case it.MarketPrice != nil:
			v, err := s.valuation.Estimate(*it.MarketPrice, grade)
			if err != nil {
				fields[fmt.Sprintf("items[%d].grade", i)] = "must be one of: A B C D E"
				continue
			}
			value = v
		default:
			fields[fmt.Sprintf("items[%d].estimated_value", i)] = "is required"
			continue
		}

		var gradePtr *string
		if grade != "" {
			g, err := valuation.ParseGrade(grade)
			if err != nil {
				fields[fmt.Sprintf("items[%d].grade", i)] = "must be one of: A B C D E"
				continue
			}
			gs := string(g)
			gradePtr = &gs
		}

		brand := it.Brand
		if brand == "" {
			brand = models.DefaultBrand
		}

		items = append(items, models.Item{
			Name:           it.Name,
			Category:       it.Category,
			Brand:          brand,
			SerialNumber:   it.SerialNumber,
			Description:    it.Description,
			EstimatedValue: value,
			PhotoPath:      it.PhotoPath,
			Grade:          gradePtr,
		})
	}

	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}
	return items, nil
}

// CreateTransaction opens a new active pawn loan for an existing customer.
// The transaction and its items are written atomically; a colliding
// transaction number is regenerated up to the retry limit.
func (s *LoanService) CreateTransaction(ctx context.Context, actorID int64, in CreateTransactionInput) (*models.Transaction, error) {
	const op = "create"
	if actorID <= 0 {
		return nil, s.fail(op, 0, actorID, errUnauthenticated())
	}
	if err := s.validator.ValidateStruct(&in); err != nil {
		return nil, s.fail(op, 0, actorID, err)
	}

	items, err := s.buildItems(in.Items)
	if err != nil {
		return nil, s.fail(op, 0, actorID, err)
	}

	exists, err := s.store.CustomerExists(ctx, in.CustomerID)
	if err != nil {
		return nil, s.fail(op, 0, actorID, err)
	}
	if !exists {
		return nil, s.fail(op, 0, actorID, apperrors.Validation(map[string]string{
			"customer_id": "selected customer does not exist",
		}))
	}

	quote := s.policy.Quote(*in.LoanAmount, in.DurationDays, s.policy.Rate)

	for attempt := 1; attempt <= s.retryLimit; attempt++ {
		trx := &models.Transaction{
			TransactionNumber: formatNumber(TransactionPrefix, quote.StartDate, s.newCode()),
			CustomerID:        in.CustomerID,
			UserID:            actorID,
			Status:            models.StatusActive,
			LoanAmount:        *in.LoanAmount,
			InterestRate:      s.policy.Rate,
			InterestAmount:    quote.InterestAmount,
			StartDate:         quote.StartDate,
			DueDate:           quote.DueDate,
			Notes:             in.Notes,
		}

		err := s.store.CreateTransaction(ctx, trx, items)
		if err == nil {
			s.changed(ctx)
			s.metrics.RecordTransactionCreated()
			s.audit.LogTransactionCreated(trx.TransactionNumber, actorID, trx.LoanAmount, trx.CustomerID)
			s.logger.Info("transaction created",
				zap.String("transaction_number", trx.TransactionNumber),
				zap.Int64("customer_id", trx.CustomerID),
				zap.Int("items", len(trx.Items)),
			)
			return trx, nil
		}
		if !apperrors.Is(err, apperrors.CodeDuplicateKey) {
			return nil, s.fail(op, 0, actorID, err)
		}

		s.metrics.RecordNumberCollision()
		s.logger.Warn("transaction number collision", zap.String("transaction_number", trx.TransactionNumber), zap.Int("attempt", attempt))
	}

	return nil, s.fail(op, 0, actorID, apperrors.New(apperrors.CodeTransientConflict, "could not allocate a unique transaction number"))
}

// OnLedgerChange registers fn to run after every committed write.
func (s *LoanService) OnLedgerChange(fn func(ctx context.Context)) {
	s.onChange = fn
}

func (s *LoanService) changed(ctx context.Context) {
	if s.onChange != nil {
		s.onChange(ctx)
	}
}

// recordPayment runs build against the locked transaction, regenerating the
// payment number when it collides.
func (s *LoanService) recordPayment(ctx context.Context, op string, id, actorID int64, build store.PaymentFunc) (*models.Transaction, *models.Payment, error) {
	for attempt := 1; attempt <= s.retryLimit; attempt++ {
		trx, payment, err := s.store.ApplyPayment(ctx, id, build)
		if err == nil {
			s.changed(ctx)
			s.metrics.RecordPayment(string(payment.PaymentType))
			s.audit.LogPayment(trx.TransactionNumber, payment.PaymentNumber, string(payment.PaymentType), actorID, payment.Amount)
			return trx, payment, nil
		}
		if !apperrors.Is(err, apperrors.CodeDuplicateKey) {
			return nil, nil, s.fail(op, id, actorID, err)
		}

		s.metrics.RecordNumberCollision()
		s.logger.Warn("payment number collision", zap.Int64("transaction_id", id), zap.Int("attempt", attempt))
	}
	return nil, nil, s.fail(op, id, actorID, apperrors.New(apperrors.CodeTransientConflict, "could not allocate a unique payment number"))
}

// Extend records an extension payment and pushes the due date back by
// in.Days. The interest amount is charged again unchanged.
func (s *LoanService) Extend(ctx context.Context, actorID, id int64, in ExtendInput) (*ExtendResult, error) {
	const op = "extend"
	if actorID <= 0 {
		return nil, s.fail(op, id, actorID, errUnauthenticated())
	}
	if err := s.validator.ValidateStruct(&in); err != nil {
		return nil, s.fail(op, id, actorID, err)
	}

	amount := *in.Amount
	trx, payment, err := s.recordPayment(ctx, op, id, actorID, func(cur *models.Transaction) (*models.Payment, models.TransactionPatch, error) {
		if cur.Status != models.StatusActive {
			return nil, models.TransactionPatch{}, invalidState(cur, "extend")
		}
		if !amount.Equal(cur.InterestAmount) {
			s.logger.Warn("extension amount differs from interest amount",
				zap.String("transaction_number", cur.TransactionNumber),
				zap.String("amount", amount.String()),
				zap.String("interest_amount", cur.InterestAmount.String()),
			)
		}

		now := s.policy.CurrentTime()
		due := interest.AddDays(cur.DueDate, in.Days)
		return &models.Payment{
			PaymentNumber: formatNumber(ExtensionPaymentPrefix, now, s.newCode()),
			Amount:        amount,
			PaymentType:   s.policy.ExtensionPaymentType,
			PaymentDate:   now,
			UserID:        actorID,
		}, models.TransactionPatch{DueDate: &due}, nil
	})
	if err != nil {
		return nil, err
	}

	return &ExtendResult{NewDueDate: trx.DueDate, Payment: payment, Transaction: trx}, nil
}

// RepayPartialInterest records an interest-only payment and advances the due
// date by the configured fixed number of days.
func (s *LoanService) RepayPartialInterest(ctx context.Context, actorID, id int64, amount decimal.Decimal) (*RepayResult, error) {
	const op = "repay_interest"
	if actorID <= 0 {
		return nil, s.fail(op, id, actorID, errUnauthenticated())
	}
	if err := validatePaymentAmount(amount); err != nil {
		return nil, s.fail(op, id, actorID, err)
	}

	trx, payment, err := s.recordPayment(ctx, op, id, actorID, func(cur *models.Transaction) (*models.Payment, models.TransactionPatch, error) {
		if cur.Status != models.StatusActive {
			return nil, models.TransactionPatch{}, invalidState(cur, "repay interest on")
		}

		now := s.policy.CurrentTime()
		due := interest.AddDays(cur.DueDate, s.policy.InterestOnlyExtensionDays)
		return &models.Payment{
			PaymentNumber: formatNumber(InterestPaymentPrefix, now, s.newCode()),
			Amount:        amount,
			PaymentType:   models.PaymentInterestOnly,
			PaymentDate:   now,
			UserID:        actorID,
		}, models.TransactionPatch{DueDate: &due}, nil
	})
	if err != nil {
		return nil, err
	}
	return &RepayResult{Payment: payment, Transaction: trx}, nil
}

// RepayFull redeems the loan: it records a full redemption payment and
// completes the transaction. A second call fails because the transaction is
// no longer active.
func (s *LoanService) RepayFull(ctx context.Context, actorID, id int64, amount decimal.Decimal) (*RepayResult, error) {
	const op = "repay_full"
	if actorID <= 0 {
		return nil, s.fail(op, id, actorID, errUnauthenticated())
	}
	if err := validatePaymentAmount(amount); err != nil {
		return nil, s.fail(op, id, actorID, err)
	}

	trx, payment, err := s.recordPayment(ctx, op, id, actorID, func(cur *models.Transaction) (*models.Payment, models.TransactionPatch, error) {
		if cur.Status != models.StatusActive {
			return nil, models.TransactionPatch{}, invalidState(cur, "redeem")
		}

		due := cur.LoanAmount.Add(cur.InterestAmount)
		if !amount.Equal(due) {
			s.logger.Warn("redemption amount differs from loan plus interest",
				zap.String("transaction_number", cur.TransactionNumber),
				zap.String("amount", amount.String()),
				zap.String("expected", due.String()),
			)
		}

		now := s.policy.CurrentTime()
		status := models.StatusCompleted
		return &models.Payment{
			PaymentNumber: formatNumber(RedemptionPaymentPrefix, now, s.newCode()),
			Amount:        amount,
			PaymentType:   models.PaymentFullRedemption,
			PaymentDate:   now,
			UserID:        actorID,
		}, models.TransactionPatch{Status: &status, CompletedAt: &now}, nil
	})
	if err != nil {
		return nil, err
	}
	return &RepayResult{Payment: payment, Transaction: trx}, nil
}

// Repay dispatches on in.Type: interest_only pays interest and extends,
// anything else redeems the loan.
func (s *LoanService) Repay(ctx context.Context, actorID, id int64, in RepayInput) (*RepayResult, error) {
	if actorID <= 0 {
		return nil, s.fail("repay", id, actorID, errUnauthenticated())
	}
	if err := s.validator.ValidateStruct(&in); err != nil {
		return nil, s.fail("repay", id, actorID, err)
	}

	if in.Type == models.PaymentInterestOnly {
		return s.RepayPartialInterest(ctx, actorID, id, *in.Amount)
	}
	return s.RepayFull(ctx, actorID, id, *in.Amount)
}

func (s *LoanService) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *LoanService) ListTransactions(ctx context.Context, status string, page int) (models.Page[models.Transaction], error) {
	st := models.TransactionStatus(status)
	if status != "" && !st.Valid() {
		return models.Page[models.Transaction]{}, apperrors.Validation(map[string]string{
			"status": "must be one of: active completed overdue auctioned",
		})
	}

	p := store.Page{Number: page, PerPage: store.DefaultPerPage}.Normalize(store.DefaultPerPage)
	txs, total, err := s.store.ListTransactions(ctx, store.TransactionFilter{Status: st, Page: p})
	if err != nil {
		return models.Page[models.Transaction]{}, err
	}
	return models.NewPage(txs, p.Number, p.PerPage, total), nil
}

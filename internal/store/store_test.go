package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/apperrors"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
)

var (
	ctx     = context.Background()
	created = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func columns(list string) []string {
	return strings.Split(list, ", ")
}

func transactionRow(id int64, status models.TransactionStatus, due time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(columns(transactionColumns)).
		AddRow(id, "TRX-20240115-AB12", 7, 1, string(status), "1000000.00", "5.00", "50000.00",
			created, due, nil, nil, created, created)
}

func TestCreateCustomer(t *testing.T) {
	s, mock := newMockStore(t)

	t.Run("fills id and timestamps", func(t *testing.T) {
		c := &models.Customer{NIK: "3201010101010001", Name: "Budi", Phone: "0812", Address: "Bandung"}

		mock.ExpectQuery("INSERT INTO customers").
			WithArgs(c.NIK, c.Name, c.Phone, c.Address, nil, nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, created, created))

		require.NoError(t, s.CreateCustomer(ctx, c))
		assert.Equal(t, int64(7), c.ID)
		assert.Equal(t, created, c.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate nik", func(t *testing.T) {
		c := &models.Customer{NIK: "3201010101010001", Name: "Budi", Phone: "0812", Address: "Bandung"}

		mock.ExpectQuery("INSERT INTO customers").
			WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "customers_nik_unique"})

		err := s.CreateCustomer(ctx, c)
		assert.True(t, apperrors.Is(err, apperrors.CodeDuplicateKey))
		assert.Contains(t, err.Error(), "nik")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListCustomers_Search(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers WHERE LOWER\(name\) LIKE \$1`).
		WithArgs("%bu\\_di%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`SELECT .+ FROM customers WHERE .+ ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("%bu\\_di%", 10, 10).
		WillReturnRows(sqlmock.NewRows(columns(customerColumns)).
			AddRow(3, "320101", "Budi", "0812", "Bandung", nil, "80.50", created, created))

	customers, total, err := s.ListCustomers(ctx, CustomerFilter{Search: " BU_DI ", Page: Page{Number: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, customers, 1)
	assert.Equal(t, "Budi", customers[0].Name)
	require.NotNil(t, customers[0].TrustScore)
	assert.Equal(t, "80.5", customers[0].TrustScore.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCustomer(t *testing.T) {
	s, mock := newMockStore(t)

	t.Run("only given fields", func(t *testing.T) {
		phone := "0899"
		mock.ExpectQuery(`UPDATE customers SET phone = \$1, updated_at = \$2 WHERE id = \$3 RETURNING`).
			WithArgs(phone, sqlmock.AnyArg(), int64(3)).
			WillReturnRows(sqlmock.NewRows(columns(customerColumns)).
				AddRow(3, "320101", "Budi", phone, "Bandung", nil, nil, created, created))

		c, err := s.UpdateCustomer(ctx, 3, models.CustomerPatch{Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, phone, c.Phone)
		assert.Nil(t, c.TrustScore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing customer", func(t *testing.T) {
		name := "X"
		mock.ExpectQuery("UPDATE customers").WillReturnError(sql.ErrNoRows)

		_, err := s.UpdateCustomer(ctx, 99, models.CustomerPatch{Name: &name})
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateTransaction(t *testing.T) {
	s, mock := newMockStore(t)

	newTx := func() *models.Transaction {
		return &models.Transaction{
			TransactionNumber: "TRX-20240115-AB12",
			CustomerID:        7,
			UserID:            1,
			Status:            models.StatusActive,
			LoanAmount:        decimal.NewFromInt(1_000_000),
			InterestRate:      decimal.NewFromInt(5),
			InterestAmount:    decimal.NewFromInt(50_000),
			StartDate:         created,
			DueDate:           created.AddDate(0, 0, 30),
		}
	}
	items := []models.Item{
		{Name: "Laptop", Category: "Elektronik", EstimatedValue: decimal.NewFromInt(800_000)},
		{Name: "Cincin", Category: "Perhiasan", Brand: "Antam", EstimatedValue: decimal.NewFromInt(400_000)},
	}

	t.Run("writes transaction and every item", func(t *testing.T) {
		trx := newTx()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs("TRX-20240115-AB12", int64(7), int64(1), "active", "1000000", "5", "50000",
				trx.StartDate, trx.DueDate, nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, created, created))
		mock.ExpectQuery("INSERT INTO transaction_items").
			WithArgs(int64(42), "Laptop", "Elektronik", "-", nil, "", "800000", nil, nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, created))
		mock.ExpectQuery("INSERT INTO transaction_items").
			WithArgs(int64(42), "Cincin", "Perhiasan", "Antam", nil, "", "400000", nil, nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(2, created))
		mock.ExpectCommit()

		require.NoError(t, s.CreateTransaction(ctx, trx, items))
		assert.Equal(t, int64(42), trx.ID)
		require.Len(t, trx.Items, 2)
		assert.Equal(t, "-", trx.Items[0].Brand)
		assert.Equal(t, int64(42), trx.Items[1].TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("item failure rolls everything back", func(t *testing.T) {
		trx := newTx()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(43, created, created))
		mock.ExpectQuery("INSERT INTO transaction_items").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, created))
		mock.ExpectQuery("INSERT INTO transaction_items").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := s.CreateTransaction(ctx, trx, items)
		assert.Error(t, err)
		assert.Zero(t, trx.ID)
		assert.Nil(t, trx.Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown customer", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO transactions").
			WillReturnError(&pq.Error{Code: pgForeignKeyViolation, Constraint: "transactions_customer_id_fkey"})
		mock.ExpectRollback()

		err := s.CreateTransaction(ctx, newTx(), items)
		assert.Equal(t, apperrors.CodeForeignKeyViolation, apperrors.CodeOf(err))
		assert.Contains(t, err.Error(), "customer")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("colliding number", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO transactions").
			WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "transactions_number_unique"})
		mock.ExpectRollback()

		err := s.CreateTransaction(ctx, newTx(), items)
		assert.Equal(t, apperrors.CodeDuplicateKey, apperrors.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	due := created.AddDate(0, 0, 30)

	t.Run("with customer, items and payments", func(t *testing.T) {
		cols := append(columns(transactionColumns), columns(customerColumns)...)
		mock.ExpectQuery(`FROM transactions t JOIN customers c ON c.id = t.customer_id WHERE t.id = \$1`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(
				42, "TRX-20240115-AB12", 7, 1, "active", "1000000.00", "5.00", "50000.00",
				created, due, nil, nil, created, created,
				7, "320101", "Budi", "0812", "Bandung", nil, nil, created, created))
		mock.ExpectQuery("FROM transaction_items WHERE transaction_id = ANY").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(columns(itemColumns)).
				AddRow(1, 42, "Laptop", "Elektronik", "-", nil, "", "800000.00", nil, "B", created))
		mock.ExpectQuery("FROM payments WHERE transaction_id = \\$1").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(columns(paymentColumns)).
				AddRow(5, 42, "PAY-EXT-20240201-ZZ99", "50000.00", "extension", created, 1, created))

		trx, err := s.GetTransaction(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, trx.Status)
		assert.True(t, trx.LoanAmount.Equal(decimal.NewFromInt(1_000_000)))
		require.NotNil(t, trx.Customer)
		assert.Equal(t, "Budi", trx.Customer.Name)
		require.Len(t, trx.Items, 1)
		require.NotNil(t, trx.Items[0].Grade)
		assert.Equal(t, "B", *trx.Items[0].Grade)
		require.Len(t, trx.Payments, 1)
		assert.Equal(t, models.PaymentExtension, trx.Payments[0].PaymentType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("FROM transactions t").WithArgs(int64(404)).WillReturnError(sql.ErrNoRows)

		_, err := s.GetTransaction(ctx, 404)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateTransaction(t *testing.T) {
	s, mock := newMockStore(t)

	t.Run("only given fields", func(t *testing.T) {
		due := created.AddDate(0, 0, 45)
		mock.ExpectQuery(`UPDATE transactions SET due_date = \$1, updated_at = \$2 WHERE id = \$3 RETURNING`).
			WithArgs(due, sqlmock.AnyArg(), int64(42)).
			WillReturnRows(transactionRow(42, models.StatusActive, due))

		trx, err := s.UpdateTransaction(ctx, 42, models.TransactionPatch{DueDate: &due})
		require.NoError(t, err)
		assert.Equal(t, int64(42), trx.ID)
		assert.Equal(t, due, trx.DueDate)
		assert.Equal(t, models.StatusActive, trx.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status and notes keep column order", func(t *testing.T) {
		status := models.StatusCompleted
		notes := "ditebus"
		mock.ExpectQuery(`UPDATE transactions SET status = \$1, notes = \$2, updated_at = \$3 WHERE id = \$4 RETURNING`).
			WithArgs(string(status), notes, sqlmock.AnyArg(), int64(42)).
			WillReturnRows(transactionRow(42, status, created))

		trx, err := s.UpdateTransaction(ctx, 42, models.TransactionPatch{Status: &status, Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, status, trx.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing transaction", func(t *testing.T) {
		due := created
		mock.ExpectQuery("UPDATE transactions").WillReturnError(sql.ErrNoRows)

		_, err := s.UpdateTransaction(ctx, 404, models.TransactionPatch{DueDate: &due})
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAddPayment(t *testing.T) {
	s, mock := newMockStore(t)

	t.Run("appends", func(t *testing.T) {
		p := &models.Payment{TransactionID: 42, PaymentNumber: "PAY-PYM-20240115-AA11", Amount: decimal.NewFromInt(1_050_000),
			PaymentType: models.PaymentFullRedemption, PaymentDate: created, UserID: 1}

		mock.ExpectBegin()
		mock.ExpectQuery("FROM transactions WHERE id = \\$1 FOR UPDATE").
			WithArgs(int64(42)).
			WillReturnRows(transactionRow(42, models.StatusActive, created.AddDate(0, 0, 30)))
		mock.ExpectQuery("INSERT INTO payments").
			WithArgs(int64(42), p.PaymentNumber, "1050000", "full_redemption", created, int64(1), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, created))
		mock.ExpectCommit()

		require.NoError(t, s.AddPayment(ctx, p))
		assert.Equal(t, int64(9), p.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(int64(404)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := s.AddPayment(ctx, &models.Payment{TransactionID: 404})
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplyPayment(t *testing.T) {
	s, mock := newMockStore(t)
	due := created.AddDate(0, 0, 30)

	t.Run("payment and update commit together", func(t *testing.T) {
		newDue := due.AddDate(0, 0, 15)

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(int64(42)).
			WillReturnRows(transactionRow(42, models.StatusActive, due))
		mock.ExpectQuery("INSERT INTO payments").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, created))
		mock.ExpectQuery(`UPDATE transactions SET due_date = \$1, updated_at = \$2 WHERE id = \$3 RETURNING`).
			WithArgs(newDue, sqlmock.AnyArg(), int64(42)).
			WillReturnRows(transactionRow(42, models.StatusActive, newDue))
		mock.ExpectCommit()

		var seen models.TransactionStatus
		trx, p, err := s.ApplyPayment(ctx, 42, func(cur *models.Transaction) (*models.Payment, models.TransactionPatch, error) {
			seen = cur.Status
			return &models.Payment{PaymentNumber: "PAY-EXT-1", Amount: cur.InterestAmount, PaymentType: models.PaymentExtension,
					PaymentDate: created, UserID: 1},
				models.TransactionPatch{DueDate: &newDue}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, seen)
		assert.Equal(t, newDue, trx.DueDate)
		assert.Equal(t, int64(42), p.TransactionID)
		assert.Equal(t, int64(10), p.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejection writes nothing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(int64(42)).
			WillReturnRows(transactionRow(42, models.StatusCompleted, due))
		mock.ExpectRollback()

		_, _, err := s.ApplyPayment(ctx, 42, func(cur *models.Transaction) (*models.Payment, models.TransactionPatch, error) {
			return nil, models.TransactionPatch{}, apperrors.New(apperrors.CodeInvalidStateTransition, "transaction is completed")
		})
		assert.Equal(t, apperrors.CodeInvalidStateTransition, apperrors.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update failure rolls back payment", func(t *testing.T) {
		status := models.StatusCompleted

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(int64(42)).
			WillReturnRows(transactionRow(42, models.StatusActive, due))
		mock.ExpectQuery("INSERT INTO payments").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, created))
		mock.ExpectQuery("UPDATE transactions").WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, _, err := s.ApplyPayment(ctx, 42, func(cur *models.Transaction) (*models.Payment, models.TransactionPatch, error) {
			return &models.Payment{PaymentNumber: "PAY-PYM-1", PaymentType: models.PaymentFullRedemption, PaymentDate: created, UserID: 1},
				models.TransactionPatch{Status: &status}, nil
		})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestActiveLoanSummary(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(loan_amount\), 0\), COALESCE\(SUM\(interest_amount\), 0\) FROM transactions WHERE status = \$1`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count", "total", "interest"}).AddRow(3, "3500000.00", "175000.00"))

	count, total, interest, err := s.ActiveLoanSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, "3500000", total.String())
	assert.Equal(t, "175000", interest.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListInventory(t *testing.T) {
	s, mock := newMockStore(t)
	due := created.AddDate(0, 0, 30)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transaction_items i JOIN transactions t`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	cols := append(columns(itemColumns), "transaction_number", "due_date")
	mock.ExpectQuery(`FROM transaction_items i JOIN transactions t ON t.id = i.transaction_id WHERE t.status = \$1`).
		WithArgs("active", 20, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 42, "Laptop", "Elektronik", "-", "SN-1", "", "800000.00", "/storage/transaction_items/a.jpg", "B", created,
				"TRX-20240115-AB12", due))

	items, total, err := s.ListInventory(ctx, Page{Number: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "TRX-20240115-AB12", items[0].TransactionNumber)
	assert.Equal(t, due, items[0].DueDate)
	require.NotNil(t, items[0].SerialNumber)
	assert.Equal(t, "SN-1", *items[0].SerialNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageNormalize(t *testing.T) {
	p := Page{}.Normalize(20)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = Page{Number: 3, PerPage: 1000}.Normalize(10)
	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, 200, p.Offset())
}

func TestGetUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, email, role, created_at FROM users WHERE id = \\$1").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "created_at"}).
			AddRow(2, "Petugas User", "petugas@example.com", "petugas", created))
	mock.ExpectQuery("FROM users").WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	u, err := s.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "petugas", u.Role)

	_, err = s.GetUser(ctx, 9)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

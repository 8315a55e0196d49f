package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/apperrors"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
)

const (
	transactionColumns = `id, transaction_number, customer_id, user_id, status, loan_amount, interest_rate, interest_amount, start_date, due_date, completed_at, notes, created_at, updated_at`
	itemColumns        = `id, transaction_id, name, category, brand, serial_number, description, estimated_value, photo_path, grade, created_at`
	paymentColumns     = `id, transaction_id, payment_number, amount, payment_type, payment_date, user_id, created_at`
)

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

func scanTransactionFields(t *models.Transaction) []any {
	return []any{
		&t.ID, &t.TransactionNumber, &t.CustomerID, &t.UserID, &t.Status,
		&t.LoanAmount, &t.InterestRate, &t.InterestAmount, &t.StartDate, &t.DueDate,
		&t.CompletedAt, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	}
}

func scanTransaction(row rowScanner, t *models.Transaction) error {
	return row.Scan(scanTransactionFields(t)...)
}

func scanItem(row rowScanner, it *models.Item) error {
	return row.Scan(&it.ID, &it.TransactionID, &it.Name, &it.Category, &it.Brand, &it.SerialNumber,
		&it.Description, &it.EstimatedValue, &it.PhotoPath, &it.Grade, &it.CreatedAt)
}

func scanPayment(row rowScanner, p *models.Payment) error {
	return row.Scan(&p.ID, &p.TransactionID, &p.PaymentNumber, &p.Amount, &p.PaymentType,
		&p.PaymentDate, &p.UserID, &p.CreatedAt)
}

// CreateTransaction inserts t and all of its items in one SQL transaction.
// Either every row is written or none is.
func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction, items []models.Item) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		err := tx.QueryRowContext(ctx, `
			INSERT INTO transactions (transaction_number, customer_id, user_id, status, loan_amount, interest_rate,
				interest_amount, start_date, due_date, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
			RETURNING id, created_at, updated_at`,
			t.TransactionNumber, t.CustomerID, t.UserID, t.Status, t.LoanAmount, t.InterestRate,
			t.InterestAmount, t.StartDate, t.DueDate, t.Notes, now,
		).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return translate(err, "transaction")
		}

		t.Items = make([]models.Item, 0, len(items))
		for _, it := range items {
			it.TransactionID = t.ID
			if it.Brand == "" {
				it.Brand = models.DefaultBrand
			}
			err := tx.QueryRowContext(ctx, `
				INSERT INTO transaction_items (transaction_id, name, category, brand, serial_number, description,
					estimated_value, photo_path, grade, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING id, created_at`,
				it.TransactionID, it.Name, it.Category, it.Brand, it.SerialNumber, it.Description,
				it.EstimatedValue, it.PhotoPath, it.Grade, now,
			).Scan(&it.ID, &it.CreatedAt)
			if err != nil {
				return translate(err, "transaction item")
			}
			t.Items = append(t.Items, it)
		}
		return nil
	})
	if err != nil {
		t.ID = 0
		t.Items = nil
	}
	return err
}

// GetTransaction loads a transaction with its customer, items and payments.
func (s *Store) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	var t models.Transaction
	var c models.Customer
	var trust decimal.NullDecimal

	dest := append(scanTransactionFields(&t),
		&c.ID, &c.NIK, &c.Name, &c.Phone, &c.Address, &c.PhotoKTPPath, &trust, &c.CreatedAt, &c.UpdatedAt)
	err := s.db.QueryRowContext(ctx, `
		SELECT `+prefixed("t", transactionColumns)+`, `+prefixed("c", customerColumns)+`
		FROM transactions t
		JOIN customers c ON c.id = t.customer_id
		WHERE t.id = $1`, id).Scan(dest...)
	if err != nil {
		return nil, translate(err, "transaction")
	}
	if trust.Valid {
		c.TrustScore = &trust.Decimal
	}
	t.Customer = &c

	items, err := s.itemsFor(ctx, s.db, []int64{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = items[t.ID]
	if t.Items == nil {
		t.Items = []models.Item{}
	}

	t.Payments, err = s.paymentsFor(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type TransactionFilter struct {
	Status models.TransactionStatus
	Page   Page
}

// ListTransactions returns a page of transactions with customer and items
// attached.
func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, int64, error) {
	page := f.Page.Normalize(DefaultPerPage)

	where := ""
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		where = `WHERE t.status = $1`
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.PerPage, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM transactions t
		JOIN customers c ON c.id = t.customer_id
		%s
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $%d OFFSET $%d`,
		prefixed("t", transactionColumns), prefixed("c", customerColumns), where, len(args)-1, len(args))

	txs, err := s.queryTransactionsWithCustomer(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachItems(ctx, txs); err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (s *Store) RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return s.queryTransactionsWithCustomer(ctx, `
		SELECT `+prefixed("t", transactionColumns)+`, `+prefixed("c", customerColumns)+`
		FROM transactions t
		JOIN customers c ON c.id = t.customer_id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $1`, limit)
}

func (s *Store) queryTransactionsWithCustomer(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		var c models.Customer
		var trust decimal.NullDecimal
		dest := append(scanTransactionFields(&t),
			&c.ID, &c.NIK, &c.Name, &c.Phone, &c.Address, &c.PhotoKTPPath, &trust, &c.CreatedAt, &c.UpdatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if trust.Valid {
			c.TrustScore = &trust.Decimal
		}
		t.Customer = &c
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *Store) attachItems(ctx context.Context, txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	ids := make([]int64, len(txs))
	for i := range txs {
		ids[i] = txs[i].ID
	}
	items, err := s.itemsFor(ctx, s.db, ids)
	if err != nil {
		return err
	}
	for i := range txs {
		txs[i].Items = items[txs[i].ID]
		if txs[i].Items == nil {
			txs[i].Items = []models.Item{}
		}
	}
	return nil
}

func (s *Store) itemsFor(ctx context.Context, q querier, ids []int64) (map[int64][]models.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM transaction_items
		WHERE transaction_id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]models.Item, len(ids))
	for rows.Next() {
		var it models.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		out[it.TransactionID] = append(out[it.TransactionID], it)
	}
	return out, rows.Err()
}

func (s *Store) paymentsFor(ctx context.Context, transactionID int64) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE transaction_id = $1
		ORDER BY payment_date, id`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// UpdateTransaction applies the non-nil fields of patch and returns the
// updated row.
func (s *Store) UpdateTransaction(ctx context.Context, id int64, patch models.TransactionPatch) (*models.Transaction, error) {
	return updateTransaction(ctx, s.db, id, patch)
}

func updateTransaction(ctx context.Context, q querier, id int64, patch models.TransactionPatch) (*models.Transaction, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.InterestAmount != nil {
		add("interest_amount", *patch.InterestAmount)
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.CompletedAt != nil {
		add("completed_at", *patch.CompletedAt)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE transactions SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), transactionColumns)

	var t models.Transaction
	if err := scanTransaction(q.QueryRowContext(ctx, query, args...), &t); err != nil {
		return nil, translate(err, "transaction")
	}
	return &t, nil
}

// AddPayment appends p to an existing transaction.
func (s *Store) AddPayment(ctx context.Context, p *models.Payment) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := lockTransaction(ctx, tx, p.TransactionID); err != nil {
			return err
		}
		return insertPayment(ctx, tx, p)
	})
}

func insertPayment(ctx context.Context, q querier, p *models.Payment) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO payments (transaction_id, payment_number, amount, payment_type, payment_date, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		p.TransactionID, p.PaymentNumber, p.Amount, p.PaymentType, p.PaymentDate, p.UserID, time.Now(),
	).Scan(&p.ID, &p.CreatedAt)
	return translate(err, "payment")
}

func lockTransaction(ctx context.Context, q querier, id int64) (*models.Transaction, error) {
	var t models.Transaction
	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
	if err := scanTransaction(row, &t); err != nil {
		return nil, translate(err, "transaction")
	}
	return &t, nil
}

// PaymentFunc inspects the locked transaction and decides which payment to
// record and how the transaction changes. Returning an error aborts without
// writing anything.
type PaymentFunc func(t *models.Transaction) (*models.Payment, models.TransactionPatch, error)

// ApplyPayment is the single write path for extensions and repayments. The
// transaction row stays locked from the read until the payment and the
// update are committed, so concurrent calls for one transaction serialize.
func (s *Store) ApplyPayment(ctx context.Context, id int64, fn PaymentFunc) (*models.Transaction, *models.Payment, error) {
	var (
		updated *models.Transaction
		payment *models.Payment
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := lockTransaction(ctx, tx, id)
		if err != nil {
			return err
		}

		p, patch, err := fn(current)
		if err != nil {
			return err
		}
		if p == nil {
			return apperrors.New(apperrors.CodeInternal, "no payment produced")
		}

		p.TransactionID = current.ID
		if err := insertPayment(ctx, tx, p); err != nil {
			return err
		}

		if patch.Empty() {
			updated = current
		} else if updated, err = updateTransaction(ctx, tx, id, patch); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, payment, nil
}

// ActiveLoanSummary returns the count, principal sum and interest sum of
// active transactions.
func (s *Store) ActiveLoanSummary(ctx context.Context) (int64, decimal.Decimal, decimal.Decimal, error) {
	var (
		count    int64
		total    decimal.Decimal
		interest decimal.Decimal
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(loan_amount), 0), COALESCE(SUM(interest_amount), 0)
		FROM transactions
		WHERE status = $1`, models.StatusActive).Scan(&count, &total, &interest)
	return count, total, interest, err
}

func (s *Store) CountTransactionsByStatus(ctx context.Context, status models.TransactionStatus) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE status = $1`, status).Scan(&n)
	return n, err
}

// ListInventory pages through items whose transaction is still active.
func (s *Store) ListInventory(ctx context.Context, p Page) ([]models.InventoryItem, int64, error) {
	page := p.Normalize(DefaultPerPage)

	var total int64
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transaction_items i
		JOIN transactions t ON t.id = i.transaction_id
		WHERE t.status = $1`, models.StatusActive).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixed("i", itemColumns)+`, t.transaction_number, t.due_date
		FROM transaction_items i
		JOIN transactions t ON t.id = i.transaction_id
		WHERE t.status = $1
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $2 OFFSET $3`, models.StatusActive, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.InventoryItem{}
	for rows.Next() {
		var inv models.InventoryItem
		it := &inv.Item
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.Name, &it.Category, &it.Brand, &it.SerialNumber,
			&it.Description, &it.EstimatedValue, &it.PhotoPath, &it.Grade, &it.CreatedAt,
			&inv.TransactionNumber, &inv.DueDate); err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

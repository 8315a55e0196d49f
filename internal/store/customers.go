package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
)

const customerColumns = `id, nik, name, phone, address, photo_ktp_path, trust_score, created_at, updated_at`

func scanCustomer(row rowScanner, c *models.Customer) error {
	var trust decimal.NullDecimal
	if err := row.Scan(&c.ID, &c.NIK, &c.Name, &c.Phone, &c.Address, &c.PhotoKTPPath, &trust, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	c.TrustScore = nil
	if trust.Valid {
		c.TrustScore = &trust.Decimal
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// CreateCustomer inserts c and fills its id and timestamps.
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	now := time.Now()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (nik, name, phone, address, photo_ktp_path, trust_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at`,
		c.NIK, c.Name, c.Phone, c.Address, c.PhotoKTPPath, nullDecimal(c.TrustScore), now,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err, "customer")
}

func (s *Store) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// GetCustomer returns the customer together with its transactions, newest
// first.
func (s *Store) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var c models.Customer
	row := s.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	if err := scanCustomer(row, &c); err != nil {
		return nil, translate(err, "customer")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Transactions = []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, err
		}
		c.Transactions = append(c.Transactions, t)
	}
	return &c, rows.Err()
}

// UpdateCustomer applies the non-nil fields of patch. The nik is immutable.
func (s *Store) UpdateCustomer(ctx context.Context, id int64, patch models.CustomerPatch) (*models.Customer, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.PhotoKTPPath != nil {
		add("photo_ktp_path", *patch.PhotoKTPPath)
	}
	if patch.TrustScore != nil {
		add("trust_score", *patch.TrustScore)
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE customers SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), customerColumns)

	var c models.Customer
	if err := scanCustomer(s.db.QueryRowContext(ctx, query, args...), &c); err != nil {
		return nil, translate(err, "customer")
	}
	return &c, nil
}

type CustomerFilter struct {
	Search string
	Page   Page
}

// ListCustomers matches Search case-insensitively against name, nik and
// phone.
func (s *Store) ListCustomers(ctx context.Context, f CustomerFilter) ([]models.Customer, int64, error) {
	page := f.Page.Normalize(DefaultPerPage)

	where := ""
	args := []any{}
	if strings.TrimSpace(f.Search) != "" {
		args = append(args, containsPattern(f.Search))
		where = `WHERE LOWER(name) LIKE $1 OR LOWER(nik) LIKE $1 OR LOWER(phone) LIKE $1`
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.PerPage, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		customerColumns, where, len(args)-1, len(args))

	customers, err := s.queryCustomers(ctx, query, args...)
	return customers, total, err
}

func (s *Store) RecentCustomers(ctx context.Context, limit int) ([]models.Customer, error) {
	return s.queryCustomers(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n)
	return n, err
}

func (s *Store) queryCustomers(ctx context.Context, query string, args ...any) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

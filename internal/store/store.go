// Package store is the Postgres-backed ledger of customers, pawn
// transactions, their items and payments.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/apperrors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	DefaultPerPage = 10
	MaxPerPage     = 100
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// inTx runs fn inside a single SQL transaction, committing only when fn
// succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Page normalizes a 1-based page number and page size into LIMIT/OFFSET.
type Page struct {
	Number  int
	PerPage int
}

func (p Page) Normalize(defaultPerPage int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// translate maps driver errors onto the ledger's typed errors.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.Wrap(apperrors.CodeNotFound, entity+" not found", err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return apperrors.Wrap(apperrors.CodeDuplicateKey, duplicateMessage(pqErr.Constraint), err)
		case pgForeignKeyViolation:
			return apperrors.Wrap(apperrors.CodeForeignKeyViolation, foreignKeyMessage(pqErr.Constraint), err)
		}
	}
	return err
}

func duplicateMessage(constraint string) string {
	switch constraint {
	case "customers_nik_unique":
		return "nik has already been taken"
	case "transactions_number_unique":
		return "transaction_number has already been taken"
	case "payments_number_unique":
		return "payment_number has already been taken"
	}
	return "duplicate key"
}

func foreignKeyMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "customer_id"):
		return "customer does not exist"
	case strings.Contains(constraint, "user_id"):
		return "user does not exist"
	case strings.Contains(constraint, "transaction_id"):
		return "transaction does not exist"
	}
	return "referenced record does not exist"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

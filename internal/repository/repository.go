// Package repository holds the PostgreSQL access for categories, vendors and
// deals. Errors returned wrap the class sentinels of internal/common/errors.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "dealsdash/internal/common/errors"

	"github.com/lib/pq"
)

var (
	ErrCategoryNotFound  = fmt.Errorf("%w: category", apperrors.ErrNotFound)
	ErrVendorNotFound    = fmt.Errorf("%w: vendor", apperrors.ErrNotFound)
	ErrDealNotFound      = fmt.Errorf("%w: deal", apperrors.ErrNotFound)
	ErrDuplicateCategory = fmt.Errorf("%w: category name already exists", apperrors.ErrConflict)
)

const pqUniqueViolation = "23505"

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrStorageUnavailable, op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// requireOneRow turns "0 rows affected" into notFound.
func requireOneRow(res sql.Result, op string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

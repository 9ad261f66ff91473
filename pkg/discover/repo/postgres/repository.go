package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-discover/pkg/discover"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements the discover index, source, entity and profile
// interfaces using PostgreSQL
type Repository struct {
	db DBTX
}

var (
	_ discover.IndexRepository  = (*Repository)(nil)
	_ discover.SourceRepository = (*Repository)(nil)
	_ discover.EntityStore      = (*Repository)(nil)
	_ discover.ProfileProvider  = (*Repository)(nil)
)

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// withTx runs fn in a transaction when the underlying handle can open one.
// A handle that is already a transaction opens a savepoint.
func (r *Repository) withTx(ctx context.Context, fn func(db DBTX) error) error {
	b, ok := r.db.(txBeginner)
	if !ok {
		return fn(r.db)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", operation, discover.ErrSourceExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: referenced record not found: %w", operation, discover.ErrSourceNotFound)
		case "23502": // not_null_violation
			return fmt.Errorf("%s: required field %s is missing", operation, pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("%s: value rejected by constraint %s", operation, pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return discover.ErrSourceNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Package dbx holds the small database/sql seams the repositories share:
// DBTX, satisfied by both *sql.DB and *sql.Tx, and WithTx for running a
// group of statements atomically.
package dbx

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is the subset of database/sql the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Beginner starts transactions. *sql.DB and *sql.Conn implement it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Snapshot is a read-only transaction in which every statement sees the same
// committed state of the database.
var Snapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// WithTx runs fn inside a transaction opened on db with opts. The transaction
// commits when fn returns nil and rolls back otherwise; a panic in fn rolls
// back and is re-raised. A failed rollback is joined to fn's error.
//
//	err := dbx.WithTx(ctx, db, dbx.Snapshot, func(ctx context.Context, tx dbx.DBTX) error {
//	    return tx.QueryRowContext(ctx, "SELECT count(*) FROM images").Scan(&n)
//	})
func WithTx(ctx context.Context, db Beginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		rbErr := tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, rbErr)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	committed = true
	return tx.Commit()
}

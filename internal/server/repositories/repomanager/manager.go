// Package repomanager vends repository implementations bound to a store
// handle, so services can run the same repositories on the plain connection
// or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pixo/internal/dbx"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/images"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users(db dbx.DBTX) users.Repository
	Images(db dbx.DBTX) images.Repository

	// DB is the non-transactional handle passed to the repository factories.
	DB() dbx.DBTX
	WithTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx dbx.DBTX) error) error

	Ping(ctx context.Context) error
	Close() error
}

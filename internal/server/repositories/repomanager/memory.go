package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pixo/internal/dbx"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/images"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/memory"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/users"
)

// MemoryRepositoryManager serves repositories from a memory.Store. The
// DBTX handles it passes around are always nil and ignored.
type MemoryRepositoryManager struct {
	store *memory.Store
}

func NewMemoryRepositoryManager(store *memory.Store) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: store}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.store.Users() }

func (m *MemoryRepositoryManager) Images(dbx.DBTX) images.Repository { return m.store.Images() }

func (m *MemoryRepositoryManager) DB() dbx.DBTX { return nil }

// WithTx runs fn directly; each memory operation is atomic on its own but
// there is no multi-statement snapshot.
func (m *MemoryRepositoryManager) WithTx(ctx context.Context, _ *sql.TxOptions, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }

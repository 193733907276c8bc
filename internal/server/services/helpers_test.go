package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pixo/internal/dbx"
	"github.com/dmitrijs2005/pixo/internal/server/config"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/images"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/memory"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	cfg.StoreTimeout = time.Second
	return cfg
}

func memoryManager() (*memory.Store, *repomanager.MemoryRepositoryManager) {
	store := memory.NewStore()
	return store, repomanager.NewMemoryRepositoryManager(store)
}

// brokenManager serves repositories that fail every call with err.
type brokenManager struct {
	repomanager.MemoryRepositoryManager
	err error
}

func (m *brokenManager) Users(dbx.DBTX) users.Repository   { return &brokenUsers{err: m.err} }
func (m *brokenManager) Images(dbx.DBTX) images.Repository { return &brokenImages{err: m.err} }

type brokenUsers struct {
	users.Repository
	err error
}

func (r *brokenUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, r.err }
func (r *brokenUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, r.err
}

type brokenImages struct {
	images.Repository
	err error
}

func (r *brokenImages) Create(context.Context, *models.Image) error { return r.err }
func (r *brokenImages) ListBefore(context.Context, *time.Time, int) ([]*models.Image, error) {
	return nil, r.err
}
func (r *brokenImages) Count(context.Context) (int64, error) { return 0, r.err }
func (r *brokenImages) IncrementViews(context.Context, string) (*models.Image, error) {
	return nil, r.err
}
func (r *brokenImages) AddLike(context.Context, string, string) (int64, error) { return 0, r.err }

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/logging"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type countingCache struct {
	data map[string]*models.Profile
	gets int
	sets int
	err  error
}

func (c *countingCache) Get(_ context.Context, username string) (*models.Profile, bool, error) {
	c.gets++
	if c.err != nil {
		return nil, false, c.err
	}
	p, ok := c.data[username]
	return p, ok, nil
}

func (c *countingCache) Set(_ context.Context, p *models.Profile) error {
	c.sets++
	if c.err != nil {
		return c.err
	}
	c.data[p.Username] = p
	return nil
}

func newUserService(t *testing.T) *UserService {
	t.Helper()
	_, m := memoryManager()
	return NewUserService(m, nil, logging.Nop{}, testConfig())
}

func TestUserService_RegisterLoginVerify(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	u, err := svc.Register(ctx, "alice", "s3cret", "alice.png")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.UserName)
	assert.Empty(t, u.PasswordHash)

	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, &models.Identity{UserID: u.ID, Username: "alice"}, id)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	_, err := svc.Register(ctx, "bob", "x", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "y", "")
	require.ErrorIs(t, err, common.ErrDuplicateUser)

	// the first registration is intact
	_, err = svc.Login(ctx, "bob", "x")
	require.NoError(t, err)
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register(context.Background(), "  ", "pw", "")
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.Register(context.Background(), "carol", "", "")
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.Register(context.Background(), "carol", strings.Repeat("p", 80), "")
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUserService_LoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)
	_, err := svc.Register(ctx, "dave", "right", "")
	require.NoError(t, err)

	_, wrongPw := svc.Login(ctx, "dave", "wrong")
	_, unknown := svc.Login(ctx, "nobody", "right")

	require.ErrorIs(t, wrongPw, common.ErrInvalidCredentials)
	require.ErrorIs(t, unknown, common.ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestUserService_Verify(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Verify("")
	require.ErrorIs(t, err, common.ErrMissingToken)

	_, err = svc.Verify("not.a.token")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestUserService_Profile_UsesCache(t *testing.T) {
	ctx := context.Background()
	_, m := memoryManager()
	c := &countingCache{data: map[string]*models.Profile{}}
	svc := NewUserService(m, c, logging.Nop{}, testConfig())

	_, err := svc.Register(ctx, "erin", "pw", "erin.jpg")
	require.NoError(t, err)

	p, err := svc.Profile(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, &models.Profile{Username: "erin", Picture: "erin.jpg"}, p)
	assert.Equal(t, 1, c.sets)

	p, err = svc.Profile(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, "erin.jpg", p.Picture)
	assert.Equal(t, 1, c.sets, "second lookup must be a cache hit")

	_, err = svc.Profile(ctx, "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUserService_Profile_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	_, m := memoryManager()
	c := &countingCache{data: map[string]*models.Profile{}, err: errors.New("redis down")}
	svc := NewUserService(m, c, logging.Nop{}, testConfig())

	_, err := svc.Register(ctx, "fay", "pw", "")
	require.NoError(t, err)

	p, err := svc.Profile(ctx, "fay")
	require.NoError(t, err)
	assert.Equal(t, "fay", p.Username)
}

func TestUserService_StoreUnavailable(t *testing.T) {
	m := &brokenManager{err: context.DeadlineExceeded}
	svc := NewUserService(m, nil, logging.Nop{}, testConfig())

	_, err := svc.Register(context.Background(), "gil", "pw", "")
	require.ErrorIs(t, err, common.ErrStoreUnavailable)

	_, err = svc.Login(context.Background(), "gil", "pw")
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestUserService_DummyHashFallsBackOnBadCost(t *testing.T) {
	_, m := memoryManager()
	cfg := testConfig()
	cfg.BcryptCost = bcrypt.MaxCost + 1
	svc := NewUserService(m, nil, logging.Nop{}, cfg)

	hash := svc.getDummyHash(context.Background())
	require.NotEmpty(t, hash)
	cost, err := bcrypt.Cost(hash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	_, err = svc.Login(context.Background(), "nobody", "whatever")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

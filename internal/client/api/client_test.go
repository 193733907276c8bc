package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/pixo/internal/logging"
	"github.com/dmitrijs2005/pixo/internal/server/config"
	"github.com/dmitrijs2005/pixo/internal/server/httpapi"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/memory"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pixo/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// bucket is a stand-in for object storage accepting presigned PUTs.
type bucket struct {
	srv     *httptest.Server
	objects map[string][]byte
}

func newBucket(t *testing.T) *bucket {
	b := &bucket{objects: map[string][]byte{}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.objects[r.URL.Path] = data
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *bucket) UploadTicket(_ context.Context, id *models.Identity) (*models.UploadTicket, error) {
	key := "/images/" + id.Username + "/obj"
	return &models.UploadTicket{Key: key, UploadURL: b.srv.URL + key + "?sig=1", URL: b.srv.URL + key}, nil
}

func newServer(t *testing.T, assets httpapi.Assets) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost

	m := repomanager.NewMemoryRepositoryManager(memory.NewStore())
	srv := httpapi.NewServer(cfg, logging.Nop{},
		services.NewUserService(m, nil, logging.Nop{}, cfg),
		services.NewFeedService(m, cfg),
		services.NewLikeService(m, cfg),
		assets,
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_UploadFlow(t *testing.T) {
	b := newBucket(t)
	ts := newServer(t, b)
	ctx := context.Background()

	c := New(ts.URL+"/", 5*time.Second)
	require.NoError(t, c.Register(ctx, "alice", "pw", ""))

	token, err := c.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	url, err := c.UploadAsset(ctx, []byte("pixels"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), b.objects["/images/alice/obj"])

	img, err := c.Publish(ctx, PublishRequest{URL: url, Title: "cat", Tags: []string{"pets"}})
	require.NoError(t, err)
	assert.Equal(t, "alice", img.Author)
	assert.Equal(t, url, img.URL)
}

func TestClient_Errors(t *testing.T) {
	ts := newServer(t, newBucket(t))
	ctx := context.Background()
	c := New(ts.URL, 5*time.Second)

	_, err := c.Login(ctx, "ghost", "pw")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "InvalidCredentials", apiErr.Kind)

	_, err = c.Publish(ctx, PublishRequest{URL: "u", Title: "t", Tags: []string{"x"}})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	c.SetToken("forged")
	_, err = c.UploadTicket(ctx)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

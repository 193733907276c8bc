// Package cache keeps public user profiles close to the API. Profiles are
// immutable after registration, so entries never need invalidation; a TTL
// only bounds memory.
package cache

import (
	"context"

	"github.com/dmitrijs2005/pixo/internal/server/models"
)

// ProfileCache is a best-effort lookaside cache. A miss is (nil, false, nil).
type ProfileCache interface {
	Get(ctx context.Context, username string) (*models.Profile, bool, error)
	Set(ctx context.Context, profile *models.Profile) error
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.Profile, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, *models.Profile) error                 { return nil }

// Package images stores published feed items and their like sets.
package images

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pixo/internal/server/models"
)

// Repository is the image store adapter.
//
// Lookups by id fail with common.ErrNotFound. All mutations are single atomic
// store operations: view counters are incremented in place and like sets are
// changed with set-add / set-remove semantics, never read-then-write.
type Repository interface {
	Create(ctx context.Context, img *models.Image) error

	// ListBefore returns up to limit images newest first. With a non-nil
	// before only images strictly older than it are returned.
	ListBefore(ctx context.Context, before *time.Time, limit int) ([]*models.Image, error)
	ListByAuthor(ctx context.Context, author string) ([]*models.Image, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Image, error)
	// Sample returns up to limit distinct images chosen uniformly at random.
	Sample(ctx context.Context, limit int) ([]*models.Image, error)

	Count(ctx context.Context) (int64, error)
	// GetAt returns the image at offset in a fixed enumeration order.
	GetAt(ctx context.Context, offset int64) (*models.Image, error)
	// IncrementViews bumps views by one and returns the updated image.
	IncrementViews(ctx context.Context, id string) (*models.Image, error)

	AddLike(ctx context.Context, imageID, userID string) (int64, error)
	// RemoveLike fails with common.ErrNotLiked when userID is not in the set.
	RemoveLike(ctx context.Context, imageID, userID string) (int64, error)
	CountLikes(ctx context.Context, imageID string) (int64, error)
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/server/config"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LikeService maintains per-image like sets. Every change is a single atomic
// set operation in the store, so concurrent likers never lose updates.
type LikeService struct {
	repomanager  repomanager.RepositoryManager
	storeTimeout time.Duration
}

func NewLikeService(m repomanager.RepositoryManager, cfg *config.Config) *LikeService {
	return &LikeService{repomanager: m, storeTimeout: cfg.StoreTimeout}
}

// Like adds userID to the image's like set and returns the set size.
// Liking twice is a no-op.
func (s *LikeService) Like(ctx context.Context, imageID, userID string) (int64, error) {
	if err := validateLike(imageID, userID); err != nil {
		return 0, err
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	n, err := s.repomanager.Images(s.repomanager.DB()).AddLike(ctx, imageID, userID)
	if err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

// Unlike removes userID from the like set. It fails with ErrNotLiked when
// the user had not liked the image, leaving the set unchanged.
func (s *LikeService) Unlike(ctx context.Context, imageID, userID string) (int64, error) {
	if err := validateLike(imageID, userID); err != nil {
		return 0, err
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	n, err := s.repomanager.Images(s.repomanager.DB()).RemoveLike(ctx, imageID, userID)
	if err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

// LikeCount returns the size of the image's like set.
func (s *LikeService) LikeCount(ctx context.Context, imageID string) (int64, error) {
	if _, err := uuid.Parse(imageID); err != nil {
		return 0, common.ErrNotFound
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	n, err := s.repomanager.Images(s.repomanager.DB()).CountLikes(ctx, imageID)
	if err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

func validateLike(imageID, userID string) error {
	if strings.TrimSpace(imageID) == "" || strings.TrimSpace(userID) == "" {
		return invalidInput("image id and user id are required")
	}
	if _, err := uuid.Parse(imageID); err != nil {
		return common.ErrNotFound
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/dbx"
	"github.com/dmitrijs2005/pixo/internal/server/config"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PublishInput is what a client supplies for a new image. Author, id, date,
// views and likes are always assigned by the server.
type PublishInput struct {
	URL      string
	Title    string
	Tags     []string
	SongName string
	SongLink string
}

// FeedService serves the image feed: paging, random pick, single image,
// author listing, search and publishing.
type FeedService struct {
	repomanager        repomanager.RepositoryManager
	pageSize           int
	searchDefaultLimit int
	searchMaxLimit     int
	storeTimeout       time.Duration

	now     func() time.Time
	randN   func(n int64) int64
	newUUID func() string
}

func NewFeedService(m repomanager.RepositoryManager, cfg *config.Config) *FeedService {
	return &FeedService{
		repomanager:        m,
		pageSize:           cfg.FeedPageSize,
		searchDefaultLimit: cfg.SearchDefaultLimit,
		searchMaxLimit:     cfg.SearchMaxLimit,
		storeTimeout:       cfg.StoreTimeout,
		now:                time.Now,
		randN:              rand.Int64N,
		newUUID:            uuid.NewString,
	}
}

// ListFeed returns one page of the feed, newest first. With a non-nil before
// only images strictly older than it are returned, so passing the last date
// of a page yields the next one.
func (s *FeedService) ListFeed(ctx context.Context, before *time.Time) ([]*models.Image, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	images, err := s.repomanager.Images(s.repomanager.DB()).ListBefore(ctx, before, s.pageSize)
	if err != nil {
		return nil, storeError(err)
	}
	return images, nil
}

// RandomImage picks one image uniformly at random and counts a view for it.
// Count and pick share a read snapshot; if the picked image is deleted before
// its view is counted the pick is retried once.
func (s *FeedService) RandomImage(ctx context.Context) (*models.Image, error) {
	for attempt := 0; attempt < 2; attempt++ {
		img, err := s.pickRandom(ctx)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return nil, err
		}

		updated, err := s.incrementViews(ctx, img.ID)
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		return updated, err
	}
	return nil, common.ErrEmptyCollection
}

func (s *FeedService) pickRandom(ctx context.Context) (*models.Image, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	var img *models.Image
	err := s.repomanager.WithTx(ctx, dbx.Snapshot, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Images(tx)

		n, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrEmptyCollection
		}

		img, err = repo.GetAt(ctx, s.randN(n))
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return img, nil
}

// GetByID returns the image and counts a view for it. Ids that are not
// well-formed are reported as ErrNotFound.
func (s *FeedService) GetByID(ctx context.Context, id string) (*models.Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}
	return s.incrementViews(ctx, id)
}

func (s *FeedService) incrementViews(ctx context.Context, id string) (*models.Image, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	img, err := s.repomanager.Images(s.repomanager.DB()).IncrementViews(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return img, nil
}

// ListByAuthor returns every image by author, oldest first. An author with no
// images yields an empty slice.
func (s *FeedService) ListByAuthor(ctx context.Context, author string) ([]*models.Image, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, invalidInput("author is required")
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	images, err := s.repomanager.Images(s.repomanager.DB()).ListByAuthor(ctx, author)
	if err != nil {
		return nil, storeError(err)
	}
	return images, nil
}

// Search matches query case-insensitively as a literal substring of the title
// or any tag. A blank query returns a random sample instead.
// limit <= 0 selects the default; larger limits are capped.
func (s *FeedService) Search(ctx context.Context, query string, limit int) ([]*models.Image, error) {
	switch {
	case limit <= 0:
		limit = s.searchDefaultLimit
	case limit > s.searchMaxLimit:
		limit = s.searchMaxLimit
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	repo := s.repomanager.Images(s.repomanager.DB())

	var (
		images []*models.Image
		err    error
	)
	if query = strings.TrimSpace(query); query == "" {
		images, err = repo.Sample(ctx, limit)
	} else {
		images, err = repo.Search(ctx, query, limit)
	}
	if err != nil {
		return nil, storeError(err)
	}
	return images, nil
}

// Publish stores a new image authored by the token bearer.
func (s *FeedService) Publish(ctx context.Context, identity *models.Identity, in PublishInput) (*models.Image, error) {
	if identity == nil || identity.Username == "" {
		return nil, common.ErrMissingToken
	}

	url := strings.TrimSpace(in.URL)
	title := strings.TrimSpace(in.Title)
	if url == "" || title == "" {
		return nil, invalidInput("url and title are required")
	}

	tags := normalizeTags(in.Tags)
	if len(tags) == 0 {
		return nil, invalidInput("at least one tag is required")
	}

	img := &models.Image{
		ID:       s.newUUID(),
		URL:      url,
		Title:    title,
		Author:   identity.Username,
		SongName: strings.TrimSpace(in.SongName),
		SongLink: strings.TrimSpace(in.SongLink),
		Tags:     tags,
		Date:     s.now().UTC().Truncate(common.StorePrecision),
		Views:    0,
		Likes:    []string{},
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	if err := s.repomanager.Images(s.repomanager.DB()).Create(ctx, img); err != nil {
		return nil, storeError(err)
	}
	return img, nil
}

// normalizeTags trims tags, drops blanks and keeps the first of duplicates.
func normalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

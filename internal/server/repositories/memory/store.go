// Package memory keeps users and images in process memory. It backs tests
// and local runs without PostgreSQL, and mirrors the Postgres repositories'
// semantics: ids are unique, like sets dedupe, counters only grow.
package memory

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/google/uuid"
)

type imageRecord struct {
	img   models.Image
	likes []string
}

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*models.User
	images map[string]*imageRecord
}

func NewStore() *Store {
	return &Store{
		users:  make(map[string]*models.User),
		images: make(map[string]*imageRecord),
	}
}

// Users is a users.Repository view over the store.
type Users struct{ s *Store }

// Images is an images.Repository view over the store.
type Images struct{ s *Store }

func (s *Store) Users() *Users   { return &Users{s: s} }
func (s *Store) Images() *Images { return &Images{s: s} }

func (r *Users) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.UserName]; ok {
		return nil, common.ErrDuplicateUser
	}
	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	r.s.users[user.UserName] = &stored

	out := stored
	return &out, nil
}

func (r *Users) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userName]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (rec *imageRecord) snapshot() *models.Image {
	img := rec.img
	img.Tags = append([]string{}, rec.img.Tags...)
	img.Likes = append([]string{}, rec.likes...)
	return &img
}

// sorted returns records ordered by less. Callers hold at least a read lock.
func (s *Store) sorted(less func(a, b *imageRecord) bool) []*imageRecord {
	out := make([]*imageRecord, 0, len(s.images))
	for _, rec := range s.images {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func newestFirst(a, b *imageRecord) bool { return a.img.Date.After(b.img.Date) }

func (r *Images) Create(ctx context.Context, img *models.Image) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.images[img.ID]; ok {
		return common.ErrInternal
	}
	rec := &imageRecord{img: *img}
	rec.img.Tags = append([]string{}, img.Tags...)
	rec.img.Likes = nil
	r.s.images[img.ID] = rec
	return nil
}

func (r *Images) ListBefore(ctx context.Context, before *time.Time, limit int) ([]*models.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Image, 0, limit)
	for _, rec := range r.s.sorted(newestFirst) {
		if len(out) == limit {
			break
		}
		if before != nil && !rec.img.Date.Before(*before) {
			continue
		}
		out = append(out, rec.snapshot())
	}
	return out, nil
}

func (r *Images) ListByAuthor(ctx context.Context, author string) ([]*models.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Image, 0)
	oldestFirst := func(a, b *imageRecord) bool { return a.img.Date.Before(b.img.Date) }
	for _, rec := range r.s.sorted(oldestFirst) {
		if rec.img.Author == author {
			out = append(out, rec.snapshot())
		}
	}
	return out, nil
}

func (r *Images) Search(ctx context.Context, query string, limit int) ([]*models.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(query)
	out := make([]*models.Image, 0, limit)
	for _, rec := range r.s.sorted(newestFirst) {
		if len(out) == limit {
			break
		}
		if matches(rec.img, needle) {
			out = append(out, rec.snapshot())
		}
	}
	return out, nil
}

func matches(img models.Image, needle string) bool {
	if strings.Contains(strings.ToLower(img.Title), needle) {
		return true
	}
	for _, tag := range img.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func (r *Images) Sample(ctx context.Context, limit int) ([]*models.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.sorted(func(a, b *imageRecord) bool { return a.img.ID < b.img.ID })
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]*models.Image, 0, len(all))
	for _, rec := range all {
		out = append(out, rec.snapshot())
	}
	return out, nil
}

func (r *Images) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.images)), nil
}

func (r *Images) GetAt(ctx context.Context, offset int64) (*models.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.sorted(func(a, b *imageRecord) bool { return a.img.ID < b.img.ID })
	if offset < 0 || offset >= int64(len(all)) {
		return nil, common.ErrNotFound
	}
	return all[offset].snapshot(), nil
}

func (r *Images) IncrementViews(ctx context.Context, id string) (*models.Image, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.images[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	rec.img.Views++
	return rec.snapshot(), nil
}

func (r *Images) AddLike(ctx context.Context, imageID, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.images[imageID]
	if !ok {
		return 0, common.ErrNotFound
	}
	for _, u := range rec.likes {
		if u == userID {
			return int64(len(rec.likes)), nil
		}
	}
	rec.likes = append(rec.likes, userID)
	return int64(len(rec.likes)), nil
}

func (r *Images) RemoveLike(ctx context.Context, imageID, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.images[imageID]
	if !ok {
		return 0, common.ErrNotFound
	}
	for i, u := range rec.likes {
		if u == userID {
			rec.likes = append(rec.likes[:i], rec.likes[i+1:]...)
			return int64(len(rec.likes)), nil
		}
	}
	return int64(len(rec.likes)), common.ErrNotLiked
}

func (r *Images) CountLikes(ctx context.Context, imageID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.images[imageID]
	if !ok {
		return 0, common.ErrNotFound
	}
	return int64(len(rec.likes)), nil
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, r *Images, id, title string, date time.Time, tags ...string) {
	t.Helper()
	require.NoError(t, r.Create(context.Background(), &models.Image{
		ID: id, URL: "https://cdn/" + id, Title: title, Author: "alice", Tags: tags, Date: date,
	}))
}

func TestUsers_CreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Users()

	u, err := r.Create(ctx, &models.User{UserName: "alice", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = r.Create(ctx, &models.User{UserName: "alice", PasswordHash: "other"})
	require.ErrorIs(t, err, common.ErrDuplicateUser)

	got, err := r.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h", got.PasswordHash)

	_, err = r.GetUserByLogin(ctx, "bob")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestImages_ListBeforeIsStrict(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Images()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		seed(t, r, id, id, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := r.ListBefore(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].ID)
	assert.Equal(t, "b", page[1].ID)

	cursor := page[1].Date
	page, err = r.ListBefore(ctx, &cursor, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a", page[0].ID)
}

func TestImages_SnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Images()
	seed(t, r, "a", "sunset", time.Now(), "nature")

	img, err := r.IncrementViews(ctx, "a")
	require.NoError(t, err)
	img.Tags[0] = "changed"

	again, err := r.GetAt(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"nature"}, again.Tags)
	assert.Equal(t, int64(1), again.Views)
}

func TestImages_LikeSet(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Images()
	seed(t, r, "a", "sunset", time.Now())

	n, err := r.AddLike(ctx, "a", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = r.AddLike(ctx, "a", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.RemoveLike(ctx, "a", "u2")
	require.ErrorIs(t, err, common.ErrNotLiked)

	n, err = r.RemoveLike(ctx, "a", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = r.AddLike(ctx, "missing", "u1")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = r.CountLikes(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestImages_SearchAndSample(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Images()
	now := time.Now()
	seed(t, r, "a", "Sunset", now, "nature", "orange")
	seed(t, r, "b", "city", now.Add(time.Second), "Night")
	seed(t, r, "c", "forest", now.Add(2*time.Second), "green")

	got, err := r.Search(ctx, "sun", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	got, err = r.Search(ctx, "night", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	got, err = r.Sample(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	_, err = r.GetAt(ctx, 3)
	require.ErrorIs(t, err, common.ErrNotFound)
}

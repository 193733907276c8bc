package images

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/dbx"
	"github.com/dmitrijs2005/pixo/internal/server/models"
)

// Tags and likes are read back as JSON arrays so scanning does not depend on
// driver-specific array types.
const imageColumns = `i.id, i.url, i.title, i.author, i.song_name, i.song_link,
	array_to_json(i.tags),
	i.date, i.views,
	COALESCE((SELECT json_agg(l.user_id ORDER BY l.created_at) FROM image_likes l WHERE l.image_id = i.id), '[]'::json)`

// PostgresRepository implements image storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (*models.Image, error) {
	var (
		img   models.Image
		tags  []byte
		likes []byte
	)
	err := row.Scan(&img.ID, &img.URL, &img.Title, &img.Author, &img.SongName, &img.SongLink,
		&tags, &img.Date, &img.Views, &likes)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &img.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(likes, &img.Likes); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	if img.Tags == nil {
		img.Tags = []string{}
	}
	if img.Likes == nil {
		img.Likes = []string{}
	}
	img.Date = img.Date.UTC()
	return &img, nil
}

func (r *PostgresRepository) queryImages(ctx context.Context, query string, args ...any) ([]*models.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) queryImage(ctx context.Context, query string, args ...any) (*models.Image, error) {
	img, err := scanImage(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) Create(ctx context.Context, img *models.Image) error {
	query := `
		INSERT INTO images (id, url, title, author, song_name, song_link, tags, date, views)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	res, err := r.db.ExecContext(ctx, query,
		img.ID, img.URL, img.Title, img.Author, img.SongName, img.SongLink, img.Tags, img.Date, img.Views)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

func (r *PostgresRepository) ListBefore(ctx context.Context, before *time.Time, limit int) ([]*models.Image, error) {
	if before == nil {
		query := `SELECT ` + imageColumns + ` FROM images i
			ORDER BY i.date DESC
			LIMIT $1`
		return r.queryImages(ctx, query, limit)
	}
	query := `SELECT ` + imageColumns + ` FROM images i
		WHERE i.date < $1
		ORDER BY i.date DESC
		LIMIT $2`
	return r.queryImages(ctx, query, *before, limit)
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, author string) ([]*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images i
		WHERE i.author = $1
		ORDER BY i.date ASC`
	return r.queryImages(ctx, query, author)
}

func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]*models.Image, error) {
	q := `SELECT ` + imageColumns + ` FROM images i
		WHERE i.title ILIKE $1
		   OR EXISTS (SELECT 1 FROM unnest(i.tags) AS t(tag) WHERE t.tag ILIKE $1)
		ORDER BY i.date DESC
		LIMIT $2`
	return r.queryImages(ctx, q, containsPattern(query), limit)
}

func (r *PostgresRepository) Sample(ctx context.Context, limit int) ([]*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images i
		ORDER BY random()
		LIMIT $1`
	return r.queryImages(ctx, query, limit)
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM images`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetAt(ctx context.Context, offset int64) (*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images i
		ORDER BY i.id
		OFFSET $1
		LIMIT 1`
	return r.queryImage(ctx, query, offset)
}

func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) (*models.Image, error) {
	query := `UPDATE images AS i SET views = i.views + 1
		WHERE i.id = $1
		RETURNING ` + imageColumns
	return r.queryImage(ctx, query, id)
}

func (r *PostgresRepository) AddLike(ctx context.Context, imageID, userID string) (int64, error) {
	// The outer count runs on the statement snapshot and cannot see the row
	// inserted by the CTE, hence the explicit addition.
	query := `
		WITH target AS (SELECT id FROM images WHERE id = $1),
		inserted AS (
			INSERT INTO image_likes (image_id, user_id)
			SELECT id, $2 FROM target
			ON CONFLICT (image_id, user_id) DO NOTHING
			RETURNING 1
		)
		SELECT EXISTS (SELECT 1 FROM target),
			(SELECT count(*) FROM image_likes WHERE image_id = $1) + (SELECT count(*) FROM inserted)
	`
	var (
		exists bool
		count  int64
	)
	if err := r.db.QueryRowContext(ctx, query, imageID, userID).Scan(&exists, &count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return 0, common.ErrNotFound
	}
	return count, nil
}

func (r *PostgresRepository) RemoveLike(ctx context.Context, imageID, userID string) (int64, error) {
	query := `
		WITH target AS (SELECT id FROM images WHERE id = $1),
		removed AS (
			DELETE FROM image_likes WHERE image_id = $1 AND user_id = $2
			RETURNING 1
		)
		SELECT EXISTS (SELECT 1 FROM target),
			(SELECT count(*) FROM removed),
			(SELECT count(*) FROM image_likes WHERE image_id = $1) - (SELECT count(*) FROM removed)
	`
	var (
		exists  bool
		removed int64
		count   int64
	)
	if err := r.db.QueryRowContext(ctx, query, imageID, userID).Scan(&exists, &removed, &count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return 0, common.ErrNotFound
	}
	if removed == 0 {
		return count, common.ErrNotLiked
	}
	return count, nil
}

func (r *PostgresRepository) CountLikes(ctx context.Context, imageID string) (int64, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM images WHERE id = $1),
			(SELECT count(*) FROM image_likes WHERE image_id = $1)
	`
	var (
		exists bool
		count  int64
	)
	if err := r.db.QueryRowContext(ctx, query, imageID).Scan(&exists, &count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return 0, common.ErrNotFound
	}
	return count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into an ILIKE substring pattern.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

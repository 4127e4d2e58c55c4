// ABOUTME: News post entity store methods with bilingual fields
// ABOUTME: Posts hold markdown bodies; publishing stamps published_at

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreatePost inserts a new post. CreatedAt/UpdatedAt are stamped if zero.
func (s *SQLiteStore) CreatePost(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, slug, title_bg, title_en, body_bg, body_en,
			published, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, query,
		post.ID,
		post.Slug,
		post.TitleBG,
		post.TitleEN,
		post.BodyBG,
		post.BodyEN,
		post.Published,
		formatNullableTime(post.PublishedAt),
		formatTime(post.CreatedAt),
		formatTime(post.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating post: %w", err)
	}

	s.logger.Debug("created post", "post_id", post.ID, "slug", post.Slug)
	return nil
}

// GetPost retrieves a post by id
func (s *SQLiteStore) GetPost(ctx context.Context, id string) (*Post, error) {
	query := selectPost + ` WHERE id = ?`
	return scanPost(s.db.QueryRowContext(ctx, query, id))
}

// GetPostBySlug retrieves a post by its URL slug
func (s *SQLiteStore) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	query := selectPost + ` WHERE slug = ?`
	return scanPost(s.db.QueryRowContext(ctx, query, slug))
}

// UpdatePost rewrites the editable fields of a post
func (s *SQLiteStore) UpdatePost(ctx context.Context, post *Post) error {
	query := `
		UPDATE posts
		SET slug = ?, title_bg = ?, title_en = ?, body_bg = ?, body_en = ?, updated_at = ?
		WHERE id = ?
	`

	post.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, query,
		post.Slug,
		post.TitleBG,
		post.TitleEN,
		post.BodyBG,
		post.BodyEN,
		formatTime(post.UpdatedAt),
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPostPublished toggles the published flag. Publishing stamps
// published_at; unpublishing clears it.
func (s *SQLiteStore) SetPostPublished(ctx context.Context, id string, published bool) error {
	query := `
		UPDATE posts
		SET published = ?, published_at = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()
	var publishedAt any
	if published {
		publishedAt = formatTime(now)
	}

	res, err := s.db.ExecContext(ctx, query, published, publishedAt, formatTime(now), id)
	if err != nil {
		return fmt.Errorf("setting post published: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking publish result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("set post published", "post_id", id, "published", published)
	return nil
}

// DeletePost removes a post by id
func (s *SQLiteStore) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListPosts returns posts newest first. With publishedOnly set, only
// published posts are returned, ordered by publish time.
func (s *SQLiteStore) ListPosts(ctx context.Context, publishedOnly bool, limit int) ([]*Post, error) {
	query := selectPost + ` ORDER BY created_at DESC LIMIT ?`
	if publishedOnly {
		query = selectPost + ` WHERE published = 1 ORDER BY published_at DESC LIMIT ?`
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return posts, nil
}

const selectPost = `
	SELECT id, slug, title_bg, title_en, body_bg, body_en,
		published, published_at, created_at, updated_at
	FROM posts`

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	var publishedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.Slug, &p.TitleBG, &p.TitleEN, &p.BodyBG, &p.BodyEN,
		&p.Published, &publishedAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning post: %w", err)
	}

	p.PublishedAt = parseNullableTime(publishedAt)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

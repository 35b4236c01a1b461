package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const blogColumns = `id, slug, title, excerpt, body, cover_image, author, is_published, published_at, created_at, updated_at`

// SQLBlogRepository stores blog posts using sqlx.
type SQLBlogRepository struct {
	db *sqlx.DB
}

// NewSQLBlogRepository creates a new SQLBlogRepository.
func NewSQLBlogRepository(db *sqlx.DB) *SQLBlogRepository {
	return &SQLBlogRepository{db: db}
}

// ListPublished returns published posts, newest first. A limit of zero means no limit.
func (r *SQLBlogRepository) ListPublished(ctx context.Context, limit int) ([]*BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE is_published = ? ORDER BY published_at DESC, id DESC`
	args := []interface{}{true}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var posts []*BlogPost
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	return posts, nil
}

// GetPublished retrieves a published post by slug.
func (r *SQLBlogRepository) GetPublished(ctx context.Context, slug string) (*BlogPost, error) {
	var post BlogPost
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE slug = ? AND is_published = ?`
	if err := r.db.GetContext(ctx, &post, query, slug, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}
	return &post, nil
}

// Create inserts a post and sets its ID.
func (r *SQLBlogRepository) Create(ctx context.Context, post *BlogPost) error {
	now := time.Now().UTC()
	post.CreatedAt, post.UpdatedAt = now, now
	if post.IsPublished && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO blog_posts (slug, title, excerpt, body, cover_image, author, is_published, published_at, created_at, updated_at)
		VALUES (:slug, :title, :excerpt, :body, :cover_image, :author, :is_published, :published_at, :created_at, :updated_at)`, post)
	if err != nil {
		return fmt.Errorf("failed to create blog post: %w", err)
	}
	if post.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read blog post id: %w", err)
	}
	return nil
}

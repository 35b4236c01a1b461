package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const contentColumns = `id, page, section, content_key, title, content, media_url, content_type, sort_order, is_active, created_at, updated_at`

// SQLContentRepository stores page content items using sqlx.
type SQLContentRepository struct {
	db *sqlx.DB
}

// NewSQLContentRepository creates a new SQLContentRepository.
func NewSQLContentRepository(db *sqlx.DB) *SQLContentRepository {
	return &SQLContentRepository{db: db}
}

// ListByPage returns the items of a page ordered by section and position.
// An empty section matches every section.
func (r *SQLContentRepository) ListByPage(ctx context.Context, page, section string, activeOnly bool) ([]*ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM website_content WHERE page = ?`
	args := []interface{}{page}
	if section != "" {
		query += ` AND section = ?`
		args = append(args, section)
	}
	if activeOnly {
		query += ` AND is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY section, sort_order, content_key`

	var items []*ContentItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list content for page %q: %w", page, err)
	}
	return items, nil
}

// ListActive returns every active item across all pages.
func (r *SQLContentRepository) ListActive(ctx context.Context) ([]*ContentItem, error) {
	var items []*ContentItem
	query := `SELECT ` + contentColumns + ` FROM website_content WHERE is_active = ? ORDER BY page, sort_order, content_key`
	if err := r.db.SelectContext(ctx, &items, query, true); err != nil {
		return nil, fmt.Errorf("failed to list active content: %w", err)
	}
	return items, nil
}

// Get retrieves a single item by page and key.
func (r *SQLContentRepository) Get(ctx context.Context, page, key string) (*ContentItem, error) {
	var item ContentItem
	query := `SELECT ` + contentColumns + ` FROM website_content WHERE page = ? AND content_key = ?`
	if err := r.db.GetContext(ctx, &item, query, page, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get content %s/%s: %w", page, key, err)
	}
	return &item, nil
}

// Upsert inserts the item or replaces the stored row with the same page and key.
func (r *SQLContentRepository) Upsert(ctx context.Context, item *ContentItem) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	query := `INSERT INTO website_content (page, section, content_key, title, content, media_url, content_type, sort_order, is_active, created_at, updated_at)
		VALUES (:page, :section, :content_key, :title, :content, :media_url, :content_type, :sort_order, :is_active, :created_at, :updated_at)` +
		upsertClause(r.db.DriverName(),
			[]string{"page", "content_key"},
			[]string{"section", "title", "content", "media_url", "content_type", "sort_order", "is_active", "updated_at"})
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("failed to upsert content %s/%s: %w", item.Page, item.Key, err)
	}
	return nil
}

// Delete removes an item by page and key.
func (r *SQLContentRepository) Delete(ctx context.Context, page, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM website_content WHERE page = ? AND content_key = ?`, page, key)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByPage returns the number of stored items per page.
func (r *SQLContentRepository) CountByPage(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Page  string `db:"page"`
		Count int    `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT page, COUNT(*) AS n FROM website_content GROUP BY page`); err != nil {
		return nil, fmt.Errorf("failed to count content: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Page] = row.Count
	}
	return counts, nil
}

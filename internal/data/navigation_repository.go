package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLNavigationRepository stores menu entries using sqlx.
type SQLNavigationRepository struct {
	db *sqlx.DB
}

// NewSQLNavigationRepository creates a new SQLNavigationRepository.
func NewSQLNavigationRepository(db *sqlx.DB) *SQLNavigationRepository {
	return &SQLNavigationRepository{db: db}
}

// Tree returns the active entries of a menu location with children nested
// under their parents, both levels in display order.
func (r *SQLNavigationRepository) Tree(ctx context.Context, location string) ([]*NavigationItem, error) {
	var items []*NavigationItem
	query := `SELECT id, title, url, icon, parent_id, sort_order, is_active, menu_location FROM navigation_items
		WHERE menu_location = ? AND is_active = ? ORDER BY sort_order, id`
	if err := r.db.SelectContext(ctx, &items, query, location, true); err != nil {
		return nil, fmt.Errorf("failed to list navigation for %q: %w", location, err)
	}

	byID := make(map[int64]*NavigationItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	roots := []*NavigationItem{}
	for _, item := range items {
		if item.ParentID != nil {
			if parent, ok := byID[*item.ParentID]; ok {
				parent.Children = append(parent.Children, item)
				continue
			}
		}
		roots = append(roots, item)
	}
	return roots, nil
}

// Create inserts a menu entry and sets its ID.
func (r *SQLNavigationRepository) Create(ctx context.Context, item *NavigationItem) error {
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO navigation_items (title, url, icon, parent_id, sort_order, is_active, menu_location)
		VALUES (:title, :url, :icon, :parent_id, :sort_order, :is_active, :menu_location)`, item)
	if err != nil {
		return fmt.Errorf("failed to create navigation item: %w", err)
	}
	if item.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read navigation item id: %w", err)
	}
	return nil
}

// Update rewrites a menu entry.
func (r *SQLNavigationRepository) Update(ctx context.Context, item *NavigationItem) error {
	query := `UPDATE navigation_items SET title = :title, url = :url, icon = :icon, parent_id = :parent_id,
		sort_order = :sort_order, is_active = :is_active, menu_location = :menu_location WHERE id = :id`
	return execAffecting(r.db.NamedExecContext(ctx, query, item))
}

// Delete removes a menu entry and, through the foreign key, its children.
func (r *SQLNavigationRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(r.db.ExecContext(ctx, `DELETE FROM navigation_items WHERE id = ?`, id))
}

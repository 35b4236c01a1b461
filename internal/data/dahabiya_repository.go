package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const dahabiyaColumns = `id, slug, name, short_description, description, price_per_day, capacity, cabins, rating, images, video_url, is_featured, is_active, sort_order, created_at, updated_at`

// SQLDahabiyaRepository stores dahabiyas using sqlx.
type SQLDahabiyaRepository struct {
	db *sqlx.DB
}

// NewSQLDahabiyaRepository creates a new SQLDahabiyaRepository.
func NewSQLDahabiyaRepository(db *sqlx.DB) *SQLDahabiyaRepository {
	return &SQLDahabiyaRepository{db: db}
}

// List returns dahabiyas in display order. A limit of zero means no limit.
func (r *SQLDahabiyaRepository) List(ctx context.Context, activeOnly, featuredOnly bool, limit int) ([]*Dahabiya, error) {
	query := `SELECT ` + dahabiyaColumns + ` FROM dahabiyas WHERE 1 = 1`
	var args []interface{}
	if activeOnly {
		query += ` AND is_active = ?`
		args = append(args, true)
	}
	if featuredOnly {
		query += ` AND is_featured = ?`
		args = append(args, true)
	}
	query += ` ORDER BY sort_order, name`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var boats []*Dahabiya
	if err := r.db.SelectContext(ctx, &boats, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list dahabiyas: %w", err)
	}
	return boats, nil
}

// GetBySlug retrieves a dahabiya by its slug.
func (r *SQLDahabiyaRepository) GetBySlug(ctx context.Context, slug string) (*Dahabiya, error) {
	return r.getOne(ctx, `SELECT `+dahabiyaColumns+` FROM dahabiyas WHERE slug = ?`, slug)
}

// GetByID retrieves a dahabiya by its ID.
func (r *SQLDahabiyaRepository) GetByID(ctx context.Context, id int64) (*Dahabiya, error) {
	return r.getOne(ctx, `SELECT `+dahabiyaColumns+` FROM dahabiyas WHERE id = ?`, id)
}

func (r *SQLDahabiyaRepository) getOne(ctx context.Context, query string, arg interface{}) (*Dahabiya, error) {
	var boat Dahabiya
	if err := r.db.GetContext(ctx, &boat, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dahabiya: %w", err)
	}
	return &boat, nil
}

// Create inserts a dahabiya and sets its ID.
func (r *SQLDahabiyaRepository) Create(ctx context.Context, boat *Dahabiya) error {
	now := time.Now().UTC()
	boat.CreatedAt, boat.UpdatedAt = now, now
	query := `INSERT INTO dahabiyas (slug, name, short_description, description, price_per_day, capacity, cabins, rating, images, video_url, is_featured, is_active, sort_order, created_at, updated_at)
		VALUES (:slug, :name, :short_description, :description, :price_per_day, :capacity, :cabins, :rating, :images, :video_url, :is_featured, :is_active, :sort_order, :created_at, :updated_at)`
	res, err := r.db.NamedExecContext(ctx, query, boat)
	if err != nil {
		return fmt.Errorf("failed to create dahabiya: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read dahabiya id: %w", err)
	}
	boat.ID = id
	return nil
}

// Update replaces the stored fields of an existing dahabiya.
func (r *SQLDahabiyaRepository) Update(ctx context.Context, boat *Dahabiya) error {
	boat.UpdatedAt = time.Now().UTC()
	query := `UPDATE dahabiyas SET slug = :slug, name = :name, short_description = :short_description, description = :description,
		price_per_day = :price_per_day, capacity = :capacity, cabins = :cabins, rating = :rating, images = :images, video_url = :video_url,
		is_featured = :is_featured, is_active = :is_active, sort_order = :sort_order, updated_at = :updated_at WHERE id = :id`
	return execAffecting(r.db.NamedExecContext(ctx, query, boat))
}

// Delete removes a dahabiya by ID.
func (r *SQLDahabiyaRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(r.db.ExecContext(ctx, `DELETE FROM dahabiyas WHERE id = ?`, id))
}

// execAffecting maps an exec result touching no rows to ErrNotFound.
func execAffecting(result sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
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

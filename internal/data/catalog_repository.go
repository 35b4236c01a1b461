package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ServiceFilter narrows a travel service listing.
type ServiceFilter struct {
	Type       string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// SQLCatalogRepository stores travel services and destinations using sqlx.
type SQLCatalogRepository struct {
	db *sqlx.DB
}

// NewSQLCatalogRepository creates a new SQLCatalogRepository.
func NewSQLCatalogRepository(db *sqlx.DB) *SQLCatalogRepository {
	return &SQLCatalogRepository{db: db}
}

// ListServices returns one page of services matching f and the total match count.
func (r *SQLCatalogRepository) ListServices(ctx context.Context, f ServiceFilter) ([]*TravelService, int, error) {
	where := ` WHERE 1 = 1`
	var args []interface{}
	if f.ActiveOnly {
		where += ` AND is_active = ?`
		args = append(args, true)
	}
	if f.Type != "" {
		where += ` AND service_type = ?`
		args = append(args, f.Type)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM travel_services`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count travel services: %w", err)
	}

	query := `SELECT id, slug, name, description, service_type, price, duration, image_url, is_active, created_at FROM travel_services` +
		where + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	services := []*TravelService{}
	if err := r.db.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list travel services: %w", err)
	}
	return services, total, nil
}

// CreateService inserts a travel service and sets its ID.
func (r *SQLCatalogRepository) CreateService(ctx context.Context, s *TravelService) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO travel_services (slug, name, description, service_type, price, duration, image_url, is_active, created_at)
		VALUES (:slug, :name, :description, :service_type, :price, :duration, :image_url, :is_active, :created_at)`, s)
	if err != nil {
		return fmt.Errorf("failed to create travel service: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read travel service id: %w", err)
	}
	return nil
}

// ListDestinations returns destinations in display order. A limit of zero means no limit.
func (r *SQLCatalogRepository) ListDestinations(ctx context.Context, activeOnly bool, limit int) ([]*Destination, error) {
	query := `SELECT id, slug, name, country, region, image_cover, is_active, sort_order FROM destinations`
	var args []interface{}
	if activeOnly {
		query += ` WHERE is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY sort_order, name`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	destinations := []*Destination{}
	if err := r.db.SelectContext(ctx, &destinations, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}
	return destinations, nil
}

// GetDestination retrieves a destination by slug.
func (r *SQLCatalogRepository) GetDestination(ctx context.Context, slug string) (*Destination, error) {
	var d Destination
	err := r.db.GetContext(ctx, &d, `SELECT id, slug, name, country, region, image_cover, is_active, sort_order FROM destinations WHERE slug = ?`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get destination: %w", err)
	}
	return &d, nil
}

// CreateDestination inserts a destination and sets its ID.
func (r *SQLCatalogRepository) CreateDestination(ctx context.Context, d *Destination) error {
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO destinations (slug, name, country, region, image_cover, is_active, sort_order)
		VALUES (:slug, :name, :country, :region, :image_cover, :is_active, :sort_order)`, d)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	if d.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read destination id: %w", err)
	}
	return nil
}

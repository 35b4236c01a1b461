package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const packageColumns = `id, slug, name, short_description, description, price, duration_days, main_image_url, highlights, inclusions, exclusions, max_guests, dahabiya_id, is_featured, is_active, created_at, updated_at`

// SQLPackageRepository stores tour packages and their itineraries using sqlx.
type SQLPackageRepository struct {
	db *sqlx.DB
}

// NewSQLPackageRepository creates a new SQLPackageRepository.
func NewSQLPackageRepository(db *sqlx.DB) *SQLPackageRepository {
	return &SQLPackageRepository{db: db}
}

// List returns packages, featured first then by price. A limit of zero means no limit.
// Itineraries are not loaded.
func (r *SQLPackageRepository) List(ctx context.Context, activeOnly, featuredOnly bool, limit int) ([]*Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE 1 = 1`
	var args []interface{}
	if activeOnly {
		query += ` AND is_active = ?`
		args = append(args, true)
	}
	if featuredOnly {
		query += ` AND is_featured = ?`
		args = append(args, true)
	}
	query += ` ORDER BY is_featured DESC, price, name`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var pkgs []*Package
	if err := r.db.SelectContext(ctx, &pkgs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return pkgs, nil
}

// GetBySlug retrieves a package with its itinerary.
func (r *SQLPackageRepository) GetBySlug(ctx context.Context, slug string) (*Package, error) {
	return r.getOne(ctx, `SELECT `+packageColumns+` FROM packages WHERE slug = ?`, slug)
}

// GetByID retrieves a package with its itinerary.
func (r *SQLPackageRepository) GetByID(ctx context.Context, id int64) (*Package, error) {
	return r.getOne(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = ?`, id)
}

func (r *SQLPackageRepository) getOne(ctx context.Context, query string, arg interface{}) (*Package, error) {
	var pkg Package
	if err := r.db.GetContext(ctx, &pkg, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	days := []ItineraryDay{}
	if err := r.db.SelectContext(ctx, &days,
		`SELECT id, package_id, day_number, title, description FROM package_itinerary_days WHERE package_id = ? ORDER BY day_number`, pkg.ID); err != nil {
		return nil, fmt.Errorf("failed to load itinerary: %w", err)
	}
	pkg.Itinerary = days
	return &pkg, nil
}

// Create inserts a package with its itinerary in one transaction and sets its ID.
func (r *SQLPackageRepository) Create(ctx context.Context, pkg *Package) error {
	now := time.Now().UTC()
	pkg.CreatedAt, pkg.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO packages (slug, name, short_description, description, price, duration_days, main_image_url, highlights, inclusions, exclusions, max_guests, dahabiya_id, is_featured, is_active, created_at, updated_at)
		VALUES (:slug, :name, :short_description, :description, :price, :duration_days, :main_image_url, :highlights, :inclusions, :exclusions, :max_guests, :dahabiya_id, :is_featured, :is_active, :created_at, :updated_at)`
	res, err := tx.NamedExecContext(ctx, query, pkg)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}
	if pkg.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read package id: %w", err)
	}
	if err := insertItinerary(ctx, tx, pkg); err != nil {
		return err
	}
	return tx.Commit()
}

// Update replaces the stored fields and itinerary of an existing package.
func (r *SQLPackageRepository) Update(ctx context.Context, pkg *Package) error {
	pkg.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE packages SET slug = :slug, name = :name, short_description = :short_description, description = :description,
		price = :price, duration_days = :duration_days, main_image_url = :main_image_url, highlights = :highlights,
		inclusions = :inclusions, exclusions = :exclusions, max_guests = :max_guests, dahabiya_id = :dahabiya_id,
		is_featured = :is_featured, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if err := execAffecting(tx.NamedExecContext(ctx, query, pkg)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM package_itinerary_days WHERE package_id = ?`, pkg.ID); err != nil {
		return fmt.Errorf("failed to clear itinerary: %w", err)
	}
	if err := insertItinerary(ctx, tx, pkg); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a package; its itinerary days cascade.
func (r *SQLPackageRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM package_itinerary_days WHERE package_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	return execAffecting(r.db.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id))
}

func insertItinerary(ctx context.Context, tx *sqlx.Tx, pkg *Package) error {
	for i := range pkg.Itinerary {
		day := &pkg.Itinerary[i]
		day.PackageID = pkg.ID
		res, err := tx.NamedExecContext(ctx,
			`INSERT INTO package_itinerary_days (package_id, day_number, title, description) VALUES (:package_id, :day_number, :title, :description)`, day)
		if err != nil {
			return fmt.Errorf("failed to insert itinerary day %d: %w", day.DayNumber, err)
		}
		if day.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read itinerary day id: %w", err)
		}
	}
	return nil
}

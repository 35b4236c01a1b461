package service

import (
	"context"
	"fmt"
	"strings"

	"dahabiya-site/internal/broadcast"
	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/util"
)

// Listing limits.
const (
	DefaultServiceLimit     = 12
	MaxServiceLimit         = 100
	DefaultDestinationLimit = 20
)

// DahabiyaRepository defines the interface for database operations on dahabiyat.
type DahabiyaRepository interface {
	List(ctx context.Context, activeOnly, featuredOnly bool, limit int) ([]*data.Dahabiya, error)
	GetBySlug(ctx context.Context, slug string) (*data.Dahabiya, error)
	GetByID(ctx context.Context, id int64) (*data.Dahabiya, error)
	Create(ctx context.Context, boat *data.Dahabiya) error
	Update(ctx context.Context, boat *data.Dahabiya) error
	Delete(ctx context.Context, id int64) error
}

// PackageRepository defines the interface for database operations on packages.
type PackageRepository interface {
	List(ctx context.Context, activeOnly, featuredOnly bool, limit int) ([]*data.Package, error)
	GetBySlug(ctx context.Context, slug string) (*data.Package, error)
	GetByID(ctx context.Context, id int64) (*data.Package, error)
	Create(ctx context.Context, pkg *data.Package) error
	Update(ctx context.Context, pkg *data.Package) error
	Delete(ctx context.Context, id int64) error
}

// CatalogRepository defines the interface for travel services and destinations.
type CatalogRepository interface {
	ListServices(ctx context.Context, f data.ServiceFilter) ([]*data.TravelService, int, error)
	CreateService(ctx context.Context, s *data.TravelService) error
	ListDestinations(ctx context.Context, activeOnly bool, limit int) ([]*data.Destination, error)
	GetDestination(ctx context.Context, slug string) (*data.Destination, error)
	CreateDestination(ctx context.Context, d *data.Destination) error
}

// ServicePage is one page of a travel service listing.
type ServicePage struct {
	Services    []*data.TravelService `json:"services"`
	Total       int                   `json:"total"`
	Pages       int                   `json:"pages"`
	CurrentPage int                   `json:"currentPage"`
}

// ServiceQuery selects a page of travel services.
type ServiceQuery struct {
	Page   int
	Limit  int
	Type   string
	Active bool
}

// CatalogService provides business logic for dahabiyat, packages, services and destinations.
type CatalogService struct {
	boats    DahabiyaRepository
	packages PackageRepository
	catalog  CatalogRepository
	events   Publisher
	log      logger.Logger
}

// NewCatalogService creates a new CatalogService. events may be nil.
func NewCatalogService(boats DahabiyaRepository, packages PackageRepository, catalog CatalogRepository, events Publisher, log logger.Logger) *CatalogService {
	return &CatalogService{boats: boats, packages: packages, catalog: catalog, events: events, log: log}
}

// Dahabiyat lists active vessels; featuredOnly and limit narrow the list.
func (s *CatalogService) Dahabiyat(ctx context.Context, featuredOnly bool, limit int) ([]*data.Dahabiya, error) {
	return s.boats.List(ctx, true, featuredOnly, limit)
}

// AllDahabiyat lists every vessel, active or not.
func (s *CatalogService) AllDahabiyat(ctx context.Context) ([]*data.Dahabiya, error) {
	return s.boats.List(ctx, false, false, 0)
}

// Dahabiya returns an active vessel by slug.
func (s *CatalogService) Dahabiya(ctx context.Context, slug string) (*data.Dahabiya, error) {
	boat, err := s.boats.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !boat.IsActive {
		return nil, data.ErrNotFound
	}
	return boat, nil
}

// DahabiyaByID returns a vessel by id regardless of its state.
func (s *CatalogService) DahabiyaByID(ctx context.Context, id int64) (*data.Dahabiya, error) {
	return s.boats.GetByID(ctx, id)
}

// SaveDahabiya validates and creates or updates a vessel.
func (s *CatalogService) SaveDahabiya(ctx context.Context, boat *data.Dahabiya) error {
	boat.Name = strings.TrimSpace(boat.Name)
	if boat.Name == "" {
		return invalid("name", "is required")
	}
	slug, err := normalizeSlug(boat.Slug, boat.Name)
	if err != nil {
		return err
	}
	boat.Slug = slug
	if boat.PricePerDay < 0 {
		return invalid("pricePerDay", "must not be negative")
	}
	if boat.Capacity < 0 || boat.Cabins < 0 {
		return invalid("capacity", "must not be negative")
	}
	if boat.Rating < 0 || boat.Rating > 5 {
		return invalid("rating", "must be between 0 and 5")
	}
	for _, img := range boat.Images {
		if err := validateLink(img); err != nil {
			return invalid("images", "%v", err)
		}
	}
	if err := validateLink(boat.VideoURL); err != nil {
		return invalid("videoUrl", "%v", err)
	}

	if boat.ID == 0 {
		err = s.boats.Create(ctx, boat)
	} else {
		err = s.boats.Update(ctx, boat)
	}
	if err != nil {
		return err
	}
	s.changed(ctx, "dahabiyat", boat.Slug)
	return nil
}

// DeleteDahabiya removes a vessel.
func (s *CatalogService) DeleteDahabiya(ctx context.Context, id int64) error {
	if err := s.boats.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "dahabiyat", fmt.Sprint(id))
	return nil
}

// Packages lists active packages; featuredOnly and limit narrow the list.
func (s *CatalogService) Packages(ctx context.Context, featuredOnly bool, limit int) ([]*data.Package, error) {
	return s.packages.List(ctx, true, featuredOnly, limit)
}

// AllPackages lists every package, active or not.
func (s *CatalogService) AllPackages(ctx context.Context) ([]*data.Package, error) {
	return s.packages.List(ctx, false, false, 0)
}

// Package returns an active package by slug with its itinerary.
func (s *CatalogService) Package(ctx context.Context, slug string) (*data.Package, error) {
	pkg, err := s.packages.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, data.ErrNotFound
	}
	return pkg, nil
}

// PackageByID returns a package by id regardless of its state.
func (s *CatalogService) PackageByID(ctx context.Context, id int64) (*data.Package, error) {
	return s.packages.GetByID(ctx, id)
}

// SavePackage validates and creates or updates a package with its itinerary.
func (s *CatalogService) SavePackage(ctx context.Context, pkg *data.Package) error {
	pkg.Name = strings.TrimSpace(pkg.Name)
	if pkg.Name == "" {
		return invalid("name", "is required")
	}
	slug, err := normalizeSlug(pkg.Slug, pkg.Name)
	if err != nil {
		return err
	}
	pkg.Slug = slug
	if pkg.Price < 0 {
		return invalid("price", "must not be negative")
	}
	if pkg.DurationDays < 1 {
		return invalid("durationDays", "must be at least 1")
	}
	if pkg.MaxGuests < 0 {
		return invalid("maxGuests", "must not be negative")
	}
	if err := validateLink(pkg.MainImageURL); err != nil {
		return invalid("mainImageUrl", "%v", err)
	}
	if pkg.DahabiyaID != nil {
		if _, err := s.boats.GetByID(ctx, *pkg.DahabiyaID); err != nil {
			return invalid("dahabiyaId", "unknown dahabiya %d", *pkg.DahabiyaID)
		}
	}
	seen := make(map[int]bool, len(pkg.Itinerary))
	for i := range pkg.Itinerary {
		day := &pkg.Itinerary[i]
		if day.DayNumber == 0 {
			day.DayNumber = i + 1
		}
		if seen[day.DayNumber] {
			return invalid("itineraryDays", "day %d is listed twice", day.DayNumber)
		}
		seen[day.DayNumber] = true
		if strings.TrimSpace(day.Title) == "" {
			return invalid("itineraryDays", "day %d needs a title", day.DayNumber)
		}
	}

	if pkg.ID == 0 {
		err = s.packages.Create(ctx, pkg)
	} else {
		err = s.packages.Update(ctx, pkg)
	}
	if err != nil {
		return err
	}
	s.changed(ctx, "packages", pkg.Slug)
	return nil
}

// DeletePackage removes a package and its itinerary.
func (s *CatalogService) DeletePackage(ctx context.Context, id int64) error {
	if err := s.packages.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "packages", fmt.Sprint(id))
	return nil
}

// Services returns one page of travel services, newest first.
func (s *CatalogService) Services(ctx context.Context, q ServiceQuery) (*ServicePage, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultServiceLimit
	}
	if q.Limit > MaxServiceLimit {
		q.Limit = MaxServiceLimit
	}
	if q.Page < 1 {
		q.Page = 1
	}
	services, total, err := s.catalog.ListServices(ctx, data.ServiceFilter{
		Type:       q.Type,
		ActiveOnly: q.Active,
		Limit:      q.Limit,
		Offset:     (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []*data.TravelService{}
	}
	return &ServicePage{
		Services:    services,
		Total:       total,
		Pages:       (total + q.Limit - 1) / q.Limit,
		CurrentPage: q.Page,
	}, nil
}

// CreateService validates and stores a travel service.
func (s *CatalogService) CreateService(ctx context.Context, svc *data.TravelService) error {
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return invalid("name", "is required")
	}
	slug, err := normalizeSlug(svc.Slug, svc.Name)
	if err != nil {
		return err
	}
	svc.Slug = slug
	if svc.ServiceType == "" {
		svc.ServiceType = "excursion"
	}
	if err := validateLink(svc.ImageURL); err != nil {
		return invalid("imageUrl", "%v", err)
	}
	if err := s.catalog.CreateService(ctx, svc); err != nil {
		return err
	}
	s.changed(ctx, "excursions", svc.Slug)
	return nil
}

// Destinations lists active destinations in menu order.
func (s *CatalogService) Destinations(ctx context.Context) ([]*data.Destination, error) {
	return s.catalog.ListDestinations(ctx, true, DefaultDestinationLimit)
}

// CreateDestination validates and stores a destination.
func (s *CatalogService) CreateDestination(ctx context.Context, d *data.Destination) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return invalid("name", "is required")
	}
	slug, err := normalizeSlug(d.Slug, d.Name)
	if err != nil {
		return err
	}
	d.Slug = slug
	if d.Country == "" {
		d.Country = "Egypt"
	}
	if err := s.catalog.CreateDestination(ctx, d); err != nil {
		return err
	}
	s.changed(ctx, "destinations", d.Slug)
	return nil
}

// normalizeSlug derives a slug from name when slug is empty and checks its form.
func normalizeSlug(slug, name string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = util.Slugify(name)
	}
	if !util.IsValidSlug(slug) {
		return "", invalid("slug", "%q is not a valid slug", slug)
	}
	return slug, nil
}

func (s *CatalogService) changed(ctx context.Context, page, key string) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, broadcast.NewEvent(broadcast.CatalogChanged, page, key, "")); err != nil {
		s.log.Error(err, "failed to broadcast catalog change")
	}
}

package service

import (
	"context"
	"strings"

	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/nav"
)

// NavigationRepository defines the interface for stored menus.
type NavigationRepository interface {
	Tree(ctx context.Context, location string) ([]*data.NavigationItem, error)
	Create(ctx context.Context, item *data.NavigationItem) error
	Update(ctx context.Context, item *data.NavigationItem) error
	Delete(ctx context.Context, id int64) error
}

// DestinationLister lists the destinations shown in the mega-menu.
type DestinationLister interface {
	Destinations(ctx context.Context) ([]*data.Destination, error)
}

// NavigationService builds the header and footer menus.
type NavigationService struct {
	repo         NavigationRepository
	destinations DestinationLister
	log          logger.Logger
}

// NewNavigationService creates a new NavigationService.
func NewNavigationService(repo NavigationRepository, destinations DestinationLister, log logger.Logger) *NavigationService {
	return &NavigationService{repo: repo, destinations: destinations, log: log}
}

// Menu returns the menu for location. Stored items win; when there are none or
// the store fails, the built-in defaults are used. Fetch failures are logged
// and never returned.
func (s *NavigationService) Menu(ctx context.Context, location string) []nav.Item {
	var items []nav.Item
	stored, err := s.repo.Tree(ctx, location)
	if err != nil {
		s.log.With(map[string]interface{}{"location": location}).Warn("navigation fetch failed: " + err.Error())
	}
	if len(stored) > 0 {
		items = nav.FromStore(stored)
	} else if location == nav.LocationFooter {
		items = nav.DefaultFooter
	} else {
		items = nav.DefaultHeader
	}

	if location != nav.LocationHeader {
		return items
	}
	dests, err := s.destinations.Destinations(ctx)
	if err != nil {
		s.log.Warn("destination fetch failed: " + err.Error())
		return items
	}
	return nav.WithDestinations(items, dests)
}

// Stored returns the stored items for location without defaults.
func (s *NavigationService) Stored(ctx context.Context, location string) ([]*data.NavigationItem, error) {
	items, err := s.repo.Tree(ctx, location)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*data.NavigationItem{}
	}
	return items, nil
}

// Create stores a menu item.
func (s *NavigationService) Create(ctx context.Context, item *data.NavigationItem) error {
	if err := validateNavigation(item); err != nil {
		return err
	}
	return s.repo.Create(ctx, item)
}

// Update rewrites a stored menu item.
func (s *NavigationService) Update(ctx context.Context, item *data.NavigationItem) error {
	if err := validateNavigation(item); err != nil {
		return err
	}
	if item.ParentID != nil && *item.ParentID == item.ID {
		return invalid("parentId", "an item cannot be its own parent")
	}
	return s.repo.Update(ctx, item)
}

// Delete removes a stored menu item and its children.
func (s *NavigationService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateNavigation(item *data.NavigationItem) error {
	item.Title = strings.TrimSpace(item.Title)
	item.URL = strings.TrimSpace(item.URL)
	if item.Title == "" {
		return invalid("title", "is required")
	}
	if err := validateLink(item.URL); err != nil || item.URL == "" {
		return invalid("url", "must be a path starting with / or an http(s) URL")
	}
	switch item.Location {
	case "":
		item.Location = nav.LocationHeader
	case nav.LocationHeader, nav.LocationFooter:
	default:
		return invalid("menuLocation", "must be %s or %s", nav.LocationHeader, nav.LocationFooter)
	}
	return nil
}

package main

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/util"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed sample_catalog.yaml
var sampleCatalog []byte

type sampleData struct {
	Dahabiyat []struct {
		Name             string   `yaml:"name"`
		ShortDescription string   `yaml:"shortDescription"`
		Description      string   `yaml:"description"`
		PricePerDay      float64  `yaml:"pricePerDay"`
		Capacity         int      `yaml:"capacity"`
		Cabins           int      `yaml:"cabins"`
		Rating           float64  `yaml:"rating"`
		Images           []string `yaml:"images"`
		Featured         bool     `yaml:"featured"`
	} `yaml:"dahabiyat"`
	Packages []struct {
		Name             string   `yaml:"name"`
		ShortDescription string   `yaml:"shortDescription"`
		Description      string   `yaml:"description"`
		Price            float64  `yaml:"price"`
		DurationDays     int      `yaml:"durationDays"`
		MaxGuests        int      `yaml:"maxGuests"`
		MainImage        string   `yaml:"mainImage"`
		Dahabiya         string   `yaml:"dahabiya"` // slug
		Featured         bool     `yaml:"featured"`
		Highlights       []string `yaml:"highlights"`
		Inclusions       []string `yaml:"inclusions"`
		Exclusions       []string `yaml:"exclusions"`
		Itinerary        []struct {
			Title       string `yaml:"title"`
			Description string `yaml:"description"`
		} `yaml:"itinerary"`
	} `yaml:"packages"`
	Services []struct {
		Name        string  `yaml:"name"`
		Type        string  `yaml:"type"`
		Description string  `yaml:"description"`
		Price       float64 `yaml:"price"`
		Duration    string  `yaml:"duration"`
	} `yaml:"services"`
	Destinations []struct {
		Name   string `yaml:"name"`
		Region string `yaml:"region"`
		Image  string `yaml:"image"`
	} `yaml:"destinations"`
	Posts []struct {
		Title   string `yaml:"title"`
		Excerpt string `yaml:"excerpt"`
		Author  string `yaml:"author"`
		Body    string `yaml:"body"`
	} `yaml:"posts"`
	Navigation []struct {
		Title    string `yaml:"title"`
		URL      string `yaml:"url"`
		Location string `yaml:"location"`
		Children []struct {
			Title string `yaml:"title"`
			URL   string `yaml:"url"`
		} `yaml:"children"`
	} `yaml:"navigation"`
}

func seedCmd() *cobra.Command {
	var withCatalog bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store the default site content and, optionally, a sample catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			// No cache: the server's cache entries expire on their own.
			svc, err := newServices(db, nil, cfg, log)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			n, err := svc.content.Seed(ctx)
			if err != nil {
				return fmt.Errorf("failed to seed content: %w", err)
			}
			log.Info(fmt.Sprintf("Stored %d default content field(s).", n))

			if withCatalog {
				return seedCatalog(ctx, svc, log)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withCatalog, "catalog", false, "also load the sample catalog, blog posts and footer menu")
	return cmd
}

// seedCatalog loads the sample catalog into an empty catalog.
func seedCatalog(ctx context.Context, svc *services, log logger.Logger) error {
	existing, err := svc.catalog.AllDahabiyat(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Warn("Catalog is not empty; skipping the sample catalog.")
		return nil
	}

	var sample sampleData
	if err := yaml.Unmarshal(sampleCatalog, &sample); err != nil {
		return fmt.Errorf("failed to parse sample catalog: %w", err)
	}

	boats := make(map[string]int64)
	for i, d := range sample.Dahabiyat {
		boat := &data.Dahabiya{
			Name:             d.Name,
			ShortDescription: d.ShortDescription,
			Description:      d.Description,
			PricePerDay:      d.PricePerDay,
			Capacity:         d.Capacity,
			Cabins:           d.Cabins,
			Rating:           d.Rating,
			Images:           d.Images,
			IsFeatured:       d.Featured,
			IsActive:         true,
			Order:            i,
		}
		if err := svc.catalog.SaveDahabiya(ctx, boat); err != nil {
			return fmt.Errorf("dahabiya %q: %w", d.Name, err)
		}
		boats[boat.Slug] = boat.ID
	}

	for _, p := range sample.Packages {
		pkg := &data.Package{
			Name:             p.Name,
			ShortDescription: p.ShortDescription,
			Description:      p.Description,
			Price:            p.Price,
			DurationDays:     p.DurationDays,
			MaxGuests:        p.MaxGuests,
			MainImageURL:     p.MainImage,
			Highlights:       p.Highlights,
			Inclusions:       p.Inclusions,
			Exclusions:       p.Exclusions,
			IsFeatured:       p.Featured,
			IsActive:         true,
		}
		if id, ok := boats[util.Slugify(p.Dahabiya)]; ok {
			pkg.DahabiyaID = &id
		}
		for i, day := range p.Itinerary {
			pkg.Itinerary = append(pkg.Itinerary, data.ItineraryDay{DayNumber: i + 1, Title: day.Title, Description: day.Description})
		}
		if err := svc.catalog.SavePackage(ctx, pkg); err != nil {
			return fmt.Errorf("package %q: %w", p.Name, err)
		}
	}

	for _, s := range sample.Services {
		err := svc.catalog.CreateService(ctx, &data.TravelService{
			Name:        s.Name,
			ServiceType: s.Type,
			Description: s.Description,
			Price:       s.Price,
			Duration:    s.Duration,
			IsActive:    true,
		})
		if err != nil {
			return fmt.Errorf("service %q: %w", s.Name, err)
		}
	}

	for i, d := range sample.Destinations {
		err := svc.catalog.CreateDestination(ctx, &data.Destination{
			Name:       d.Name,
			Region:     d.Region,
			ImageCover: d.Image,
			IsActive:   true,
			Order:      i,
		})
		if err != nil {
			return fmt.Errorf("destination %q: %w", d.Name, err)
		}
	}

	now := time.Now().UTC()
	for _, p := range sample.Posts {
		err := svc.blog.Create(ctx, &data.BlogPost{
			Title:       p.Title,
			Excerpt:     p.Excerpt,
			Author:      p.Author,
			Body:        p.Body,
			IsPublished: true,
			PublishedAt: &now,
		})
		if err != nil {
			return fmt.Errorf("post %q: %w", p.Title, err)
		}
	}

	for i, n := range sample.Navigation {
		parent := &data.NavigationItem{Title: n.Title, URL: n.URL, Location: n.Location, Order: i, IsActive: true}
		if err := svc.navigation.Create(ctx, parent); err != nil {
			return fmt.Errorf("menu item %q: %w", n.Title, err)
		}
		for j, c := range n.Children {
			child := &data.NavigationItem{Title: c.Title, URL: c.URL, Location: parent.Location, ParentID: &parent.ID, Order: j, IsActive: true}
			if err := svc.navigation.Create(ctx, child); err != nil {
				return fmt.Errorf("menu item %q: %w", c.Title, err)
			}
		}
	}

	log.Info(fmt.Sprintf("Loaded sample catalog: %d dahabiyat, %d packages, %d services, %d destinations, %d posts, %d menu items.",
		len(sample.Dahabiyat), len(sample.Packages), len(sample.Services), len(sample.Destinations), len(sample.Posts), len(sample.Navigation)))
	return nil
}

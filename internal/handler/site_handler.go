package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/middleware"
	"dahabiya-site/internal/service"

	"github.com/go-chi/chi/v5"
)

// CatalogReader reads the public catalog.
type CatalogReader interface {
	Dahabiyat(ctx context.Context, featuredOnly bool, limit int) ([]*data.Dahabiya, error)
	Dahabiya(ctx context.Context, slug string) (*data.Dahabiya, error)
	Packages(ctx context.Context, featuredOnly bool, limit int) ([]*data.Package, error)
	Package(ctx context.Context, slug string) (*data.Package, error)
	Services(ctx context.Context, q service.ServiceQuery) (*service.ServicePage, error)
	Destinations(ctx context.Context) ([]*data.Destination, error)
}

// BlogReader reads published posts.
type BlogReader interface {
	Posts(ctx context.Context, limit int) ([]*data.BlogPost, error)
	Post(ctx context.Context, slug string) (*data.BlogPost, error)
}

// Listing sizes on the home page.
const (
	homeDahabiyaLimit = 6
	homePackageLimit  = 6
	homePostLimit     = 3
)

// SiteHandler serves the public pages.
type SiteHandler struct {
	content ContentLoader
	catalog CatalogReader
	blog    BlogReader
	shell   *shellBuilder
	view    middleware.Renderer
	log     logger.Logger
}

// NewSiteHandler creates a new SiteHandler with the given dependencies.
func NewSiteHandler(cl ContentLoader, catalog CatalogReader, blog BlogReader, menus MenuBuilder, v middleware.Renderer, opts ShellOptions, log logger.Logger) *SiteHandler {
	return &SiteHandler{
		content: cl,
		catalog: catalog,
		blog:    blog,
		shell:   &shellBuilder{content: cl, menus: menus, opts: opts},
		view:    v,
		log:     log,
	}
}

// render adds the shell and renders a page template.
func (h *SiteHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data map[string]interface{}) *middleware.AppError {
	data["Shell"] = h.shell.build(r, title)
	data["Title"] = title
	if err := h.view.Render(w, r, name, data); err != nil {
		return middleware.Internal(err, "Failed to render page")
	}
	return nil
}

// listing masks a catalog failure as an empty list.
func listing[T any](log logger.Logger, what string, items []T, err error) []T {
	if err != nil {
		log.Warn(what + " unavailable: " + err.Error())
		return nil
	}
	return items
}

// home renders the landing page: hero, featured dahabiyat and packages,
// story sections and recent posts.
func (h *SiteHandler) home(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	ctx := r.Context()
	c := h.content.Load(ctx, "homepage")

	boats, err := h.catalog.Dahabiyat(ctx, false, homeDahabiyaLimit)
	boats = listing(h.log, "dahabiyat", boats, err)
	packages, err := h.catalog.Packages(ctx, false, homePackageLimit)
	packages = listing(h.log, "packages", packages, err)
	posts, err := h.blog.Posts(ctx, homePostLimit)
	posts = listing(h.log, "blog posts", posts, err)
	destinations, err := h.catalog.Destinations(ctx)
	destinations = listing(h.log, "destinations", destinations, err)

	var slides []string
	for _, key := range []string{"hero_image_1", "hero_image_2", "hero_image_3"} {
		if v := c.Text(key); v != "" {
			slides = append(slides, v)
		}
	}
	if len(slides) == 0 {
		slides = []string{h.content.Load(ctx, pageGlobalMedia).Text("hero_fallback_image")}
	}

	return h.render(w, r, "home.html", "", map[string]interface{}{
		"C":              c,
		"DahabiyaLabels": h.content.Load(ctx, "dahabiyas"),
		"PackageLabels":  h.content.Load(ctx, "packages"),
		"HeroVideo":      c.Get("hero_video_url", ""),
		"Slides":         slides,
		"Dahabiyat":      boats,
		"Packages":       packages,
		"Posts":          posts,
		"Destinations":   destinations,
	})
}

func (h *SiteHandler) dahabiyat(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	boats, err := h.catalog.Dahabiyat(r.Context(), false, 0)
	c := h.content.Load(r.Context(), "dahabiyas")
	return h.render(w, r, "dahabiyat.html", c.Text("dahabiyas_hero_title"), map[string]interface{}{
		"C":         c,
		"Dahabiyat": listing(h.log, "dahabiyat", boats, err),
	})
}

func (h *SiteHandler) dahabiya(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	boat, err := h.catalog.Dahabiya(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return lookupError(err, "Dahabiya not found")
	}
	return h.render(w, r, "dahabiya.html", boat.Name, map[string]interface{}{
		"C":        h.content.Load(r.Context(), "dahabiyas"),
		"Dahabiya": boat,
	})
}

func (h *SiteHandler) packages(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	packages, err := h.catalog.Packages(r.Context(), false, 0)
	c := h.content.Load(r.Context(), "packages")
	return h.render(w, r, "packages.html", c.Text("packages_hero_title"), map[string]interface{}{
		"C":        c,
		"Packages": listing(h.log, "packages", packages, err),
	})
}

func (h *SiteHandler) packageDetail(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pkg, err := h.catalog.Package(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return lookupError(err, "Package not found")
	}
	return h.render(w, r, "package.html", pkg.Name, map[string]interface{}{
		"C":       h.content.Load(r.Context(), "packages"),
		"Package": pkg,
	})
}

func (h *SiteHandler) excursions(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	result, err := h.catalog.Services(r.Context(), service.ServiceQuery{
		Page:   page,
		Type:   r.URL.Query().Get("type"),
		Active: true,
	})
	if err != nil {
		h.log.Warn("travel services unavailable: " + err.Error())
		result = &service.ServicePage{CurrentPage: 1}
	}
	c := h.content.Load(r.Context(), "excursions")
	return h.render(w, r, "excursions.html", c.Text("excursions_hero_title"), map[string]interface{}{
		"C":       c,
		"Results": result,
		"Type":    r.URL.Query().Get("type"),
	})
}

func (h *SiteHandler) destinations(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	dests, err := h.catalog.Destinations(r.Context())
	return h.render(w, r, "destinations.html", "", map[string]interface{}{
		"C":            h.content.Load(r.Context(), "homepage"),
		"Destinations": listing(h.log, "destinations", dests, err),
	})
}

func (h *SiteHandler) blogIndex(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.blog.Posts(r.Context(), 0)
	c := h.content.Load(r.Context(), "blog")
	return h.render(w, r, "blog.html", c.Text("blog_hero_title"), map[string]interface{}{
		"C":     c,
		"Posts": listing(h.log, "blog posts", posts, err),
	})
}

func (h *SiteHandler) blogPost(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	post, err := h.blog.Post(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return lookupError(err, "Post not found")
	}
	return h.render(w, r, "post.html", post.Title, map[string]interface{}{
		"C":    h.content.Load(r.Context(), "blog"),
		"Post": post,
	})
}

// notFound renders the error page for unknown routes.
func (h *SiteHandler) notFound(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return middleware.NotFound(errors.New("no route for " + r.URL.Path))
}

// lookupError maps a missing record to 404 and anything else to 500.
func lookupError(err error, msg string) *middleware.AppError {
	if errors.Is(err, data.ErrNotFound) {
		return &middleware.AppError{Error: err, Message: msg, Code: http.StatusNotFound}
	}
	return middleware.Internal(err, "Failed to load page")
}

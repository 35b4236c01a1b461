package handler

import (
	"io/fs"
	"net/http"

	"dahabiya-site/internal/middleware"
	"dahabiya-site/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Router bundles everything NewRouter wires together.
type Router struct {
	Site     *SiteHandler
	API      *APIHandler
	Admin    *AdminHandler
	Auth     *AuthHandler
	Seo      *SeoHandler
	Updates  http.Handler // server-sent content change events
	Static   fs.FS
	Sessions session.Manager

	Authorize func(http.Handler) http.Handler
	Settings  func(http.Handler) http.Handler
	Limiter   *middleware.WriteLimiter
	Errors    func(middleware.AppHandler) http.Handler
	APIErrors func(middleware.AppHandler) http.Handler
}

// NewRouter creates and configures a new chi router.
func NewRouter(rt Router) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(rt.Sessions.LoadAndSave)

	page := rt.Errors
	api := rt.APIErrors

	// Unknown paths get a plain 404 without an authorization round.
	r.NotFound(page(rt.Site.notFound).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(rt.Authorize)
		r.Use(rt.Settings)
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(rt.Static))))
		r.Get("/robots.txt", rt.Seo.robotsHandler)
		r.Get("/sitemap.xml", rt.Seo.sitemapHandler)

		// Public pages
		r.Method(http.MethodGet, "/", page(rt.Site.home))
		r.Method(http.MethodGet, "/dahabiyat", page(rt.Site.dahabiyat))
		r.Method(http.MethodGet, "/dahabiyat/{slug}", page(rt.Site.dahabiya))
		r.Method(http.MethodGet, "/packages", page(rt.Site.packages))
		r.Method(http.MethodGet, "/packages/{slug}", page(rt.Site.packageDetail))
		r.Method(http.MethodGet, "/excursions", page(rt.Site.excursions))
		r.Method(http.MethodGet, "/destinations", page(rt.Site.destinations))
		r.Method(http.MethodGet, "/blog", page(rt.Site.blogIndex))
		r.Method(http.MethodGet, "/blog/{slug}", page(rt.Site.blogPost))

		// Authentication routes
		r.Method(http.MethodGet, "/auth/login", page(rt.Auth.handleLogin))
		r.Method(http.MethodGet, "/auth/callback", page(rt.Auth.handleCallback))
		r.Method(http.MethodGet, "/auth/logout", page(rt.Auth.handleLogout))
		r.Method(http.MethodPost, "/auth/logout", page(rt.Auth.handleLogout))

		r.Route("/api", func(r chi.Router) {
			r.Use(rt.Limiter.Middleware)

			r.Method(http.MethodGet, "/website-content", api(rt.API.listContent))
			r.Method(http.MethodPut, "/website-content", api(rt.API.saveContent))
			r.Method(http.MethodDelete, "/website-content", api(rt.API.deleteContent))
			r.Method(http.MethodGet, "/settings", api(rt.API.settings))
			r.Method(http.MethodGet, "/packages", api(rt.API.listPackages))
			r.Method(http.MethodGet, "/packages/{slug}", api(rt.API.getPackage))
			r.Method(http.MethodGet, "/dahabiyat", api(rt.API.listDahabiyat))
			r.Method(http.MethodGet, "/dahabiyat/{slug}", api(rt.API.getDahabiya))
			r.Method(http.MethodGet, "/destinations", api(rt.API.listDestinations))
			r.Method(http.MethodGet, "/travel-services", api(rt.API.listServices))
			r.Method(http.MethodGet, "/navigation", api(rt.API.navigation))
			r.Handle("/content-updates", rt.Updates)

			r.Route("/admin", func(r chi.Router) {
				r.Method(http.MethodGet, "/packages", api(rt.API.adminListPackages))
				r.Method(http.MethodPost, "/packages", api(rt.API.createPackage))
				r.Method(http.MethodPut, "/packages/{id}", api(rt.API.updatePackage))
				r.Method(http.MethodDelete, "/packages/{id}", api(rt.API.deletePackage))
				r.Method(http.MethodGet, "/dahabiyat", api(rt.API.adminListDahabiyat))
				r.Method(http.MethodPost, "/dahabiyat", api(rt.API.createDahabiya))
				r.Method(http.MethodPut, "/dahabiyat/{id}", api(rt.API.updateDahabiya))
				r.Method(http.MethodDelete, "/dahabiyat/{id}", api(rt.API.deleteDahabiya))
				r.Method(http.MethodPost, "/navigation", api(rt.API.createNavigation))
				r.Method(http.MethodPut, "/navigation/{id}", api(rt.API.updateNavigation))
				r.Method(http.MethodDelete, "/navigation/{id}", api(rt.API.deleteNavigation))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(rt.Limiter.Middleware)

			r.Method(http.MethodGet, "/", page(rt.Admin.dashboard))
			r.Method(http.MethodGet, "/content/{page}", page(rt.Admin.editContent))
			r.Method(http.MethodPost, "/content/{page}", page(rt.Admin.saveContent))
			r.Method(http.MethodGet, "/packages", page(rt.Admin.listPackages))
			r.Method(http.MethodGet, "/packages/new", page(rt.Admin.newPackage))
			r.Method(http.MethodPost, "/packages", page(rt.Admin.savePackage))
			r.Method(http.MethodGet, "/packages/{id}/edit", page(rt.Admin.editPackage))
			r.Method(http.MethodPost, "/packages/{id}", page(rt.Admin.savePackage))
			r.Method(http.MethodPost, "/packages/{id}/delete", page(rt.Admin.deletePackage))
		})
	})

	return r
}

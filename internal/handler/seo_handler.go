package handler

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
)

// SitemapSource lists the records that get their own URL.
type SitemapSource interface {
	Dahabiyat(ctx context.Context, featuredOnly bool, limit int) ([]*data.Dahabiya, error)
	Packages(ctx context.Context, featuredOnly bool, limit int) ([]*data.Package, error)
}

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	catalog SitemapSource
	blog    BlogReader
	baseURL string
	log     logger.Logger
}

// NewSeoHandler creates a new SeoHandler.
func NewSeoHandler(catalog SitemapSource, blog BlogReader, baseURL string, log logger.Logger) *SeoHandler {
	return &SeoHandler{catalog: catalog, blog: blog, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// robotsHandler serves robots.txt, keeping crawlers out of the admin panel.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /admin")
	fmt.Fprintln(w, "Disallow: /api/")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

var staticPaths = []string{"/", "/dahabiyat", "/packages", "/excursions", "/destinations", "/blog"}

// sitemapHandler generates and serves a dynamic sitemap.xml.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sitemap := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range staticPaths {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{Loc: h.baseURL + p})
	}

	boats, err := h.catalog.Dahabiyat(ctx, false, 0)
	if err != nil {
		http.Error(w, "Failed to retrieve dahabiyat for sitemap", http.StatusInternalServerError)
		return
	}
	for _, b := range boats {
		sitemap.URLs = append(sitemap.URLs, h.entry("/dahabiyat/"+b.Slug, b.UpdatedAt))
	}

	packages, err := h.catalog.Packages(ctx, false, 0)
	if err != nil {
		http.Error(w, "Failed to retrieve packages for sitemap", http.StatusInternalServerError)
		return
	}
	for _, p := range packages {
		sitemap.URLs = append(sitemap.URLs, h.entry("/packages/"+p.Slug, p.UpdatedAt))
	}

	posts, err := h.blog.Posts(ctx, 0)
	if err != nil {
		http.Error(w, "Failed to retrieve posts for sitemap", http.StatusInternalServerError)
		return
	}
	for _, p := range posts {
		sitemap.URLs = append(sitemap.URLs, h.entry("/blog/"+p.Slug, p.UpdatedAt))
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		h.log.Error(err, "failed to encode sitemap")
	}
}

func (h *SeoHandler) entry(path string, updated time.Time) sitemapURL {
	u := sitemapURL{Loc: h.baseURL + path}
	if !updated.IsZero() {
		u.LastMod = updated.Format(sitemapDateFormat)
	}
	return u
}

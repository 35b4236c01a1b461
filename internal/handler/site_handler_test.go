//go:build unit

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/middleware"
	"dahabiya-site/internal/service"
	"dahabiya-site/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type siteFixture struct {
	content *fakeContent
	catalog *fakeCatalog
	blog    *fakeBlog
	menus   *fakeMenus
	handler *SiteHandler
	view    *view.View
}

func newSiteFixture(t *testing.T) *siteFixture {
	t.Helper()
	f := &siteFixture{
		content: newFakeContent(),
		catalog: &fakeCatalog{},
		blog:    &fakeBlog{},
		menus:   &fakeMenus{},
		view:    newTestView(t),
	}
	f.handler = NewSiteHandler(f.content, f.catalog, f.blog, f.menus, f.view, ShellOptions{
		SiteName:        "Test Nile",
		MenuCloseDelay:  250 * time.Millisecond,
		ScrollThreshold: 20,
	}, logger.Nop())
	return f
}

func (f *siteFixture) route(pattern string, fn middleware.AppHandler) http.Handler {
	return routeOnce(f.view, http.MethodGet, pattern, fn)
}

func TestHome_EmptyCatalogRendersEmptyStates(t *testing.T) {
	f := newSiteFixture(t)

	rr, doc := get(t, f.route("/", f.handler.home), "/")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "homepage", doc.Find("body").AttrOr("data-content-page", ""))
	assert.Equal(t, 0, doc.Find(".dahabiya-card").Length())
	assert.Contains(t, doc.Find("#dahabiyat .empty-state").Text(), "No dahabiyat found")
	assert.Equal(t, 1, doc.Find("#packages .empty-state").Length())
}

func TestHome_SlideshowUsesDefaultsWithoutVideo(t *testing.T) {
	f := newSiteFixture(t)

	_, doc := get(t, f.route("/", f.handler.home), "/")

	assert.Equal(t, 0, doc.Find(".hero video").Length())
	slides := doc.Find(".hero-slides .hero-slide")
	require.Equal(t, 3, slides.Length())
	assert.Equal(t, "/static/images/hero-1.jpg", slides.First().AttrOr("src", ""))
	assert.Equal(t, "DISCOVER EGYPT", strings.TrimSpace(doc.Find(".hero-content h1").Text()))
}

func TestHome_VideoHeroWhenConfigured(t *testing.T) {
	f := newSiteFixture(t)
	f.content.set("homepage", "hero_video_url", "/static/video/nile.mp4")
	f.content.set("homepage", "hero_video_title", "SAIL THE NILE")

	_, doc := get(t, f.route("/", f.handler.home), "/")

	assert.Equal(t, "/static/video/nile.mp4", doc.Find(".hero video source").AttrOr("src", ""))
	assert.Equal(t, 0, doc.Find(".hero-slides").Length())
	assert.Equal(t, "SAIL THE NILE", strings.TrimSpace(doc.Find(".hero-content h1").Text()))
}

func TestHome_ListsCatalog(t *testing.T) {
	f := newSiteFixture(t)
	f.catalog.boats = []*data.Dahabiya{{ID: 1, Slug: "nefertiti", Name: "Nefertiti", Capacity: 12, PricePerDay: 450, Images: data.StringList{"/img/n.jpg"}}}
	f.catalog.packages = []*data.Package{{ID: 1, Slug: "luxor-aswan", Name: "Luxor to Aswan", DurationDays: 5, Price: 1800}}

	_, doc := get(t, f.route("/", f.handler.home), "/")

	card := doc.Find(".dahabiya-card")
	require.Equal(t, 1, card.Length())
	assert.Equal(t, "/dahabiyat/nefertiti", card.Find(".card-title a").AttrOr("href", ""))
	assert.Contains(t, card.Text(), "Up to 12 guests")
	assert.Contains(t, card.Text(), "$450")
	assert.Equal(t, 1, doc.Find(".package-card").Length())
	assert.Equal(t, 0, doc.Find(".empty-state").Length())
}

func TestHome_ResolvesEachPageOnce(t *testing.T) {
	f := newSiteFixture(t)

	get(t, f.route("/", f.handler.home), "/")

	assert.Equal(t, 1, f.content.loads["homepage"])
	assert.Equal(t, 1, f.content.loads[pageBranding])
	assert.Equal(t, 1, f.content.loads[pageFooter])
}

func TestDahabiyat_StoredValueOverridesDefault(t *testing.T) {
	f := newSiteFixture(t)
	f.content.set("dahabiyas", "dahabiyas_hero_title", "Our Boats")

	_, doc := get(t, f.route("/dahabiyat", f.handler.dahabiyat), "/dahabiyat")

	assert.Equal(t, "Our Boats", strings.TrimSpace(doc.Find(".page-hero h1").Text()))
	// Absent keys fall back to the declared default.
	assert.Contains(t, doc.Find(".advantages h2").Text(), "Why Choose Our Dahabiya Fleet")
	assert.Contains(t, doc.Find("title").Text(), "Our Boats")
}

func TestListings_CatalogFailureIsMasked(t *testing.T) {
	f := newSiteFixture(t)
	f.catalog.err = errors.New("database is down")

	tests := []struct {
		path    string
		handler middleware.AppHandler
		empty   string
	}{
		{"/dahabiyat", f.handler.dahabiyat, "No dahabiyat found"},
		{"/packages", f.handler.packages, "No Packages Available"},
		{"/excursions", f.handler.excursions, "No excursions available right now."},
		{"/destinations", f.handler.destinations, "No destinations to show yet."},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr, doc := get(t, f.route(tt.path, tt.handler), tt.path)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, doc.Find(".empty-state").Text(), tt.empty)
		})
	}
}

func TestBlogIndex_Empty(t *testing.T) {
	f := newSiteFixture(t)

	rr, doc := get(t, f.route("/blog", f.handler.blogIndex), "/blog")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, doc.Find(".empty-state").Text(), "No articles published yet.")
}

func TestDetailPages_UnknownSlugIs404(t *testing.T) {
	f := newSiteFixture(t)

	tests := []struct {
		pattern string
		target  string
		handler middleware.AppHandler
	}{
		{"/dahabiyat/{slug}", "/dahabiyat/missing", f.handler.dahabiya},
		{"/packages/{slug}", "/packages/missing", f.handler.packageDetail},
		{"/blog/{slug}", "/blog/missing", f.handler.blogPost},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr, doc := get(t, f.route(tt.pattern, tt.handler), tt.target)
			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Equal(t, "404", strings.TrimSpace(doc.Find(".error-page h1").Text()))
		})
	}
}

func TestPackageDetail_RendersItinerary(t *testing.T) {
	f := newSiteFixture(t)
	f.catalog.packages = []*data.Package{{
		ID: 1, Slug: "classic", Name: "Classic Nile", DurationDays: 3, Price: 900,
		Highlights: data.StringList{"Karnak at dawn"},
		Itinerary: []data.ItineraryDay{
			{DayNumber: 1, Title: "Luxor", Description: "Board in the afternoon"},
			{DayNumber: 2, Title: "Esna"},
		},
	}}

	rr, doc := get(t, f.route("/packages/{slug}", f.handler.packageDetail), "/packages/classic")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Classic Nile", strings.TrimSpace(doc.Find(".detail-header h1").Text()))
	assert.Equal(t, 2, doc.Find(".itinerary-day").Length())
	assert.Contains(t, doc.Find(".itinerary h2").Text(), "Day by Day")
	assert.Contains(t, doc.Find(".detail-list").First().Text(), "Karnak at dawn")
}

func TestPostPage_RendersMarkdownBody(t *testing.T) {
	f := newSiteFixture(t)
	blog, err := service.NewBlogService(nil).Render("## Aswan\n\nGranite and *sunsets*.")
	require.NoError(t, err)
	f.blog.posts = []*data.BlogPost{{Slug: "aswan", Title: "Aswan", HTMLBody: blog}}

	_, doc := get(t, f.route("/blog/{slug}", f.handler.blogPost), "/blog/aswan")

	assert.Equal(t, "Aswan", doc.Find(".rich-text h2").Text())
	assert.Equal(t, "sunsets", doc.Find(".rich-text em").Text())
}

func TestExcursions_Pagination(t *testing.T) {
	f := newSiteFixture(t)
	f.catalog.services = &service.ServicePage{
		Services:    []*data.TravelService{{Name: "Abu Simbel day trip", Price: 120}},
		Total:       25,
		Pages:       3,
		CurrentPage: 2,
	}

	_, doc := get(t, f.route("/excursions", f.handler.excursions), "/excursions?page=2&type=excursion")

	assert.Equal(t, 1, doc.Find(".service-card").Length())
	assert.Equal(t, "Page 2 of 3", strings.TrimSpace(doc.Find(".pagination-status").Text()))
	assert.Equal(t, "?page=1&type=excursion", doc.Find(`.pagination a[rel="prev"]`).AttrOr("href", ""))
	assert.Equal(t, "2", doc.Find(`.pagination-pages [aria-current="page"]`).Text())
}

func TestShell_MenuQueryPinsPanel(t *testing.T) {
	f := newSiteFixture(t)
	f.menus.dests = []*data.Destination{{Slug: "luxor", Name: "Luxor"}, {Slug: "aswan", Name: "Aswan"}}
	h := f.route("/", f.handler.home)

	_, closed := get(t, h, "/")
	panel := closed.Find("#panel-destinations")
	require.Equal(t, 1, panel.Length())
	_, hidden := panel.Attr("hidden")
	assert.True(t, hidden)
	assert.Equal(t, "/?menu=destinations", closed.Find(`.nav-trigger[aria-controls="panel-destinations"]`).AttrOr("href", ""))

	_, open := get(t, h, "/?menu=destinations")
	panel = open.Find("#panel-destinations")
	_, hidden = panel.Attr("hidden")
	assert.False(t, hidden)
	assert.Equal(t, "true", open.Find(`.nav-trigger[aria-controls="panel-destinations"]`).AttrOr("aria-expanded", ""))
	assert.Equal(t, 2, panel.Find("li").Length())
	assert.Equal(t, "/", open.Find(`.nav-trigger[aria-controls="panel-destinations"]`).AttrOr("href", ""))
	// site.js reads its close delay from this attribute.
	assert.Equal(t, strconv.FormatInt(f.handler.shell.opts.MenuCloseDelay.Milliseconds(), 10),
		open.Find("#site-nav").AttrOr("data-close-delay", ""))
}

func TestShell_ControlsKeepOtherQueryParameters(t *testing.T) {
	f := newSiteFixture(t)
	f.menus.dests = []*data.Destination{{Slug: "luxor", Name: "Luxor"}}
	h := f.route("/packages", f.handler.packages)

	_, doc := get(t, h, "/packages?page=2&featured=true")

	assert.Equal(t, "/packages?drawer=open&featured=true&page=2", doc.Find(".drawer-toggle").AttrOr("href", ""))
	assert.Equal(t, "/packages?featured=true&menu=destinations&page=2",
		doc.Find(`.nav-trigger[aria-controls="panel-destinations"]`).AttrOr("href", ""))
	assert.Equal(t, "/packages?featured=true&lang=ar&page=2", doc.Find(`.lang-switch a[lang="ar"]`).AttrOr("href", ""))

	_, doc = get(t, h, "/packages?page=2&drawer=open")
	assert.Equal(t, "/packages?page=2", doc.Find(".drawer-toggle").AttrOr("href", ""))
}

func TestShell_DrawerAndActiveItem(t *testing.T) {
	f := newSiteFixture(t)

	_, doc := get(t, f.route("/packages", f.handler.packages), "/packages?drawer=open")

	assert.True(t, doc.Find("#site-nav").HasClass("is-open"))
	assert.Equal(t, "page", doc.Find(`.nav-item a[href="/packages"]`).AttrOr("aria-current", ""))
	assert.Equal(t, "Test Nile", strings.TrimSpace(doc.Find(".brand-name").Text()))
}

func TestShell_BrandingAndFooterContent(t *testing.T) {
	f := newSiteFixture(t)
	f.content.set(pageBranding, "site_name", "Cleopatra")
	f.content.set(pageFooter, "footer-company-name", "Cleopatra Cruises")
	f.content.set(pageContact, "contact_email", "hello@example.com")

	_, doc := get(t, f.route("/", f.handler.home), "/")

	assert.Equal(t, "Cleopatra", strings.TrimSpace(doc.Find(".brand-name").Text()))
	assert.Equal(t, "Cleopatra Cruises", strings.TrimSpace(doc.Find(".footer-company h2").Text()))
	assert.Equal(t, "mailto:hello@example.com", doc.Find(`.footer-contact a[href^="mailto:"]`).AttrOr("href", ""))
}

func TestBasicMode_OmitsScript(t *testing.T) {
	f := newSiteFixture(t)
	h := f.route("/", f.handler.home)

	_, full := get(t, h, "/")
	assert.Equal(t, 1, full.Find(`script[src="/static/js/site.js"]`).Length())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(view.WithSettings(req.Context(), view.Settings{BasicMode: true, Lang: "ar", RTL: true}))
	_, basic := fetch(t, h, req)
	assert.Equal(t, 0, basic.Find("script").Length())
	assert.Equal(t, "rtl", basic.Find("html").AttrOr("dir", ""))
}

func TestNotFound_RendersErrorPage(t *testing.T) {
	f := newSiteFixture(t)

	rr, doc := get(t, f.route("/*", f.handler.notFound), "/nowhere")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "The page you are looking for could not be found.", strings.TrimSpace(doc.Find(".error-page p").Eq(1).Text()))
	assert.Equal(t, 0, doc.Find("header.site-header").Length())
}

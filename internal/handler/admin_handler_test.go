//go:build unit

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/middleware"
	"dahabiya-site/internal/schema"
	"dahabiya-site/internal/service"
	"dahabiya-site/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	repo     *memContentRepo
	catalog  *fakeCatalog
	sessions *mockSessionManager
	router   http.Handler
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		repo:     newMemContentRepo(),
		catalog:  &fakeCatalog{},
		sessions: newMockSession(),
	}
	structure := schema.MustDefault()
	v := newTestView(t)
	editor := service.NewContentService(f.repo, structure, nil, nil, logger.Nop())
	h := NewAdminHandler(editor, f.catalog, structure, f.sessions, v, logger.Nop())

	r := chi.NewRouter()
	wrap := middleware.Error(logger.Nop(), v)
	r.Method(http.MethodGet, "/admin", wrap(h.dashboard))
	r.Method(http.MethodGet, "/admin/content/{page}", wrap(h.editContent))
	r.Method(http.MethodPost, "/admin/content/{page}", wrap(h.saveContent))
	r.Method(http.MethodGet, "/admin/packages", wrap(h.listPackages))
	r.Method(http.MethodGet, "/admin/packages/new", wrap(h.newPackage))
	r.Method(http.MethodPost, "/admin/packages", wrap(h.savePackage))
	r.Method(http.MethodGet, "/admin/packages/{id}/edit", wrap(h.editPackage))
	r.Method(http.MethodPost, "/admin/packages/{id}", wrap(h.savePackage))
	r.Method(http.MethodPost, "/admin/packages/{id}/delete", wrap(h.deletePackage))
	f.router = r
	return f
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAdminContent_RendersOneInputPerField(t *testing.T) {
	f := newAdminFixture(t)

	rr, doc := get(t, f.router, "/admin/content/homepage")

	require.Equal(t, http.StatusOK, rr.Code)
	title := doc.Find(`input[name="hero_video_title"]`)
	assert.Equal(t, "text", title.AttrOr("type", ""))
	assert.Equal(t, "DISCOVER EGYPT", title.AttrOr("value", ""))
	assert.Equal(t, "url", doc.Find(`input[name="hero_video_url"]`).AttrOr("type", ""))
	assert.Equal(t, 1, doc.Find(`textarea[name="our_story_content"]`).Length())
	assert.Equal(t, 1, doc.Find(`#preview-hero_image_1 img`).Length())

	fields := 0
	p, _ := schema.MustDefault().Page("homepage")
	for _, s := range p.Sections {
		fields += len(s.Fields)
	}
	assert.Equal(t, fields, doc.Find(".content-form .field").Length())
}

func TestAdminContent_UnknownPageIs404(t *testing.T) {
	f := newAdminFixture(t)

	rr, _ := get(t, f.router, "/admin/content/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = fetch(t, f.router, postForm("/admin/content/nope", url.Values{"x": {"y"}}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminContent_SaveThenRefetch(t *testing.T) {
	f := newAdminFixture(t)

	form := url.Values{
		"hero_video_title":    {"SAIL THE <b>NILE</b>"},
		"hero_video_subtitle": {"Land of Pharaohs & Ancient Wonders"}, // equal to the default
		"our_story_content":   {"<p>Since 1998</p><script>alert(1)</script>"},
	}
	rr, _ := fetch(t, f.router, postForm("/admin/content/homepage", form))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/content/homepage", rr.Header().Get("Location"))
	assert.Equal(t, "Saved 2 field(s).", f.sessions.GetString(context.Background(), session.KeyFlash))

	stored, err := f.repo.Get(context.Background(), "homepage", "hero_video_title")
	require.NoError(t, err)
	assert.Equal(t, "SAIL THE NILE", stored.Content)
	story, err := f.repo.Get(context.Background(), "homepage", "our_story_content")
	require.NoError(t, err)
	assert.Equal(t, "<p>Since 1998</p>", story.Content)
	_, err = f.repo.Get(context.Background(), "homepage", "hero_video_subtitle")
	assert.ErrorIs(t, err, data.ErrNotFound)

	_, doc := get(t, f.router, "/admin/content/homepage")
	assert.Equal(t, "SAIL THE NILE", doc.Find(`input[name="hero_video_title"]`).AttrOr("value", ""))
	assert.Equal(t, "Saved 2 field(s).", strings.TrimSpace(doc.Find(".flash").Text()))
}

func TestAdminContent_BrandingStoredUnderSettingsPage(t *testing.T) {
	f := newAdminFixture(t)

	rr, _ := fetch(t, f.router, postForm("/admin/content/branding", url.Values{"site_name": {"Cleopatra"}}))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	item, err := f.repo.Get(context.Background(), "branding_settings", "site_name")
	require.NoError(t, err)
	assert.Equal(t, "Cleopatra", item.Content)
}

func TestAdminContent_InvalidLinkIsRejected(t *testing.T) {
	f := newAdminFixture(t)

	rr, doc := fetch(t, f.router, postForm("/admin/content/homepage", url.Values{
		"hero_video_url": {"javascript:alert(1)"},
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "hero_video_url", doc.Find(".form-error").AttrOr("data-field", ""))
	assert.True(t, doc.Find(`input[name="hero_video_url"]`).Parent().HasClass("is-invalid"))
	assert.Equal(t, "javascript:alert(1)", doc.Find(`input[name="hero_video_url"]`).AttrOr("value", ""))
	assert.Empty(t, f.repo.items)
}

func TestAdminDashboard_CountsStoredFields(t *testing.T) {
	f := newAdminFixture(t)
	f.repo.items["homepage/hero_video_title"] = &data.ContentItem{Page: "homepage", Key: "hero_video_title", Content: "x", IsActive: true}
	f.catalog.packages = []*data.Package{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}

	rr, doc := get(t, f.router, "/admin")

	require.Equal(t, http.StatusOK, rr.Code)
	row := doc.Find(`tr[data-page="homepage"]`)
	require.Equal(t, 1, row.Length())
	assert.Contains(t, row.Text(), "1 items")
	assert.Contains(t, doc.Find(".admin-stats").Text(), "2")
	assert.Equal(t, "/admin/content/branding", doc.Find(`tr[data-page="branding"] a`).AttrOr("href", ""))
}

func TestAdminPackages_CreateFromForm(t *testing.T) {
	f := newAdminFixture(t)
	f.catalog.boats = []*data.Dahabiya{{ID: 7, Name: "Hatshepsut"}}

	rr, _ := fetch(t, f.router, postForm("/admin/packages", url.Values{
		"name":          {"Classic Nile"},
		"price":         {"1200"},
		"duration_days": {"5"},
		"dahabiya_id":   {"7"},
		"highlights":    {"Karnak\n\nEdfu\n"},
		"itinerary":     {"Luxor | Board at noon\nEsna"},
		"is_active":     {"1"},
	}))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/packages", rr.Header().Get("Location"))
	require.NotNil(t, f.catalog.saved)
	pkg := f.catalog.saved
	assert.Equal(t, "Classic Nile", pkg.Name)
	assert.Equal(t, 5, pkg.DurationDays)
	assert.Equal(t, data.StringList{"Karnak", "Edfu"}, pkg.Highlights)
	require.NotNil(t, pkg.DahabiyaID)
	assert.Equal(t, int64(7), *pkg.DahabiyaID)
	require.Len(t, pkg.Itinerary, 2)
	assert.Equal(t, "Board at noon", pkg.Itinerary[0].Description)
	assert.Equal(t, 2, pkg.Itinerary[1].DayNumber)
	assert.True(t, pkg.IsActive)
	assert.False(t, pkg.IsFeatured)
}

func TestAdminPackages_ValidationRerendersForm(t *testing.T) {
	f := newAdminFixture(t)
	f.catalog.saveErr = &service.ValidationError{Field: "name", Message: "is required"}

	rr, doc := fetch(t, f.router, postForm("/admin/packages", url.Values{"price": {"10"}}))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, doc.Find(".form-error").Text(), "name: is required")
	assert.Equal(t, "10", doc.Find(`input[name="price"]`).AttrOr("value", ""))
}

func TestAdminPackages_BadNumberIs400(t *testing.T) {
	f := newAdminFixture(t)

	rr, _ := fetch(t, f.router, postForm("/admin/packages", url.Values{"name": {"X"}, "price": {"lots"}}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, f.catalog.saved)
}

func TestAdminPackages_EditFormSelectsDahabiya(t *testing.T) {
	f := newAdminFixture(t)
	boat := int64(2)
	f.catalog.boats = []*data.Dahabiya{{ID: 1, Name: "Amunet"}, {ID: 2, Name: "Hatshepsut"}}
	f.catalog.packages = []*data.Package{{
		ID: 3, Name: "Upstream", DurationDays: 4, DahabiyaID: &boat,
		Itinerary: []data.ItineraryDay{{DayNumber: 2, Title: "Edfu"}, {DayNumber: 1, Title: "Luxor", Description: "Board"}},
	}}

	rr, doc := get(t, f.router, "/admin/packages/3/edit")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/admin/packages/3", doc.Find("form.package-form").AttrOr("action", ""))
	assert.Equal(t, "Hatshepsut", doc.Find("#dahabiya_id option[selected]").Text())
	assert.Equal(t, "Luxor | Board\nEdfu\n", doc.Find("#itinerary").Text())

	rr, _ = get(t, f.router, "/admin/packages/99/edit")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminPackages_Delete(t *testing.T) {
	f := newAdminFixture(t)

	rr, _ := fetch(t, f.router, postForm("/admin/packages/4/delete", nil))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, int64(4), f.catalog.deleted)
	assert.Equal(t, "Package deleted.", f.sessions.GetString(context.Background(), session.KeyFlash))
}
